// Package mailer delivers outbound email. Delivery never blocks a request: the
// Dispatcher hands each message to its own goroutine and only logs failures.
package mailer

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
	"greekgeeks/internal/platform/config"
)

type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Attachment struct {
	Name string
	Data []byte
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by cfg.Provider.
func New(cfg config.EmailConfig) Mailer {
	if cfg.Provider == "smtp" {
		return NewSMTPMailer(cfg.SMTP)
	}
	return LogMailer{}
}

type SMTPMailer struct {
	config config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) message(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", gm.FormatAddress(m.config.FromAddress, m.config.FromName))
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	for _, a := range msg.Attachments {
		data := a.Data
		gm.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return gm
}

// Send dials the SMTP server and sends msg. gomail has no context support, so a
// cancelled ctx abandons the wait but not the underlying connection.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(m.message(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("error sending email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("email")
	// Bodies can carry live verification tokens.
	log.Debug().Strs("to", msg.To).Str("body", msg.Body).Msg("email body")
	return nil
}
