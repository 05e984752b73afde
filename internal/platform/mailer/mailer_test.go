package mailer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"greekgeeks/internal/platform/config"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
	wait time.Duration
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) error {
	if m.wait > 0 {
		select {
		case <-time.After(m.wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type panickingMailer struct{}

func (panickingMailer) Send(ctx context.Context, msg Message) error {
	panic("boom")
}

func TestDispatcher(t *testing.T) {
	tests := []struct {
		name   string
		mailer Mailer
		sent   int
	}{
		{"delivers", &recordingMailer{}, 1},
		{"failure is swallowed", &recordingMailer{err: errors.New("smtp down")}, 1},
		{"timeout", &recordingMailer{wait: time.Second}, 0},
		{"panic is recovered", panickingMailer{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.mailer, 20*time.Millisecond)
			d.Dispatch(VerificationMessage("a@example.com", "Ann", "https://x/verify"))

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			require.NoError(t, d.Wait(ctx))

			if rm, ok := tt.mailer.(*recordingMailer); ok {
				assert.Equal(t, tt.sent, rm.count())
			}
		})
	}
}

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("a@example.com", "Ann", "https://app/verify?uidb64=abc&token=t")
	assert.Equal(t, []string{"a@example.com"}, msg.To)
	assert.Equal(t, "Verify your GreekGeeks Account", msg.Subject)
	assert.Contains(t, msg.Body, "https://app/verify?uidb64=abc&token=t")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "verify.png", msg.Attachments[0].Name)
	assert.Equal(t, []byte("\x89PNG"), msg.Attachments[0].Data[:4])
}

func TestQRCode(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"valid", 512, false},
		{"too small", 100, true},
		{"too large", 5000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QRCode("https://app/verify?uidb64=abc&token=t", tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got)
		})
	}
}

func TestNew(t *testing.T) {
	assert.IsType(t, LogMailer{}, New(config.EmailConfig{Provider: "log"}))
	assert.IsType(t, &SMTPMailer{}, New(config.EmailConfig{Provider: "smtp", SMTP: config.SMTPConfig{Host: "localhost", Port: 25}}))
}

func TestSMTPMailer_Message(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "localhost", Port: 25, FromAddress: "donotreply@greekgeeks.com", FromName: "GreekGeeks"})
	gm := m.message(Message{To: []string{"a@example.com"}, Subject: "s", Body: "b"})

	assert.Equal(t, []string{`"GreekGeeks" <donotreply@greekgeeks.com>`}, gm.GetHeader("From"))
	assert.Equal(t, []string{"a@example.com"}, gm.GetHeader("To"))
}

func TestLogMailer_KeepsBodyOutOfInfo(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	msg := Message{To: []string{"a@example.com"}, Subject: "Verify", Body: "token=secret-token"}
	require.NoError(t, LogMailer{}.Send(context.Background(), msg))

	assert.Contains(t, buf.String(), "a@example.com")
	assert.Contains(t, buf.String(), "Verify")
	assert.NotContains(t, buf.String(), "secret-token")

	buf.Reset()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	require.NoError(t, LogMailer{}.Send(context.Background(), msg))
	assert.Contains(t, buf.String(), "secret-token")
}
