package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Dispatcher struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(m Mailer, timeout time.Duration) *Dispatcher {
	return &Dispatcher{mailer: m, timeout: timeout}
}

// Dispatch sends msg in the background. The result is logged and never reported
// to the caller.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Strs("to", msg.To).Msg("mailer panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.mailer.Send(ctx, msg); err != nil {
			log.Error().Err(err).Strs("to", msg.To).Str("subject", msg.Subject).Msg("failed to send email")
			return
		}
		log.Debug().Strs("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	}()
}

// Wait blocks until every dispatched message has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for email delivery: %w", ctx.Err())
	}
}
