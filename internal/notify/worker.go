package notify

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"eventreg/internal/dto"
	"eventreg/internal/mailer"
	"eventreg/internal/rabbit"
)

// Worker consumes registration-created messages and sends confirmation
// e-mail. Everything here is best-effort: a lost or failed notification
// never affects the committed registration.
type Worker struct {
	rmq    *rabbit.Client
	smtp   mailer.Config
	done   chan struct{}
	cancel context.CancelFunc
}

func NewWorker(rmq *rabbit.Client, smtp mailer.Config) *Worker {
	return &Worker{
		rmq:  rmq,
		smtp: smtp,
		done: make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	zlog.Logger.Info().Msg("notification worker started")

	go func() {
		defer close(w.done)

		handler := func(body []byte) error {
			var msg dto.RegistrationCreatedMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("failed to unmarshal message: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Int64("registration_id", msg.RegistrationID).
				Str("event_name", msg.EventName).
				Msg("received registration-created message")

			if msg.Email == "" {
				zlog.Logger.Info().
					Int64("registration_id", msg.RegistrationID).
					Msg("registration has no email, skipping notification")
				return nil
			}

			if err := mailer.SendRegistrationEmail(
				&zlog.Logger,
				w.smtp,
				msg.StudentName,
				msg.EventName,
				msg.Tickets,
				msg.Email,
			); err != nil {
				zlog.Logger.Warn().
					Err(err).
					Int64("registration_id", msg.RegistrationID).
					Msg("failed to send confirmation email")
			}

			return nil
		}

		if err := w.rmq.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification worker stopped by context")
	}()
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}
