package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Info().Str("component", "mailer").Str("to", to).Str("subject", subject).Msg(body)
	return nil
}

var Mail Mailer = LogMailer{}

// sendMail is best-effort: delivery failures are logged, never returned.
func sendMail(ctx context.Context, to, subject, body string) {
	if err := Mail.Send(ctx, to, subject, body); err != nil {
		log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("email delivery failed")
	}
}
