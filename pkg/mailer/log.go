package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a logging sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mailer").Logger()}
}

// Send logs the recipients and subject.
func (l *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, to.Address)
	}

	l.logger.Info().
		Strs("to", recipients).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("email delivered to log")
	return nil
}
