package email

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes messages to the structured log instead of delivering them.
// It is the default backend for local development.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *zap.SugaredLogger) *LogSender {
	return &LogSender{log: log}
}

// SendWelcome logs the welcome message.
func (s *LogSender) SendWelcome(_ context.Context, to, name string) error {
	s.emit(NewWelcomeMessage(to, name))
	return nil
}

// SendPasswordReset logs the reset message including its link.
func (s *LogSender) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	s.emit(NewPasswordResetMessage(to, name, resetURL))
	return nil
}

func (s *LogSender) emit(m *Message) {
	s.log.Infow("email",
		"kind", m.Kind,
		"to", m.To,
		"subject", m.Subject,
		"reset_url", m.ResetURL,
	)
}
