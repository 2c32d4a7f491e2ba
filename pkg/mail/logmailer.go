package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/managerate/managerate/pkg/logger"
)

// LogMailer writes outbound messages to the application log instead of
// delivering them. It stands in for a real transport in development and tests.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer constructs a LogMailer using the global logger.
func NewLogMailer() *LogMailer {
	return &LogMailer{log: logger.WithModule("mail")}
}

// Send records the message and always succeeds.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("mock email delivery",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
