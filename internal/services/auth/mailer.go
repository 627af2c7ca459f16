package auth

import (
	"context"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// LogMailer writes outgoing mail to the log instead of delivering it.
type LogMailer struct {
	logger *common.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *common.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("Outgoing mail")
	return nil
}

var _ interfaces.Mailer = (*LogMailer)(nil)
