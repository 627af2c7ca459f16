package interfaces

import (
	"context"
	"time"

	"github.com/abriltello/portafolioAI/internal/models"
)

// MarketDataClient provides quotes and end-of-day prices.
type MarketDataClient interface {
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)
	// GetEOD returns bars between from and to inclusive, oldest first. Zero times are unbounded.
	GetEOD(ctx context.Context, ticker string, from, to time.Time) ([]models.EODBar, error)
}

// GeminiClient generates text from a prompt.
type GeminiClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Cache stores short-lived byte values.
type Cache interface {
	// Get returns the value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
