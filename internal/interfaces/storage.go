// Package interfaces defines service and storage contracts for PortafolioAI
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/abriltello/portafolioAI/internal/models"
)

// ErrNotFound is returned by every store when a record does not exist.
var ErrNotFound = errors.New("not found")

// StorageManager coordinates all storage backends
type StorageManager interface {
	UserStore() UserStore
	PortfolioStore() PortfolioStore
	ContentStore() ContentStore
	SupportStore() SupportStore
	AuditStore() AuditStore
	ConfigStore() ConfigStore

	// Close closes all storage backends
	Close() error
}

// UserStore manages user accounts.
type UserStore interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	// GetByEmail matches the email case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*models.User, error)
}

// PortfolioStore manages generated portfolios and their simulation history.
type PortfolioStore interface {
	Get(ctx context.Context, portfolioID string) (*models.Portfolio, error)
	Save(ctx context.Context, p *models.Portfolio) error
	Delete(ctx context.Context, portfolioID string) error
	List(ctx context.Context) ([]*models.Portfolio, error)
	// ListByUser returns the user's portfolios, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error)
	LatestForUser(ctx context.Context, userID string) (*models.Portfolio, error)
	// AppendSimulation adds sim to the history of the portfolio only when it
	// belongs to userID. Returns ErrNotFound otherwise.
	AppendSimulation(ctx context.Context, portfolioID, userID string, sim models.Simulation) error
	// DeleteSimulation removes the simulation whose id or RFC 3339 timestamp matches key.
	DeleteSimulation(ctx context.Context, portfolioID, key string) error
}

// ContentStore manages educational and news content.
type ContentStore interface {
	Get(ctx context.Context, contentID string) (*models.ContentItem, error)
	Save(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, contentID string) error
	// List returns items newest first, optionally only published ones.
	List(ctx context.Context, publishedOnly bool) ([]*models.ContentItem, error)
}

// SupportStore manages contact-form tickets.
type SupportStore interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	Get(ctx context.Context, ticketID string) (*models.SupportTicket, error)
	Save(ctx context.Context, ticket *models.SupportTicket) error
	Delete(ctx context.Context, ticketID string) error
	List(ctx context.Context) ([]*models.SupportTicket, error)
}

// AuditStore manages the activity log.
type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	Get(ctx context.Context, entryID string) (*models.AuditEntry, error)
	Delete(ctx context.Context, entryID string) error
	// List returns entries newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*models.AuditEntry, error)
	// ListByUser returns entries about the user or performed by them, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error)
	// DeleteBefore removes entries created before t and returns how many were removed.
	DeleteBefore(ctx context.Context, t time.Time) (int, error)
}

// ConfigStore manages the singleton system configuration document.
type ConfigStore interface {
	// Get returns the stored configuration, or an empty one when none is set.
	Get(ctx context.Context) (*models.SystemConfig, error)
	// Merge shallow-merges patch into the stored values and returns the result.
	Merge(ctx context.Context, patch map[string]any, modifiedBy string) (*models.SystemConfig, error)
}
