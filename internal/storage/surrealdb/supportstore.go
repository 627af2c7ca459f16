package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// SupportStore implements interfaces.SupportStore.
type SupportStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSupportStore(db *surrealdb.DB, logger *common.Logger) *SupportStore {
	return &SupportStore{db: db, logger: logger}
}

func (s *SupportStore) Create(ctx context.Context, ticket *models.SupportTicket) error {
	if ticket.TicketID == "" {
		ticket.TicketID = fmt.Sprintf("st_%s", uuid.New().String()[:8])
	}
	now := time.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	if ticket.Status == "" {
		ticket.Status = models.SupportStatusPending
	}
	return upsert(ctx, s.db, tableSupport, ticket.TicketID, ticket)
}

func (s *SupportStore) Get(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	t, err := surrealdb.Select[models.SupportTicket](ctx, s.db, surrealmodels.NewRecordID(tableSupport, ticketID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select support ticket: %w", err)
	}
	if t == nil || t.TicketID == "" {
		return nil, interfaces.ErrNotFound
	}
	return t, nil
}

func (s *SupportStore) Save(ctx context.Context, ticket *models.SupportTicket) error {
	if ticket.TicketID == "" {
		return fmt.Errorf("ticket id is required")
	}
	ticket.UpdatedAt = time.Now()
	return upsert(ctx, s.db, tableSupport, ticket.TicketID, ticket)
}

func (s *SupportStore) Delete(ctx context.Context, ticketID string) error {
	return deleteRecord[models.SupportTicket](ctx, s.db, tableSupport, ticketID)
}

func (s *SupportStore) List(ctx context.Context) ([]*models.SupportTicket, error) {
	rows, err := queryAll[models.SupportTicket](ctx, s.db, "SELECT * FROM support_ticket ORDER BY created_at DESC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list support tickets: %w", err)
	}
	return rows, nil
}
