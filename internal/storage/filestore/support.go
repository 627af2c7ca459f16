package filestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abriltello/portafolioAI/internal/models"
)

// SupportStore implements interfaces.SupportStore.
type SupportStore struct {
	dir *jsonDir
}

func (s *SupportStore) Create(_ context.Context, ticket *models.SupportTicket) error {
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

	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.write(ticket.TicketID, ticket)
}

func (s *SupportStore) Get(_ context.Context, ticketID string) (*models.SupportTicket, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	var t models.SupportTicket
	if err := s.dir.read(ticketID, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SupportStore) Save(_ context.Context, ticket *models.SupportTicket) error {
	if ticket.TicketID == "" {
		return fmt.Errorf("ticket id is required")
	}
	ticket.UpdatedAt = time.Now()
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.write(ticket.TicketID, ticket)
}

func (s *SupportStore) Delete(_ context.Context, ticketID string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.remove(ticketID)
}

// List returns tickets newest first.
func (s *SupportStore) List(_ context.Context) ([]*models.SupportTicket, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	all, err := readAll[models.SupportTicket](s.dir)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
