package filestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abriltello/portafolioAI/internal/models"
)

// AuditStore implements interfaces.AuditStore.
type AuditStore struct {
	dir *jsonDir
}

func (s *AuditStore) Append(_ context.Context, entry *models.AuditEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("log_%s", uuid.New().String()[:12])
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.write(entry.EntryID, entry)
}

func (s *AuditStore) Get(_ context.Context, entryID string) (*models.AuditEntry, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	var e models.AuditEntry
	if err := s.dir.read(entryID, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *AuditStore) Delete(_ context.Context, entryID string) error {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()
	return s.dir.remove(entryID)
}

func (s *AuditStore) List(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return s.filter(func(*models.AuditEntry) bool { return true }, limit)
}

func (s *AuditStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error) {
	return s.filter(func(e *models.AuditEntry) bool { return e.UserID == userID || e.ActorID == userID }, limit)
}

func (s *AuditStore) filter(keep func(*models.AuditEntry) bool, limit int) ([]*models.AuditEntry, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()

	all, err := readAll[models.AuditEntry](s.dir)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *AuditStore) DeleteBefore(_ context.Context, t time.Time) (int, error) {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()

	all, err := readAll[models.AuditEntry](s.dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range all {
		if e.CreatedAt.Before(t) {
			if err := s.dir.remove(e.EntryID); err == nil {
				count++
			}
		}
	}
	return count, nil
}
