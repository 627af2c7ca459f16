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

// AuditStore implements interfaces.AuditStore.
type AuditStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewAuditStore(db *surrealdb.DB, logger *common.Logger) *AuditStore {
	return &AuditStore{db: db, logger: logger}
}

func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("log_%s", uuid.New().String()[:12])
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return upsert(ctx, s.db, tableAudit, entry.EntryID, entry)
}

func (s *AuditStore) Get(ctx context.Context, entryID string) (*models.AuditEntry, error) {
	e, err := surrealdb.Select[models.AuditEntry](ctx, s.db, surrealmodels.NewRecordID(tableAudit, entryID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select audit entry: %w", err)
	}
	if e == nil || e.EntryID == "" {
		return nil, interfaces.ErrNotFound
	}
	return e, nil
}

func (s *AuditStore) Delete(ctx context.Context, entryID string) error {
	return deleteRecord[models.AuditEntry](ctx, s.db, tableAudit, entryID)
}

func (s *AuditStore) List(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	sql := "SELECT * FROM audit_log ORDER BY created_at DESC"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := queryAll[models.AuditEntry](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return rows, nil
}

func (s *AuditStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AuditEntry, error) {
	sql := "SELECT * FROM audit_log WHERE user_id = $user_id OR actor_id = $user_id ORDER BY created_at DESC"
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := queryAll[models.AuditEntry](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for user: %w", err)
	}
	return rows, nil
}

func (s *AuditStore) DeleteBefore(ctx context.Context, t time.Time) (int, error) {
	sql := "DELETE audit_log WHERE created_at < $before RETURN BEFORE"
	rows, err := queryAll[models.AuditEntry](ctx, s.db, sql, map[string]any{"before": t})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit entries: %w", err)
	}
	return len(rows), nil
}
