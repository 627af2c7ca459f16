package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// ContentStore implements interfaces.ContentStore.
type ContentStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewContentStore(db *surrealdb.DB, logger *common.Logger) *ContentStore {
	return &ContentStore{db: db, logger: logger}
}

func (s *ContentStore) Get(ctx context.Context, contentID string) (*models.ContentItem, error) {
	item, err := surrealdb.Select[models.ContentItem](ctx, s.db, surrealmodels.NewRecordID(tableContent, contentID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select content: %w", err)
	}
	if item == nil || item.ContentID == "" {
		return nil, interfaces.ErrNotFound
	}
	return item, nil
}

func (s *ContentStore) Save(ctx context.Context, item *models.ContentItem) error {
	if item.ContentID == "" {
		return fmt.Errorf("content id is required")
	}
	return upsert(ctx, s.db, tableContent, item.ContentID, item)
}

func (s *ContentStore) Delete(ctx context.Context, contentID string) error {
	return deleteRecord[models.ContentItem](ctx, s.db, tableContent, contentID)
}

func (s *ContentStore) List(ctx context.Context, publishedOnly bool) ([]*models.ContentItem, error) {
	sql := "SELECT * FROM content ORDER BY created_at DESC"
	if publishedOnly {
		sql = "SELECT * FROM content WHERE published = true ORDER BY created_at DESC"
	}
	rows, err := queryAll[models.ContentItem](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return rows, nil
}
