package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/models"
)

const systemConfigID = "system"

// ConfigStore implements interfaces.ConfigStore as a single record.
type ConfigStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewConfigStore(db *surrealdb.DB, logger *common.Logger) *ConfigStore {
	return &ConfigStore{db: db, logger: logger}
}

func (s *ConfigStore) Get(ctx context.Context) (*models.SystemConfig, error) {
	cfg, err := surrealdb.Select[models.SystemConfig](ctx, s.db, surrealmodels.NewRecordID(tableConfig, systemConfigID))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select system config: %w", err)
	}
	if cfg == nil {
		cfg = &models.SystemConfig{}
	}
	if cfg.Values == nil {
		cfg.Values = map[string]any{}
	}
	return cfg, nil
}

// Merge reads, merges and writes back. Concurrent admin edits are last-writer-wins.
func (s *ConfigStore) Merge(ctx context.Context, patch map[string]any, modifiedBy string) (*models.SystemConfig, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		cfg.Values[k] = v
	}
	cfg.ModifiedAt = time.Now()
	cfg.ModifiedBy = modifiedBy

	if err := upsert(ctx, s.db, tableConfig, systemConfigID, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
