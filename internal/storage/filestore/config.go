package filestore

import (
	"context"
	"errors"
	"time"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

const systemConfigKey = "system"

// ConfigStore implements interfaces.ConfigStore.
type ConfigStore struct {
	dir *jsonDir
}

func (s *ConfigStore) Get(_ context.Context) (*models.SystemConfig, error) {
	s.dir.mu.RLock()
	defer s.dir.mu.RUnlock()
	return s.get()
}

func (s *ConfigStore) get() (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	if err := s.dir.read(systemConfigKey, &cfg); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &models.SystemConfig{Values: map[string]any{}}, nil
		}
		return nil, err
	}
	if cfg.Values == nil {
		cfg.Values = map[string]any{}
	}
	return &cfg, nil
}

func (s *ConfigStore) Merge(_ context.Context, patch map[string]any, modifiedBy string) (*models.SystemConfig, error) {
	s.dir.mu.Lock()
	defer s.dir.mu.Unlock()

	cfg, err := s.get()
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		cfg.Values[k] = v
	}
	cfg.ModifiedAt = time.Now()
	cfg.ModifiedBy = modifiedBy

	if err := s.dir.write(systemConfigKey, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
