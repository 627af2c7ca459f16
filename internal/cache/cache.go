package cache

import (
	"context"
	"fmt"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewFromConfig builds the configured cache backend.
func NewFromConfig(ctx context.Context, cfg common.CacheConfig, logger *common.Logger) (interfaces.Cache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		logger.Debug().Int("max_entries", cfg.MaxEntries).Dur("ttl", cfg.GetTTL()).Msg("Using in-memory quote cache")
		return NewMemory(cfg.GetTTL(), cfg.MaxEntries), nil
	case BackendRedis:
		c, err := NewRedis(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, cfg.GetTTL())
		if err != nil {
			return nil, err
		}
		logger.Info().Str("address", cfg.RedisAddress).Msg("Connected to redis quote cache")
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
