package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// KeyPrefix namespaces every key written to a shared redis.
const KeyPrefix = "portafolio:"

// RedisCache implements interfaces.Cache on redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return newRedisWithClient(rdb, ttl), nil
}

func newRedisWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get retrieves a value; a missing key is a miss, not an error.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores a value. A zero ttl uses the cache default.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	if err := r.client.Set(ctx, KeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close closes the redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ interfaces.Cache = (*RedisCache)(nil)
