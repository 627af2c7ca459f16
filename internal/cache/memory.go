// Package cache provides byte-oriented caches for market data responses.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// entry wraps a cached value with expiry and insertion order tracking.
type entry struct {
	value     []byte
	expiry    time.Time
	insertIdx int64
}

// MemoryCache is an in-process TTL cache bounded by entry count.
// Thread-safe with sync.RWMutex.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// NewMemory creates a MemoryCache with the given default TTL and max entry count.
func NewMemory(ttl time.Duration, maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &MemoryCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a cached value if found and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if c.now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return e.value, true, nil
}

// Set stores a value. A zero ttl uses the cache default. Evicts the oldest
// entry if at capacity.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		value:     append([]byte(nil), value...),
		expiry:    c.now().Add(ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return nil
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// InvalidatePrefix removes all entries whose key starts with prefix.
func (c *MemoryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close is a no-op.
func (c *MemoryCache) Close() error { return nil }

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestIdx >= 0 {
		delete(c.items, oldestKey)
	}
}

var _ interfaces.Cache = (*MemoryCache)(nil)
