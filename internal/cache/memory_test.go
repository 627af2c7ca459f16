package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abriltello/portafolioAI/internal/common"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 10)

	require.NoError(t, c.Set(ctx, "quote:AAPL", []byte(`{"close":1}`), 0))

	v, ok, err := c.Get(ctx, "quote:AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"close":1}`, string(v))

	_, ok, err = c.Get(ctx, "quote:MSFT")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 5*time.Minute))

	now = now.Add(2 * time.Minute)

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "default ttl elapsed")
	assert.Equal(t, 1, c.Len(), "expired entry removed lazily")

	v, ok, _ := c.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, "2", string(v))
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "a", []byte("3"), 0)) // update in place
	require.NoError(t, c.Set(ctx, "c", []byte("4"), 0))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok, "b was the oldest insert")
	v, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "3", string(v))
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 2)

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	v, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestMemoryCache_DeleteAndInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 10)

	for _, k := range []string{"quote:A", "quote:B", "history:A"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}

	require.NoError(t, c.Delete(ctx, "history:A"))
	c.InvalidatePrefix("quote:")
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i*j)%80)
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestNewFromConfig(t *testing.T) {
	logger := common.NewSilentLogger()

	c, err := NewFromConfig(context.Background(), common.CacheConfig{Backend: "memory", TTL: "30s", MaxEntries: 5}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = NewFromConfig(context.Background(), common.CacheConfig{Backend: "memcached"}, logger)
	assert.Error(t, err)
}
