package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackends(t *testing.T) {
	c, err := New(CacheConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(CacheConfig{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	_, err = New(CacheConfig{Backend: "memcached"})
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestMemoryCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(&CacheConfig{})

	_, err := c.Get(ctx, "png:deceit:0:grid")
	assert.True(t, errors.Is(err, ErrCacheMiss))

	value := []byte{1, 2, 3}
	require.NoError(t, c.Set(ctx, "png:deceit:0:grid", value, 0))
	value[0] = 9

	got, err := c.Get(ctx, "png:deceit:0:grid")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	m := c.GetMetrics()
	assert.Equal(t, int64(2), m.TotalRequests)
	assert.Equal(t, int64(1), m.CacheHits)
	assert.Equal(t, 0.5, m.HitRatio)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(&CacheConfig{DefaultTTL: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("b"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, err := c.Get(ctx, "a")
	assert.True(t, errors.Is(err, ErrCacheMiss))
	_, err = c.Get(ctx, "b")
	assert.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheEvictsEarliest(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(&CacheConfig{MaxEntries: 2})

	require.NoError(t, c.Set(ctx, "short", []byte{1}, time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte{2}, time.Hour))
	require.NoError(t, c.Set(ctx, "new", []byte{3}, time.Hour))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "short")
	assert.True(t, errors.Is(err, ErrCacheMiss))
	_, err = c.Get(ctx, "long")
	assert.NoError(t, err)
}

func TestRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache(&CacheConfig{RedisURL: "127.0.0.1:1"})
	assert.Error(t, err)
}
