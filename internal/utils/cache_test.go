package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocalCache(8)
	require.NoError(t, err)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "page", []byte("a"), time.Minute)
	c.Set(ctx, "gen", []byte("1"), 0)

	got, ok := c.Get(ctx, "page")
	require.True(t, ok)
	assert.Equal(t, []byte("a"), got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "page")
	assert.False(t, ok, "expired entries are misses")

	got, ok = c.Get(ctx, "gen")
	assert.True(t, ok, "zero ttl never expires")
	assert.Equal(t, []byte("1"), got)

	c.Delete(ctx, "gen")
	_, ok = c.Get(ctx, "gen")
	assert.False(t, ok)
}

func TestLocalCacheEvicts(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocalCache(2)
	require.NoError(t, err)

	c.Set(ctx, "a", []byte("a"), 0)
	c.Set(ctx, "b", []byte("b"), 0)
	c.Set(ctx, "c", []byte("c"), 0)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestNewLocalCacheRejectsBadSize(t *testing.T) {
	_, err := NewLocalCache(0)
	assert.Error(t, err)
}
