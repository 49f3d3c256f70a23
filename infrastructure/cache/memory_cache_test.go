package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "insight:daily:chart-1:2025-03-15", "a quiet day", 60))

	value, ok, err := c.Get(ctx, "insight:daily:chart-1:2025-03-15")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a quiet day", value)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "insight:daily:absent:2025-03-15")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", 1))

	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(1100 * time.Millisecond)

	_, ok, err = c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after its TTL")
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", "value", 0))

	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", 60))
	require.NoError(t, c.Set(ctx, "b", "2", 60))

	require.NoError(t, c.Delete(ctx, "a"))
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok)
}
