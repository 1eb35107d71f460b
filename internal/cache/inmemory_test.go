package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	c := NewInMemoryCache(cfg, logger.NewNopLogger())

	key := GenerateKey(PrefixSeatPolicy, "tenant_1")
	assert.Equal(t, "seat_policy:v1::tenant_1", key)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, 7, 0)
	v, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	c.Set(ctx, GenerateKey(PrefixSeatPolicy, "tenant_2"), 3, time.Minute)
	c.DeleteByPrefix(ctx, PrefixSeatPolicy)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = false
	c := NewInMemoryCache(cfg, logger.NewNopLogger())

	c.Set(ctx, "k", "v", 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
