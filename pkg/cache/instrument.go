package cache

import (
	"context"
	"time"

	"github.com/matzehuels/depot/pkg/observability"
)

// Instrument wraps c so every lookup and write is reported to hooks under
// keyType. Nil hooks return c unchanged.
func Instrument(c Cache, hooks observability.CacheHooks, keyType string) Cache {
	if hooks == nil {
		return c
	}
	return &instrumented{Cache: c, hooks: hooks, keyType: keyType}
}

type instrumented struct {
	Cache
	hooks   observability.CacheHooks
	keyType string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case ok:
		c.hooks.OnCacheHit(ctx, c.keyType)
	default:
		c.hooks.OnCacheMiss(ctx, c.keyType)
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		c.hooks.OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}
