// Package cache provides byte caches for remote repository listings.
//
// # Overview
//
// Directory listings fetched from HTTP repositories are the only data the
// resolver caches outside the artifact cache directory. They are small,
// change rarely and are requested once per symbolic version lookup, so a
// short-lived cache avoids hammering remote servers during a resolution
// pass.
//
// Implementations:
//
//   - [FileCache]: JSON entries with expiry below a local directory
//   - [RedisCache]: a shared Redis instance, for teams running several
//     resolvers against the same repositories
//   - [NullCache]: caches nothing
//
// [Instrument] wraps any Cache to report hits, misses and writes to
// [observability.CacheHooks].
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key with an optional time to live.
//
// Get reports a miss as (nil, false, nil); errors are reserved for
// failures of the underlying store. A zero ttl stores the value without
// expiry. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
