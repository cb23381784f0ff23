// Package observability provides hooks for metrics around resolution,
// storage and cache operations.
//
// This package enables optional instrumentation without forcing a specific
// observability backend on library users. Hooks are plain values carried
// in a [Hooks] struct and handed to each component explicitly; there is no
// process-wide registry.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Pass the chosen implementation to constructors
//
// [Metrics] implements every hook interface on top of Prometheus
// collectors.
//
// # Usage
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	hooks := observability.Hooks{Resolution: m, Storage: m, Cache: m}
//	svc := deps.NewService(deps.Options{Hooks: hooks})
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Resolution Hooks
// =============================================================================

// ResolutionHooks receives events from dependency resolution.
type ResolutionHooks interface {
	// OnResolveStart records the start of a resolution pass.
	OnResolveStart(ctx context.Context, session string)

	// OnResolveComplete records the end of a resolution pass with the number
	// of artifacts located.
	OnResolveComplete(ctx context.Context, session string, artifacts int, duration time.Duration, err error)

	// OnConflict records a version conflict reported by the compatibility pass.
	OnConflict(ctx context.Context, artifact string)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from fetch and publish chains.
type StorageHooks interface {
	// OnFetch records one backend fetch attempt and its classified outcome.
	OnFetch(ctx context.Context, backend, outcome string, duration time.Duration)

	// OnPublish records one backend publish attempt.
	OnPublish(ctx context.Context, backend string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolutionHooks is a no-op implementation of ResolutionHooks.
type NoopResolutionHooks struct{}

func (NoopResolutionHooks) OnResolveStart(context.Context, string) {}
func (NoopResolutionHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopResolutionHooks) OnConflict(context.Context, string) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnFetch(context.Context, string, string, time.Duration) {}
func (NoopStorageHooks) OnPublish(context.Context, string, error)                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Hook Set
// =============================================================================

// Hooks bundles the hooks handed to a component. Nil fields are replaced by
// no-op implementations in [Hooks.WithDefaults].
type Hooks struct {
	Resolution ResolutionHooks
	Storage    StorageHooks
	Cache      CacheHooks
}

// WithDefaults returns a copy of h with nil hooks replaced by no-ops.
func (h Hooks) WithDefaults() Hooks {
	out := h
	if out.Resolution == nil {
		out.Resolution = NoopResolutionHooks{}
	}
	if out.Storage == nil {
		out.Storage = NoopStorageHooks{}
	}
	if out.Cache == nil {
		out.Cache = NoopCacheHooks{}
	}
	return out
}
