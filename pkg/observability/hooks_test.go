package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Resolution hooks
	r := NoopResolutionHooks{}
	r.OnResolveStart(ctx, "session")
	r.OnResolveComplete(ctx, "session", 3, time.Second, nil)
	r.OnConflict(ctx, "org.example:lib:lib:jar")

	// Storage hooks
	s := NoopStorageHooks{}
	s.OnFetch(ctx, "cache", "found", time.Millisecond)
	s.OnPublish(ctx, "cache", nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "listing")
	c.OnCacheMiss(ctx, "listing")
	c.OnCacheSet(ctx, "listing", 1024)
}

func TestHooksWithDefaults(t *testing.T) {
	h := Hooks{}.WithDefaults()
	if _, ok := h.Resolution.(NoopResolutionHooks); !ok {
		t.Error("Resolution should default to NoopResolutionHooks")
	}
	if _, ok := h.Storage.(NoopStorageHooks); !ok {
		t.Error("Storage should default to NoopStorageHooks")
	}
	if _, ok := h.Cache.(NoopCacheHooks); !ok {
		t.Error("Cache should default to NoopCacheHooks")
	}

	custom := &testStorageHooks{}
	h = Hooks{Storage: custom}.WithDefaults()
	if h.Storage != custom {
		t.Error("WithDefaults should keep custom hooks")
	}
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OnFetch(ctx, "cache", "found", time.Millisecond)
	m.OnFetch(ctx, "cache", "found", time.Millisecond)
	m.OnFetch(ctx, "url", "does_not_exist", time.Millisecond)
	m.OnPublish(ctx, "cache", errors.New("disk full"))
	m.OnResolveComplete(ctx, "s", 2, time.Second, nil)
	m.OnCacheHit(ctx, "listing")

	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues("cache", "found")); got != 2 {
		t.Errorf("fetch found = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.publishTotal.WithLabelValues("cache", "error")); got != 1 {
		t.Errorf("publish errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.artifacts); got != 2 {
		t.Errorf("artifacts = %v, want 2", got)
	}

	expected := `
# HELP depot_cache_requests_total Number of cache lookups by key type and result.
# TYPE depot_cache_requests_total counter
depot_cache_requests_total{result="hit",type="listing"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "depot_cache_requests_total"); err != nil {
		t.Error(err)
	}
}

// Test implementations
type testStorageHooks struct{ NoopStorageHooks }
