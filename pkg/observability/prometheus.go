package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface with Prometheus collectors.
type Metrics struct {
	resolveTotal    *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	artifacts       prometheus.Gauge
	conflicts       *prometheus.CounterVec

	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	publishTotal  *prometheus.CounterVec

	cacheTotal *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Registration errors panic, matching prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_resolve_total",
				Help: "Number of resolution passes by result.",
			},
			[]string{"result"},
		),
		resolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depot_resolve_duration_seconds",
				Help:    "Time taken by a resolution pass.",
				Buckets: prometheus.DefBuckets,
			},
		),
		artifacts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "depot_resolved_artifacts",
				Help: "Number of artifacts located by the last resolution pass.",
			},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_version_conflicts_total",
				Help: "Number of unreconcilable version conflicts by artifact.",
			},
			[]string{"artifact"},
		),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_fetch_total",
				Help: "Number of backend fetch attempts by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depot_fetch_duration_seconds",
				Help:    "Time taken by backend fetch attempts.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_publish_total",
				Help: "Number of backend publish attempts by backend and result.",
			},
			[]string{"backend", "result"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_cache_requests_total",
				Help: "Number of cache lookups by key type and result.",
			},
			[]string{"type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"type"},
		),
	}
	reg.MustRegister(
		m.resolveTotal,
		m.resolveDuration,
		m.artifacts,
		m.conflicts,
		m.fetchTotal,
		m.fetchDuration,
		m.publishTotal,
		m.cacheTotal,
		m.cacheBytes,
	)
	return m
}

// Hooks returns a hook set backed by m.
func (m *Metrics) Hooks() Hooks {
	return Hooks{Resolution: m, Storage: m, Cache: m}
}

func (m *Metrics) OnResolveStart(context.Context, string) {}

func (m *Metrics) OnResolveComplete(_ context.Context, _ string, artifacts int, d time.Duration, err error) {
	m.resolveTotal.WithLabelValues(result(err)).Inc()
	m.resolveDuration.Observe(d.Seconds())
	if err == nil {
		m.artifacts.Set(float64(artifacts))
	}
}

func (m *Metrics) OnConflict(_ context.Context, artifact string) {
	m.conflicts.WithLabelValues(artifact).Inc()
}

func (m *Metrics) OnFetch(_ context.Context, backend, outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(backend, outcome).Inc()
	m.fetchDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) OnPublish(_ context.Context, backend string, err error) {
	m.publishTotal.WithLabelValues(backend, result(err)).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ ResolutionHooks = (*Metrics)(nil)
	_ StorageHooks    = (*Metrics)(nil)
	_ CacheHooks      = (*Metrics)(nil)
)
