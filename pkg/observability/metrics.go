package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics exposed by the storage layer.
type Metrics struct {
	// Backend metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
	StorageErrorsTotal       *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec
	CacheEntries        *prometheus.GaugeVec

	// Aggregation metrics
	StatsRunsTotal       *prometheus.CounterVec
	StatsRunDuration     prometheus.Histogram
	StatsUsersSkipped    prometheus.Counter
	SubscriptionRefreshs *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// creates a private one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_storage_operations_total",
				Help: "Total number of backend storage operations",
			},
			[]string{"operation", "backend", "status"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driftwatch_storage_operation_duration_seconds",
				Help:    "Backend storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_storage_errors_total",
				Help: "Total number of backend storage errors",
			},
			[]string{"operation", "backend"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"category"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"category"},
		),
		CacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_cache_evictions_total",
				Help: "Total number of cache entries removed by the sweep",
			},
			[]string{"category"},
		),
		CacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "driftwatch_cache_entries",
				Help: "Current number of live cache entries",
			},
			[]string{"category"},
		),
		StatsRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_stats_runs_total",
				Help: "Total number of statistics aggregation runs",
			},
			[]string{"status"},
		),
		StatsRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "driftwatch_stats_run_duration_seconds",
				Help:    "Statistics aggregation run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		StatsUsersSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "driftwatch_stats_users_skipped_total",
				Help: "Users excluded from aggregation due to unreadable records",
			},
		),
		SubscriptionRefreshs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driftwatch_subscription_refreshes_total",
				Help: "Total number of subscription refresh attempts",
			},
			[]string{"status"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
		m.StorageErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
		m.CacheEntries,
		m.StatsRunsTotal,
		m.StatsRunDuration,
		m.StatsUsersSkipped,
		m.SubscriptionRefreshs,
	)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
