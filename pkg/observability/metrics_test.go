package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.StorageOperationsTotal.WithLabelValues("get", "file", "success").Inc()
	m.CacheHitsTotal.WithLabelValues("playrecords_alice").Inc()
	m.CacheMissesTotal.WithLabelValues("playrecords_alice").Inc()
	m.StatsRunsTotal.WithLabelValues("success").Inc()
	m.SubscriptionRefreshs.WithLabelValues("skipped").Inc()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"driftwatch_storage_operations_total",
		"driftwatch_cache_hits_total",
		"driftwatch_cache_misses_total",
		"driftwatch_stats_runs_total",
		"driftwatch_subscription_refreshes_total",
	} {
		if !names[want] {
			t.Errorf("Expected metric %s to be registered", want)
		}
	}
}

func TestMetrics_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	NewMetrics(registry)
}

func TestMetrics_Handler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.StorageOperationsTotal.WithLabelValues("set", "file", "success").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "driftwatch_storage_operations_total") {
		t.Error("Expected storage counter in scrape output")
	}
}
