package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInitialization(t *testing.T) {
	metrics := []prometheus.Collector{
		GenerationsTotal,
		GenerationDuration,
		ValidationWarningsTotal,
		MCPRequestsTotal,
		MCPRequestDuration,
		ExternalServiceRequestsTotal,
		ExternalServiceRequestDuration,
		RateLimitExceeded,
		RateLimitWaitTime,
		CacheHits,
		CacheMisses,
		ErrorsTotal,
		SystemInfo,
		GoRoutines,
		MemoryUsage,
	}

	for _, metric := range metrics {
		if metric == nil {
			t.Error("Metric is nil")
		}
	}
}

func TestRecordGeneration(t *testing.T) {
	GenerationsTotal.Reset()

	RecordGeneration("json", 10*time.Millisecond, true)
	if got := testutil.ToFloat64(GenerationsTotal.WithLabelValues("json", "success")); got != 1 {
		t.Errorf("Expected 1 successful generation, got %v", got)
	}

	RecordGeneration("json", 5*time.Millisecond, false)
	if got := testutil.ToFloat64(GenerationsTotal.WithLabelValues("json", "error")); got != 1 {
		t.Errorf("Expected 1 failed generation, got %v", got)
	}
}

func TestRecordValidationWarnings(t *testing.T) {
	ValidationWarningsTotal.Reset()

	RecordValidationWarnings("query", 3)
	if got := testutil.ToFloat64(ValidationWarningsTotal.WithLabelValues("query")); got != 3 {
		t.Errorf("Expected 3 warnings recorded, got %v", got)
	}

	// Zero warnings must not create a series.
	RecordValidationWarnings("prompt", 0)
	if got := testutil.CollectAndCount(ValidationWarningsTotal); got != 1 {
		t.Errorf("Expected 1 series, got %d", got)
	}
}

func TestRecordMCPRequest(t *testing.T) {
	MCPRequestsTotal.Reset()

	RecordMCPRequest("generate_query", 100*time.Millisecond, true)
	if got := testutil.ToFloat64(MCPRequestsTotal.WithLabelValues("generate_query", "success")); got != 1 {
		t.Errorf("Expected 1 successful request, got %v", got)
	}

	RecordMCPRequest("generate_query", 200*time.Millisecond, false)
	if got := testutil.ToFloat64(MCPRequestsTotal.WithLabelValues("generate_query", "error")); got != 1 {
		t.Errorf("Expected 1 failed request, got %v", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	CacheHits.Reset()
	CacheMisses.Reset()

	RecordCacheHit("tag")
	RecordCacheHit("tag")
	RecordCacheMiss("tag")

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("tag")); got != 2 {
		t.Errorf("Expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("tag")); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
}

func TestHealthChecker(t *testing.T) {
	hc := NewHealthChecker("oqlgen-test", "0.0.1")
	defer hc.Shutdown()

	health := hc.GetHealth()
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy with no connections", health.Status)
	}

	hc.UpdateConnection("overpass", "connected", 25, nil)
	hc.UpdateConnection("taginfo", "error", 0, nil)

	health = hc.GetHealth()
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded with one failing connection", health.Status)
	}
	if len(health.Connections) != 2 {
		t.Errorf("connections = %d, want 2", len(health.Connections))
	}

	hc.UpdateConnection("overpass", "error", 0, nil)
	health = hc.GetHealth()
	if health.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy when all connections fail", health.Status)
	}
}
