package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordCircuitAndQueueState(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer(reg)

	m.CircuitState.WithLabelValues("mcp").Set(2)
	m.RetryAttempts.WithLabelValues("network").Add(3)
	m.DegradedFeatures.WithLabelValues("ai").Set(1)
	m.OfflineQueueDepth.Set(5)

	if got := testutil.ToFloat64(m.CircuitState.WithLabelValues("mcp")); got != 2 {
		t.Fatalf("expected circuit state 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.RetryAttempts.WithLabelValues("network")); got != 3 {
		t.Fatalf("expected 3 retry attempts, got %v", got)
	}
	if got := testutil.ToFloat64(m.DegradedFeatures.WithLabelValues("ai")); got != 1 {
		t.Fatalf("expected ai degraded gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.OfflineQueueDepth); got != 5 {
		t.Fatalf("expected offline queue depth 5, got %v", got)
	}
}

func TestMetricsMCPAndRunbookCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer(reg)

	m.MCPCallErrors.WithLabelValues("filesystem", "read_file").Inc()
	m.RunbookStepsRun.WithLabelValues("success").Add(4)
	m.RunbookFailures.WithLabelValues("deploy").Inc()

	if got := testutil.ToFloat64(m.MCPCallErrors.WithLabelValues("filesystem", "read_file")); got != 1 {
		t.Fatalf("expected 1 mcp call error, got %v", got)
	}
	if got := testutil.ToFloat64(m.RunbookStepsRun.WithLabelValues("success")); got != 4 {
		t.Fatalf("expected 4 successful steps, got %v", got)
	}
	if got := testutil.ToFloat64(m.RunbookFailures.WithLabelValues("deploy")); got != 1 {
		t.Fatalf("expected 1 runbook failure, got %v", got)
	}
}
