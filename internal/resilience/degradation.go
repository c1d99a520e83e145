package resilience

import (
	"sync"
	"time"

	"cmdforge/internal/observability"
)

// Feature identifies one of the subsystems the resilience kernel
// tracks circuit-breaker and degradation state for independently.
type Feature int

const (
	FeatureAI Feature = iota
	FeatureNetwork
	FeatureSync
	FeatureIntegrations
	FeatureMCP
	FeatureFuzzySearch
	FeatureScanning
)

func (f Feature) String() string {
	switch f {
	case FeatureAI:
		return "ai"
	case FeatureNetwork:
		return "network"
	case FeatureSync:
		return "sync"
	case FeatureIntegrations:
		return "integrations"
	case FeatureMCP:
		return "mcp"
	case FeatureFuzzySearch:
		return "fuzzy_search"
	case FeatureScanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// DegradationReason records why a feature was marked degraded.
type DegradationReason int

const (
	ReasonCircuitOpen DegradationReason = iota
	ReasonManual
)

func (r DegradationReason) String() string {
	switch r {
	case ReasonCircuitOpen:
		return "circuit_open"
	case ReasonManual:
		return "manual"
	default:
		return "unknown"
	}
}

// DegradationStatus is a point-in-time snapshot of one degraded feature.
type DegradationStatus struct {
	Feature Feature
	Reason  DegradationReason
	Since   time.Time
}

// DegradationManager tracks which features are currently running in a
// degraded mode, and since when, so callers can surface that state to
// users and decide whether to serve fallback content.
type DegradationManager struct {
	mu       sync.RWMutex
	degraded map[Feature]DegradationStatus
	metrics  *observability.Metrics
}

// NewDegradationManager builds an empty (fully healthy) manager.
func NewDegradationManager() *DegradationManager {
	return NewDegradationManagerWithMetrics(nil)
}

// NewDegradationManagerWithMetrics builds an empty manager that also
// reports DegradedFeatures on metrics. metrics may be nil to disable
// reporting.
func NewDegradationManagerWithMetrics(metrics *observability.Metrics) *DegradationManager {
	return &DegradationManager{degraded: make(map[Feature]DegradationStatus), metrics: metrics}
}

// Degrade marks feature as degraded for the given reason, unless it is
// already degraded (the original since timestamp is preserved).
func (m *DegradationManager) Degrade(feature Feature, reason DegradationReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, already := m.degraded[feature]; already {
		return
	}
	m.degraded[feature] = DegradationStatus{Feature: feature, Reason: reason, Since: time.Now()}
	if m.metrics != nil {
		m.metrics.DegradedFeatures.WithLabelValues(feature.String()).Set(1)
	}
}

// Recover clears feature's degraded state, if any.
func (m *DegradationManager) Recover(feature Feature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.degraded, feature)
	if m.metrics != nil {
		m.metrics.DegradedFeatures.WithLabelValues(feature.String()).Set(0)
	}
}

// IsDegraded reports whether feature is currently degraded.
func (m *DegradationManager) IsDegraded(feature Feature) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.degraded[feature]
	return ok
}

// Status returns every currently degraded feature.
func (m *DegradationManager) Status() []DegradationStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DegradationStatus, 0, len(m.degraded))
	for _, s := range m.degraded {
		out = append(out, s)
	}
	return out
}
