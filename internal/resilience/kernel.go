package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cmdforge/internal/observability"
)

// FeatureResilience pairs a circuit breaker with the retry policy that
// governs one Feature's external calls.
type FeatureResilience struct {
	feature     Feature
	breaker     *CircuitBreaker
	retryConfig RetryConfig
	metrics     *observability.Metrics
}

// paramsFor returns the circuit breaker and retry tuning for feature.
// AI gets a forgiving threshold since provider calls are expensive and
// slow to recover from; MCP gets the tightest threshold since a wedged
// child process should be cut off fast; fuzzy search and scanning are
// local and fail fast on the same quick-retry policy as MCP.
func paramsFor(feature Feature) (CircuitBreakerConfig, RetryConfig) {
	switch feature {
	case FeatureAI:
		return CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 60 * time.Second}, APIRetryConfig()
	case FeatureNetwork:
		return CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 3, Timeout: 30 * time.Second}, NetworkRetryConfig()
	case FeatureSync:
		return CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 120 * time.Second}, NetworkRetryConfig()
	case FeatureIntegrations:
		return CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 60 * time.Second}, NetworkRetryConfig()
	case FeatureMCP:
		return CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, Timeout: 30 * time.Second}, QuickRetryConfig()
	case FeatureFuzzySearch:
		return CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 10 * time.Second}, QuickRetryConfig()
	case FeatureScanning:
		return CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 10 * time.Second}, QuickRetryConfig()
	default:
		return DefaultCircuitBreakerConfig(), DefaultRetryConfig()
	}
}

// NewFeatureResilience builds the breaker+retry pair for feature using
// the fixed per-feature tuning in paramsFor. metrics may be nil to skip
// reporting; when set, the breaker's CircuitState is mirrored into it on
// every state transition.
func NewFeatureResilience(feature Feature, metrics *observability.Metrics) *FeatureResilience {
	cbConfig, retryConfig := paramsFor(feature)
	if metrics != nil {
		cbConfig.OnStateChange = func(from, to CircuitState, name string) {
			metrics.CircuitState.WithLabelValues(feature.String()).Set(float64(to))
		}
	}
	return &FeatureResilience{
		feature:     feature,
		breaker:     NewCircuitBreaker(feature.String(), cbConfig),
		retryConfig: retryConfig,
		metrics:     metrics,
	}
}

// IsAvailable reports whether the breaker currently admits requests.
func (fr *FeatureResilience) IsAvailable() bool { return fr.breaker.Allow() }

// CircuitState returns the breaker's current state.
func (fr *FeatureResilience) CircuitState() CircuitState { return fr.breaker.State() }

// RecordSuccess marks a successful call against the breaker.
func (fr *FeatureResilience) RecordSuccess() { fr.breaker.Mark(nil) }

// RecordFailure marks a failed call against the breaker.
func (fr *FeatureResilience) RecordFailure(err error) {
	if err == nil {
		err = fmt.Errorf("unspecified failure")
	}
	fr.breaker.Mark(err)
}

// Reset forces the breaker closed.
func (fr *FeatureResilience) Reset() { fr.breaker.Reset() }

// ExecuteFeature runs op through fr's retry policy, gated by the
// breaker's current availability, and records the outcome on the
// breaker. It does not itself consult degradation or offline state —
// that composition lives in ExecuteResilient.
func ExecuteFeature[T any](ctx context.Context, fr *FeatureResilience, op func(context.Context) (T, error)) Outcome[T] {
	if !fr.IsAvailable() {
		return Outcome[T]{Err: &CircuitOpenError{Feature: fr.feature}}
	}

	outcome := RetryWithResult(ctx, fr.retryConfig, op)
	if fr.metrics != nil && outcome.Attempts > 0 {
		fr.metrics.RetryAttempts.WithLabelValues(fr.feature.String()).Add(float64(outcome.Attempts))
	}
	if outcome.Err != nil {
		fr.RecordFailure(outcome.Err)
		return Outcome[T]{Err: outcome.Err, Attempts: outcome.Attempts}
	}
	fr.RecordSuccess()
	return outcome
}

// ResilienceManager owns one FeatureResilience per Feature variant. Each
// feature gets its own breaker tuned by paramsFor, rather than aliasing
// FuzzySearch and Scanning onto the AI breaker's instance.
type ResilienceManager struct {
	mu       sync.RWMutex
	byFeature map[Feature]*FeatureResilience
}

// NewResilienceManager builds a manager with one FeatureResilience per
// known Feature, pre-created so ForFeature never needs to lazily build one.
func NewResilienceManager() *ResilienceManager {
	return NewResilienceManagerWithMetrics(nil)
}

// NewResilienceManagerWithMetrics builds a manager whose per-feature
// breakers report CircuitState and RetryAttempts on metrics. metrics may
// be nil, in which case this is identical to NewResilienceManager.
func NewResilienceManagerWithMetrics(metrics *observability.Metrics) *ResilienceManager {
	m := &ResilienceManager{byFeature: make(map[Feature]*FeatureResilience)}
	for _, f := range []Feature{
		FeatureAI, FeatureNetwork, FeatureSync, FeatureIntegrations,
		FeatureMCP, FeatureFuzzySearch, FeatureScanning,
	} {
		m.byFeature[f] = NewFeatureResilience(f, metrics)
	}
	return m
}

// ForFeature returns the FeatureResilience for feature.
func (m *ResilienceManager) ForFeature(feature Feature) *FeatureResilience {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byFeature[feature]
}

// ResetAll resets every feature's breaker to Closed.
func (m *ResilienceManager) ResetAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, fr := range m.byFeature {
		fr.Reset()
	}
}

// StatusSummary snapshots every feature's current circuit state.
func (m *ResilienceManager) StatusSummary() map[Feature]CircuitState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Feature]CircuitState, len(m.byFeature))
	for f, fr := range m.byFeature {
		out[f] = fr.CircuitState()
	}
	return out
}

// ExecuteResilient is the full composition every external-facing
// operation runs through:
//
//  1. If offline, queue the operation and return immediately.
//  2. If the feature's breaker is not available, degrade the feature,
//     queue the operation, and return.
//  3. Otherwise execute with retry. On success, clear any prior
//     degradation. On failure that trips the breaker open, degrade the
//     feature and queue the operation for later replay.
func ExecuteResilient[T any](
	ctx context.Context,
	feature Feature,
	manager *ResilienceManager,
	degradation *DegradationManager,
	offline *OfflineManager,
	op func(context.Context) (T, error),
	queueOp QueuedOperation,
) Outcome[T] {
	if offline.IsOffline() {
		if queueOp != nil {
			offline.QueueOperation(queueOp)
		}
		return Outcome[T]{Queued: true}
	}

	fr := manager.ForFeature(feature)
	if !fr.IsAvailable() {
		degradation.Degrade(feature, ReasonCircuitOpen)
		if queueOp != nil {
			offline.QueueOperation(queueOp)
		}
		return Outcome[T]{Err: &CircuitOpenError{Feature: feature}, Queued: queueOp != nil}
	}

	outcome := ExecuteFeature(ctx, fr, op)
	if outcome.Err == nil {
		degradation.Recover(feature)
		return outcome
	}

	if fr.CircuitState() == StateOpen {
		degradation.Degrade(feature, ReasonCircuitOpen)
		if queueOp != nil {
			offline.QueueOperation(queueOp)
			outcome.Queued = true
		}
	}
	return outcome
}
