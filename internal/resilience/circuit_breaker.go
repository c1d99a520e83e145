// Package resilience implements the circuit breaker, retry, degradation,
// and offline-queue primitives that every external-facing operation in
// cmdforge runs through, plus the error taxonomy those primitives and
// their callers use to classify failures.
package resilience

import (
	"fmt"
	"sync"
	"time"
)

// CircuitState is one of the three states a CircuitBreaker can be in.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes a CircuitBreaker's thresholds.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
	OnStateChange    func(from, to CircuitState, name string)
}

// DefaultCircuitBreakerConfig is a reasonable general-purpose default.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// CircuitBreaker tracks Closed/Open/HalfOpen state for one named
// resource. Closed admits everything; Open rejects until Timeout
// elapses; HalfOpen admits trial requests and closes again once
// SuccessThreshold of them succeed, or reopens on the first failure.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig

	mu              sync.RWMutex
	state           CircuitState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	lastStateChange time.Time
}

// NewCircuitBreaker builds a closed CircuitBreaker named name.
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:            name,
		config:          config,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Allow reports whether a request should be admitted right now,
// transitioning Open -> HalfOpen once the timeout has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(cb.lastStateChange) >= cb.config.Timeout {
			cb.setStateLocked(StateHalfOpen)
			cb.successCount = 0
			return true
		}
		return false
	default:
		return false
	}
}

// Mark records the outcome of a request that Allow previously admitted.
func (cb *CircuitBreaker) Mark(err error) {
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.setStateLocked(StateClosed)
			cb.failureCount = 0
		}
	case StateClosed:
		cb.failureCount = 0
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case StateHalfOpen:
		cb.setStateLocked(StateOpen)
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.setStateLocked(StateOpen)
		}
	}
}

// setStateLocked must be called with cb.mu held.
func (cb *CircuitBreaker) setStateLocked(newState CircuitState) {
	if cb.state == newState {
		return
	}
	old := cb.state
	cb.state = newState
	cb.lastStateChange = time.Now()
	if cb.config.OnStateChange != nil {
		name := cb.name
		go cb.config.OnStateChange(old, newState, name)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forces the breaker back to Closed with cleared counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	cb.lastStateChange = time.Now()
}

// CircuitBreakerMetrics is a point-in-time snapshot for status reporting.
type CircuitBreakerMetrics struct {
	Name            string
	State           CircuitState
	FailureCount    int
	SuccessCount    int
	LastFailureTime time.Time
	LastStateChange time.Time
}

// Metrics snapshots the breaker's current counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return CircuitBreakerMetrics{
		Name:            cb.name,
		State:           cb.state,
		FailureCount:    cb.failureCount,
		SuccessCount:    cb.successCount,
		LastFailureTime: cb.lastFailureTime,
		LastStateChange: cb.lastStateChange,
	}
}

// Execute runs fn if the breaker admits it, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return fmt.Errorf("circuit %s: %w", cb.name, ErrCircuitOpen)
	}
	err := fn()
	cb.Mark(err)
	return err
}

// ExecuteFunc is the generic form of Execute for functions returning a value.
func ExecuteFunc[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if !cb.Allow() {
		return zero, fmt.Errorf("circuit %s: %w", cb.name, ErrCircuitOpen)
	}
	v, err := fn()
	cb.Mark(err)
	return v, err
}

// CircuitBreakerManager owns a registry of named breakers sharing a
// default config, creating them lazily on first use.
type CircuitBreakerManager struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	config   CircuitBreakerConfig
}

// NewCircuitBreakerManager builds a manager using config as the default
// for breakers created via Get.
func NewCircuitBreakerManager(config CircuitBreakerConfig) *CircuitBreakerManager {
	return &CircuitBreakerManager{
		breakers: make(map[string]*CircuitBreaker),
		config:   config,
	}
}

// Get returns the named breaker, creating it with the manager's default
// config if it doesn't exist yet.
func (m *CircuitBreakerManager) Get(name string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := m.breakers[name]; ok {
		return cb
	}
	cb := NewCircuitBreaker(name, m.config)
	m.breakers[name] = cb
	return cb
}

// GetMetrics snapshots every breaker currently tracked.
func (m *CircuitBreakerManager) GetMetrics() []CircuitBreakerMetrics {
	m.mu.Lock()
	names := make([]*CircuitBreaker, 0, len(m.breakers))
	for _, cb := range m.breakers {
		names = append(names, cb)
	}
	m.mu.Unlock()

	out := make([]CircuitBreakerMetrics, 0, len(names))
	for _, cb := range names {
		out = append(out, cb.Metrics())
	}
	return out
}

// ResetAll resets every tracked breaker to Closed.
func (m *CircuitBreakerManager) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cb := range m.breakers {
		cb.Reset()
	}
}

// Remove drops a breaker from the registry.
func (m *CircuitBreakerManager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.breakers, name)
}
