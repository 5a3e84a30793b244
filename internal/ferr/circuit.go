package ferr

import (
	"sync"
	"time"
)

// CircuitState represents the circuit breaker's state machine.
type CircuitState int

const (
	// CircuitClosed is the normal state where fetches are allowed.
	CircuitClosed CircuitState = iota
	// CircuitOpen blocks fetches; the source is treated as unhealthy.
	CircuitOpen
	// CircuitHalfOpen allows fetches again to test recovery; the next
	// success closes the circuit.
	CircuitHalfOpen
)

// String renders the state for logging.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker protects a single source from being hammered by retries
// against a chronically failing upstream. The Fetcher consults Allow
// before each attempt and records the outcome of every attempt.
type CircuitBreaker struct {
	alias        string
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.RWMutex
	state       CircuitState
	failures    int
	lastFailure time.Time
}

// NewCircuitBreaker creates a breaker for the given source alias.
// Defaults: 5 consecutive failures trips the circuit; 5 minutes before
// a half-open probe is allowed (longer than a generic service breaker's
// 30s, since a source is re-fetched on a human/agent-driven cadence,
// not a tight request loop).
func NewCircuitBreaker(alias string) *CircuitBreaker {
	return &CircuitBreaker{
		alias:        alias,
		maxFailures:  5,
		resetTimeout: 5 * time.Minute,
		state:        CircuitClosed,
	}
}

// Allow reports whether a fetch attempt should proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	switch cb.currentState() {
	case CircuitClosed, CircuitHalfOpen:
		return true
	default:
		return false
	}
}

// State returns the current state, accounting for reset-timeout elapse.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.currentState()
}

func (cb *CircuitBreaker) currentState() CircuitState {
	if cb.state == CircuitOpen && time.Since(cb.lastFailure) > cb.resetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// RecordSuccess resets the breaker to closed.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure records a failed fetch attempt, tripping the circuit
// once maxFailures consecutive failures have been observed.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = time.Now()
	if cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// Failures returns the current consecutive-failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}
