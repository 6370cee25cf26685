package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrCircuitOpen is returned without calling the provider while the breaker is open.
var ErrCircuitOpen error = &Error{Kind: ErrUnavailable, Err: errors.New("circuit breaker open")}

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"    // Normal operation
	StateOpen     CircuitState = "open"      // Failing, reject requests
	StateHalfOpen CircuitState = "half-open" // One probe allowed through
)

// CircuitBreaker stops calling a provider after consecutive service failures.
// Rejected request errors (bad argument, blocked content) do not count as failures,
// and calls abandoned by the caller (context.Canceled) are not counted at all.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           CircuitState
	failureCount    int
	probeInFlight   bool
	lastFailureTime time.Time
	lastStateChange time.Time

	failureThreshold int
	openTimeout      time.Duration
	now              func() time.Time
	log              zerolog.Logger

	totalRequests   int64
	totalFailures   int64
	totalRejections int64
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold consecutive failures
// and lets a single probe through once openTimeout has elapsed.
func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, logger zerolog.Logger) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 5
	}
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		now:              time.Now,
		log:              logger,
	}
	cb.lastStateChange = cb.now()

	cb.log.Debug().
		Int("threshold", failureThreshold).
		Dur("open_timeout", openTimeout).
		Msg("circuit breaker initialized")
	return cb
}

// Call runs fn unless the breaker is open, and records its outcome.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn()
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.openTimeout {
			cb.totalRejections++
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.probeInFlight = true
		return nil
	case StateHalfOpen:
		if cb.probeInFlight {
			cb.totalRejections++
			return ErrCircuitOpen
		}
		cb.probeInFlight = true
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probeInFlight = false

	// The caller gave up; that says nothing about the provider.
	if errors.Is(err, context.Canceled) {
		return
	}

	if !countsAsFailure(err) {
		if cb.state != StateClosed {
			cb.setState(StateClosed)
		}
		cb.failureCount = 0
		return
	}

	cb.totalFailures++
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
	}
}

func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case ErrInvalidArgument, ErrBlocked:
		return false
	}
	return true
}

func (cb *CircuitBreaker) setState(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	cb.lastStateChange = cb.now()

	if oldState != newState {
		cb.log.Warn().
			Str("from", string(oldState)).
			Str("to", string(newState)).
			Int("failures", cb.failureCount).
			Msg("circuit breaker state transition")
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns current statistics
func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":            string(cb.state),
		"total_requests":   cb.totalRequests,
		"total_failures":   cb.totalFailures,
		"total_rejections": cb.totalRejections,
		"failure_count":    cb.failureCount,
		"time_in_state":    cb.now().Sub(cb.lastStateChange).String(),
	}
}

// Reset manually closes the breaker.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.setState(StateClosed)
	cb.failureCount = 0
	cb.probeInFlight = false
}
