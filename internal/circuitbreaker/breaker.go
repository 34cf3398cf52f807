// Package circuitbreaker provides a defensive mechanism against an unhealthy
// or rate-limiting node provider: once the RPC transport fails repeatedly,
// outbound calls are cut off until the node shows signs of recovery.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, no new calls allowed
	StateHalfOpen              // Testing if the node has recovered
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrOpen is returned by Allow while the circuit is open
var ErrOpen = errors.New("circuit breaker open: node provider unhealthy")

// CircuitBreaker tracks consecutive RPC failures and blocks outbound calls
// once a threshold is crossed. Recovery is probed through a half-open state.
type CircuitBreaker struct {
	// Consecutive failures that trip the circuit
	maxFailures int

	// Current state of the circuit breaker (Closed, Open, HalfOpen)
	state State

	// Timestamp of the last circuit trip
	lastTrip time.Time

	// Duration before a recovery attempt
	resetDelay time.Duration

	// Mutex for thread safety
	mu sync.Mutex

	// Consecutive failure count in Closed state
	failureCount int

	// Count of consecutive successful calls in HalfOpen state
	successCount int

	// Number of successful calls required to close the circuit
	successThreshold int

	// Event callback for monitoring/alerting
	onTripCallback func(reason string)
}

// New creates a CircuitBreaker that trips after maxFailures consecutive
// transport failures.
func New(maxFailures int) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &CircuitBreaker{
		maxFailures:      maxFailures,
		state:            StateClosed,
		resetDelay:       time.Minute,
		successThreshold: 3,
	}
}

// WithResetDelay sets a custom reset delay and returns the circuit breaker
func (cb *CircuitBreaker) WithResetDelay(delay time.Duration) *CircuitBreaker {
	cb.resetDelay = delay
	return cb
}

// WithSuccessThreshold sets the number of successful calls needed to close the circuit
func (cb *CircuitBreaker) WithSuccessThreshold(threshold int) *CircuitBreaker {
	cb.successThreshold = threshold
	return cb
}

// WithTripCallback sets a callback function that is called when the circuit trips
func (cb *CircuitBreaker) WithTripCallback(callback func(reason string)) *CircuitBreaker {
	cb.onTripCallback = callback
	return cb
}

// Allow reports whether an outbound call may be issued right now. While the
// circuit is open it returns ErrOpen until the reset delay has elapsed, at
// which point the circuit moves to half-open and lets probe calls through.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastTrip) <= cb.resetDelay {
			return ErrOpen
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		logrus.Info("Circuit breaker half-open: testing node recovery")
	}
	return nil
}

// RecordSuccess registers a successful RPC call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.successCount = 0
			logrus.Info("Circuit breaker closed: node has recovered")
		}
	}
}

// RecordFailure registers a failed RPC call. A failure in half-open state
// re-opens the circuit immediately; in closed state the circuit trips once
// the consecutive-failure threshold is crossed.
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.trip("recovery probe failed: " + err.Error())
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.maxFailures {
			cb.trip(err.Error())
		}
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forcibly resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.successCount = 0
	logrus.Info("Circuit breaker manually reset to closed state")
}

// trip sets the circuit breaker to open state with the current time.
// Caller must hold the lock.
func (cb *CircuitBreaker) trip(reason string) {
	cb.state = StateOpen
	cb.lastTrip = time.Now()
	cb.failureCount = 0
	logrus.Warnf("Circuit breaker tripped: %s", reason)

	if cb.onTripCallback != nil {
		go cb.onTripCallback(reason)
	}
}
