package circuitbreaker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNode = errors.New("connection refused")

func TestCircuitBreaker_BasicFunctionality(t *testing.T) {
	cb := New(3)
	assert.Equal(t, StateClosed, cb.GetState(), "Circuit breaker should start closed")

	require.NoError(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.GetState(), "Circuit should remain closed on success")
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(3)

	for i := 0; i < 2; i++ {
		cb.RecordFailure(errNode)
		assert.Equal(t, StateClosed, cb.GetState(), "Circuit should stay closed below threshold")
	}

	cb.RecordFailure(errNode)
	assert.Equal(t, StateOpen, cb.GetState(), "Circuit should open at threshold")
	assert.ErrorIs(t, cb.Allow(), ErrOpen, "Open circuit should refuse calls")
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(3)

	cb.RecordFailure(errNode)
	cb.RecordFailure(errNode)
	cb.RecordSuccess()
	cb.RecordFailure(errNode)
	cb.RecordFailure(errNode)

	assert.Equal(t, StateClosed, cb.GetState(), "Interleaved successes should prevent a trip")
}

func TestCircuitBreaker_RecoveryThroughHalfOpen(t *testing.T) {
	cb := New(1).WithResetDelay(20 * time.Millisecond).WithSuccessThreshold(2)

	cb.RecordFailure(errNode)
	require.Equal(t, StateOpen, cb.GetState())
	require.ErrorIs(t, cb.Allow(), ErrOpen)

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Allow(), "After the reset delay a probe call is allowed")
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.GetState(), "One success is not enough to close")

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.GetState(), "Circuit closes after the success threshold")
}

func TestCircuitBreaker_FailureInHalfOpenReopens(t *testing.T) {
	cb := New(1).WithResetDelay(20 * time.Millisecond)

	cb.RecordFailure(errNode)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Allow())
	require.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordFailure(errNode)
	assert.Equal(t, StateOpen, cb.GetState(), "Failed probe should reopen the circuit")
}

func TestCircuitBreaker_TripCallback(t *testing.T) {
	var tripped atomic.Int32
	cb := New(1).WithTripCallback(func(reason string) {
		tripped.Add(1)
	})

	cb.RecordFailure(errNode)

	assert.Eventually(t, func() bool { return tripped.Load() == 1 },
		time.Second, 10*time.Millisecond, "Trip callback should fire once")
}

func TestCircuitBreaker_ManualReset(t *testing.T) {
	cb := New(1)
	cb.RecordFailure(errNode)
	require.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Allow())
}
