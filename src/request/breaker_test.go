package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/helpers"
	"market-sync/src/utils"
)

func newTestBreaker(threshold int, resetMs int64) (*CircuitBreaker, *utils.FakeClock) {
	clock := utils.NewFakeClock(time.Unix(1700000000, 0))
	return NewCircuitBreaker(threshold, resetMs, clock), clock
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 30000)

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Allow())
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())

	require.NoError(t, b.Allow())
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	// Open: fail fast without touching the network
	err := b.Allow()
	require.Error(t, err)
	assert.True(t, helpers.IsCircuitOpen(err))
}

func TestBreakerSuccessResetsStreak(t *testing.T) {
	b, _ := newTestBreaker(3, 30000)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	assert.Zero(t, b.Failures())

	// The streak must be consecutive; two more failures stay under threshold
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreakerTrialAfterResetWindow(t *testing.T) {
	b, clock := newTestBreaker(1, 30000)

	b.RecordFailure()
	require.True(t, b.IsOpen())
	require.Error(t, b.Allow())

	// Inside the window the breaker stays shut
	clock.Advance(29 * time.Second)
	require.Error(t, b.Allow())

	// Window elapsed: exactly one trial gets through
	clock.Advance(2 * time.Second)
	require.NoError(t, b.Allow())
	err := b.Allow()
	require.Error(t, err)
	assert.True(t, helpers.IsCircuitOpen(err))

	// Successful trial closes the breaker
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
	require.NoError(t, b.Allow())
}

func TestBreakerFailedTrialReopens(t *testing.T) {
	b, clock := newTestBreaker(1, 30000)

	b.RecordFailure()
	clock.Advance(31 * time.Second)
	require.NoError(t, b.Allow())

	// Trial failed: another full window starts now
	b.RecordFailure()
	require.Error(t, b.Allow())

	clock.Advance(29 * time.Second)
	require.Error(t, b.Allow())

	clock.Advance(2 * time.Second)
	require.NoError(t, b.Allow())
}
