package request

import (
	"sync"

	"market-sync/src/helpers"
	"market-sync/src/interfaces"
)

// -----------------------------------------------------------------------------
// CircuitBreaker short-circuits REST calls to an upstream that keeps failing.
// After the configured number of consecutive failures the breaker opens and
// every call fails fast with CircuitOpenError. Once the reset window elapses,
// exactly one trial request is let through: success closes the breaker,
// failure re-opens it for another full window.
// -----------------------------------------------------------------------------

type CircuitBreaker struct {
	clock     interfaces.IClock
	threshold int
	resetMs   int64

	mu       sync.Mutex
	failures int
	open     bool
	openedAt int64 // epoch ms of the last transition into open
	probing  bool  // a trial request is in flight
}

// -----------------------------------------------------------------------------

func NewCircuitBreaker(threshold int, resetMs int64, clock interfaces.IClock) *CircuitBreaker {
	return &CircuitBreaker{
		clock:     clock,
		threshold: threshold,
		resetMs:   resetMs,
	}
}

// -----------------------------------------------------------------------------

// Allow reports whether a request may proceed. While open and inside the
// reset window it returns CircuitOpenError without touching the network.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}

	if b.clock.NowMs()-b.openedAt < b.resetMs {
		return helpers.NewCircuitOpenError("circuit breaker open")
	}

	// Reset window elapsed; admit a single trial
	if b.probing {
		return helpers.NewCircuitOpenError("circuit breaker trial already in flight")
	}
	b.probing = true
	return nil
}

// -----------------------------------------------------------------------------

// RecordSuccess closes the breaker and clears the failure streak.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.open = false
	b.probing = false
}

// -----------------------------------------------------------------------------

// RecordFailure extends the streak and opens the breaker at the threshold.
// A failed trial re-opens immediately for another full window.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.openedAt = b.clock.NowMs()
		b.probing = false
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.clock.NowMs()
	}
}

// -----------------------------------------------------------------------------

// IsOpen reports the current breaker position.
func (b *CircuitBreaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// -----------------------------------------------------------------------------

// Failures returns the current consecutive failure count.
func (b *CircuitBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
