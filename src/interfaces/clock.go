package interfaces

import "time"

// -----------------------------------------------------------------------------
// IClock abstracts wall time and timers so tests can advance virtual time
// instead of sleeping.
// -----------------------------------------------------------------------------

type IClock interface {

	// Now returns the current time.
	Now() time.Time

	// -----------------------------------------------------------------------------

	// NowMs returns the current epoch milliseconds.
	NowMs() int64

	// -----------------------------------------------------------------------------

	// Ticker returns a channel firing roughly every d, and a stop function.
	Ticker(d time.Duration) (<-chan time.Time, func())

	// -----------------------------------------------------------------------------

	// After returns a channel that fires once after d.
	After(d time.Duration) <-chan time.Time
}
