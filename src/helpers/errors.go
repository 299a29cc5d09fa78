package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error Taxonomy
//
// Every failure surfaced by the sync layer is one of the types below. They all
// wrap MarketSyncError so callers can match either the broad base or a
// specific kind with errors.As.
// -----------------------------------------------------------------------------

type MarketSyncError struct {
	Message string
	Cause   error
}

func (e *MarketSyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketSyncError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// TransportError covers connect, close and send failures on the stream.
type TransportError struct{ MarketSyncError }

// ProtocolError covers malformed or undecodable frames.
type ProtocolError struct{ MarketSyncError }

// CircuitOpenError is returned when a request is short-circuited.
type CircuitOpenError struct{ MarketSyncError }

// OverflowError is returned when the outbound queue rejects a send.
// Non-fatal; counted in connection metrics.
type OverflowError struct{ MarketSyncError }

// TimeoutError covers requests that got no response within the window.
type TimeoutError struct{ MarketSyncError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewTransportError(msg string, cause error) error {
	return &TransportError{MarketSyncError{Message: msg, Cause: cause}}
}

func NewProtocolError(msg string, cause error) error {
	return &ProtocolError{MarketSyncError{Message: msg, Cause: cause}}
}

func NewCircuitOpenError(msg string) error {
	return &CircuitOpenError{MarketSyncError{Message: msg}}
}

func NewOverflowError(msg string) error {
	return &OverflowError{MarketSyncError{Message: msg}}
}

func NewTimeoutError(msg string, cause error) error {
	return &TimeoutError{MarketSyncError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Matchers
// -----------------------------------------------------------------------------

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

func IsProtocol(err error) bool {
	var e *ProtocolError
	return errors.As(err, &e)
}

func IsCircuitOpen(err error) bool {
	var e *CircuitOpenError
	return errors.As(err, &e)
}

func IsOverflow(err error) bool {
	var e *OverflowError
	return errors.As(err, &e)
}

func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}
