package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Wire Message Type Tags
// -----------------------------------------------------------------------------

const (
	TypePing         = "ping"
	TypePong         = "pong"
	TypeSubscribe    = "subscribe"
	TypeUnsubscribe  = "unsubscribe"
	TypeMarketUpdate = "market_update"
	TypeError        = "error"
)

// -----------------------------------------------------------------------------
// MMessage is one frame on the wire. Immutable once constructed.
// Payload stays raw until dispatched by Type tag.
// -----------------------------------------------------------------------------

type MMessage struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  int64           `json:"timestamp"` // epoch ms
	Compressed bool            `json:"compressed"`
}

// -----------------------------------------------------------------------------
// Payload shapes, one per type tag
// -----------------------------------------------------------------------------

type MPingPayload struct {
	SentAt int64 `json:"sent_at"` // epoch ms
}

type MPongPayload struct {
	SentAt int64 `json:"sent_at"` // echoed ping timestamp
}

type MSubscribePayload struct {
	Channel string            `json:"channel"`
	Options MSubscribeOptions `json:"options"`
}

type MMarketUpdatePayload struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

type MErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Priority levels for subscribe options.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

type MSubscribeOptions struct {
	Compression  bool   `json:"compression,omitempty"`
	Priority     string `json:"priority,omitempty"`
	RetryOnError bool   `json:"retry_on_error,omitempty"`
}

// MSubscription is one registry entry; re-applied verbatim on reconnect.
type MSubscription struct {
	Channel string
	Options MSubscribeOptions
}
