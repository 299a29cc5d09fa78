package models

import "encoding/json"

// MResponse is the uniform envelope every Request Client call returns.
// Callers never see a raw *http.Response.
type MResponse struct {
	Success       bool            `json:"success"`
	Status        int             `json:"status"`
	Data          json.RawMessage `json:"data,omitempty"`
	Error         string          `json:"error,omitempty"`
	CorrelationID string          `json:"correlation_id"`
	LatencyMs     int64           `json:"latency_ms"`
	FromCache     bool            `json:"from_cache"`
}
