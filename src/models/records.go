package models

// Record sources. Stream always wins over snapshot once received.
const (
	SourceSnapshot = "snapshot"
	SourceStream   = "stream"
)

// -----------------------------------------------------------------------------

// MDataRecord is the canonical per-symbol record held by the aggregator.
type MDataRecord struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
	LastUpdatedAt int64   `json:"last_updated_at"` // epoch ms, arrival time
	Source        string  `json:"source"`          // "snapshot" or "stream"
}

// -----------------------------------------------------------------------------

// MPredictionRecord holds the last fetched prediction for a symbol.
type MPredictionRecord struct {
	Symbol         string  `json:"symbol"`
	PredictedValue float64 `json:"predicted_value"`
	Confidence     float64 `json:"confidence"`
	ObservedAt     int64   `json:"observed_at"` // epoch ms
}

// -----------------------------------------------------------------------------

// MAccuracyMetric is a derived view; recomputed periodically, never stored back
// into the record maps.
type MAccuracyMetric struct {
	Symbol     string  `json:"symbol"`
	Accuracy   float64 `json:"accuracy"` // 0..100
	Confidence float64 `json:"confidence"`
	ComputedAt int64   `json:"computed_at"` // epoch ms
}

// -----------------------------------------------------------------------------

// MConnectionMetrics accumulates for the lifetime of one connection manager,
// reset only by an explicit Disconnect.
type MConnectionMetrics struct {
	LatencyMs        int64 `json:"latency_ms"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesReceived int64 `json:"messages_received"`
	ErrorCount       int64 `json:"error_count"`
	ReconnectCount   int64 `json:"reconnect_count"`
	Overflows        int64 `json:"overflows"`
}

// -----------------------------------------------------------------------------
// Collaborator REST shapes
// -----------------------------------------------------------------------------

// MMarketSnapshot is one element of the GET /market-data response array.
type MMarketSnapshot struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// MPredictionResponse is the GET /predictions/{symbol} response body.
type MPredictionResponse struct {
	Symbol         string  `json:"symbol"`
	PredictedValue float64 `json:"predicted_value"`
	Confidence     float64 `json:"confidence"`
	Timestamp      int64   `json:"timestamp"`
}
