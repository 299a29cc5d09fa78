package connection

import (
	"encoding/json"
	"sync"
	"time"

	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// HeartbeatMonitor sends a ping carrying the send timestamp on a fixed cadence
// while the connection is up. Latency is derived when the matching pong comes
// back. The monitor is purely observational: a missing pong never forces a
// reconnect, it only stops producing fresh latency samples.
// -----------------------------------------------------------------------------

type HeartbeatMonitor struct {
	clock    interfaces.IClock
	interval time.Duration
	send     func(models.MMessage) bool
	logger   *logger.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// -----------------------------------------------------------------------------

func NewHeartbeatMonitor(clock interfaces.IClock, interval time.Duration, send func(models.MMessage) bool, log *logger.Logger) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		clock:    clock,
		interval: interval,
		send:     send,
		logger:   log,
		stopCh:   make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Start launches the ping loop. Call once per connection. The ticker is
// registered before Start returns so the first interval begins immediately.
func (h *HeartbeatMonitor) Start() {
	tick, stop := h.clock.Ticker(h.interval)
	go h.run(tick, stop)
}

// -----------------------------------------------------------------------------

func (h *HeartbeatMonitor) run(tick <-chan time.Time, stop func()) {
	defer stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-tick:
			if !h.sendPing() {
				h.logger.Debug("Heartbeat ping not transmitted")
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (h *HeartbeatMonitor) sendPing() bool {
	now := h.clock.NowMs()
	payload, err := json.Marshal(models.MPingPayload{SentAt: now})
	if err != nil {
		return false
	}

	return h.send(models.MMessage{
		Type:      models.TypePing,
		Payload:   payload,
		Timestamp: now,
	})
}

// -----------------------------------------------------------------------------

// Stop terminates the ping loop. Safe to call multiple times.
func (h *HeartbeatMonitor) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
}

// -----------------------------------------------------------------------------

// Latency computes the round trip for a received pong.
func (h *HeartbeatMonitor) Latency(pong models.MPongPayload) int64 {
	return h.clock.NowMs() - pong.SentAt
}
