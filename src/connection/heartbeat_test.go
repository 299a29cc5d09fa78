package connection

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/utils"
)

func TestHeartbeatSendsPingsOnCadence(t *testing.T) {
	clock := utils.NewFakeClock(time.Unix(1700000000, 0))

	var mu sync.Mutex
	var pings []models.MMessage
	send := func(msg models.MMessage) bool {
		mu.Lock()
		defer mu.Unlock()
		pings = append(pings, msg)
		return true
	}

	h := NewHeartbeatMonitor(clock, time.Second, send, logger.NewLogger("ERROR", "test"))
	h.Start()
	defer h.Stop()

	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pings) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, msg := range pings {
		assert.Equal(t, models.TypePing, msg.Type)
		var p models.MPingPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &p))
		assert.NotZero(t, p.SentAt)
	}
}

func TestHeartbeatStopIsIdempotent(t *testing.T) {
	clock := utils.NewFakeClock(time.Unix(1700000000, 0))
	h := NewHeartbeatMonitor(clock, time.Second, func(models.MMessage) bool { return true },
		logger.NewLogger("ERROR", "test"))

	h.Start()
	h.Stop()
	h.Stop()
}

func TestHeartbeatLatency(t *testing.T) {
	clock := utils.NewFakeClock(time.Unix(1700000000, 0))
	h := NewHeartbeatMonitor(clock, time.Second, func(models.MMessage) bool { return true },
		logger.NewLogger("ERROR", "test"))

	sentAt := clock.NowMs()
	clock.Advance(120 * time.Millisecond)
	assert.Equal(t, int64(120), h.Latency(models.MPongPayload{SentAt: sentAt}))
}
