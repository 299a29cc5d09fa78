package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/models"
)

func TestRegistryReplayOrder(t *testing.T) {
	r := NewSubscriptionRegistry()
	r.Add(models.MSubscription{Channel: "market:BTC-USD"})
	r.Add(models.MSubscription{Channel: "market:ETH-USD"})
	r.Add(models.MSubscription{Channel: "market:AAPL"})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "market:BTC-USD", all[0].Channel)
	assert.Equal(t, "market:ETH-USD", all[1].Channel)
	assert.Equal(t, "market:AAPL", all[2].Channel)
}

func TestRegistryUpsertKeepsPosition(t *testing.T) {
	r := NewSubscriptionRegistry()
	r.Add(models.MSubscription{Channel: "a"})
	r.Add(models.MSubscription{Channel: "b"})

	// Re-adding "a" with new options must not move it behind "b"
	r.Add(models.MSubscription{
		Channel: "a",
		Options: models.MSubscribeOptions{Priority: models.PriorityHigh},
	})

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Channel)
	assert.Equal(t, models.PriorityHigh, all[0].Options.Priority)
}

func TestRegistryRemove(t *testing.T) {
	r := NewSubscriptionRegistry()
	r.Add(models.MSubscription{Channel: "a"})
	r.Add(models.MSubscription{Channel: "b"})
	r.Add(models.MSubscription{Channel: "c"})

	r.Remove("b")
	assert.False(t, r.Has("b"))
	assert.Equal(t, 2, r.Len())

	all := r.All()
	assert.Equal(t, "a", all[0].Channel)
	assert.Equal(t, "c", all[1].Channel)

	// Unknown channel is a no-op
	r.Remove("zzz")
	assert.Equal(t, 2, r.Len())
}

func TestRegistryClear(t *testing.T) {
	r := NewSubscriptionRegistry()
	r.Add(models.MSubscription{Channel: "a"})
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
}
