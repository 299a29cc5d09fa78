package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-sync/src/models"
)

func TestEventBusEmit(t *testing.T) {
	bus := NewEventBus()
	var got []string

	bus.On(EventConnected, "a", func(msg models.MMessage) {
		got = append(got, "a:"+msg.Type)
	})
	bus.Emit(EventConnected, models.MMessage{Type: EventConnected})

	assert.Equal(t, []string{"a:connected"}, got)
}

func TestEventBusIdempotentRegistration(t *testing.T) {
	bus := NewEventBus()
	calls := 0

	// Same id registered twice fires once
	bus.On(EventError, "dup", func(models.MMessage) { calls++ })
	bus.On(EventError, "dup", func(models.MMessage) { calls++ })
	assert.Equal(t, 1, bus.ListenerCount(EventError))

	bus.Emit(EventError, models.MMessage{Type: models.TypeError})
	assert.Equal(t, 1, calls)
}

func TestEventBusOff(t *testing.T) {
	bus := NewEventBus()
	calls := 0

	bus.On(EventError, "x", func(models.MMessage) { calls++ })
	bus.Off(EventError, "x")
	bus.Emit(EventError, models.MMessage{Type: models.TypeError})
	assert.Zero(t, calls)

	// Removing an unknown listener is a no-op
	bus.Off(EventError, "never-registered")
	bus.Off("no-such-event", "x")
}

func TestEventBusIsolatedPerEvent(t *testing.T) {
	bus := NewEventBus()
	var events []string

	bus.On(models.TypeMarketUpdate, "agg", func(msg models.MMessage) {
		events = append(events, msg.Type)
	})
	bus.Emit(models.TypePong, models.MMessage{Type: models.TypePong})
	bus.Emit(models.TypeMarketUpdate, models.MMessage{Type: models.TypeMarketUpdate})

	assert.Equal(t, []string{models.TypeMarketUpdate}, events)
}
