package connection

import (
	"sync"

	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// Event Bus
//
// Per-instance publish/subscribe for manager events. Listeners are keyed by
// (event, id) so registering or removing the same listener twice is a no-op,
// and independent manager instances never share state.
// -----------------------------------------------------------------------------

// Lifecycle event names. Every wire message type tag is also an event.
const (
	EventConnected = "connected"
	EventError     = "error"
)

// Handler receives the message that triggered the event. Lifecycle events
// carry a synthetic message with the event name as type tag.
type Handler func(msg models.MMessage)

// -----------------------------------------------------------------------------

type EventBus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler // event -> listener id -> handler
}

// -----------------------------------------------------------------------------

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string]map[string]Handler),
	}
}

// -----------------------------------------------------------------------------

// On registers a handler under a listener id. Re-registering the same id
// replaces the previous handler.
func (b *EventBus) On(event, id string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[event] == nil {
		b.handlers[event] = make(map[string]Handler)
	}
	b.handlers[event][id] = fn
}

// -----------------------------------------------------------------------------

// Off removes a listener. Removing an unknown id is a no-op.
func (b *EventBus) Off(event, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.handlers[event]; ok {
		delete(m, id)
		if len(m) == 0 {
			delete(b.handlers, event)
		}
	}
}

// -----------------------------------------------------------------------------

// Emit dispatches to every listener registered for the event. Handlers run
// on the caller's goroutine; they must not block.
func (b *EventBus) Emit(event string, msg models.MMessage) {
	b.mu.RLock()
	listeners := make([]Handler, 0, len(b.handlers[event]))
	for _, fn := range b.handlers[event] {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(msg)
	}
}

// -----------------------------------------------------------------------------

// ListenerCount reports how many listeners an event has.
func (b *EventBus) ListenerCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[event])
}
