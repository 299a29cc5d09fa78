package connection

import "market-sync/src/models"

// -----------------------------------------------------------------------------
// SubscriptionRegistry tracks the channels a consumer wants streamed, in
// registration order, so they can be replayed verbatim after a reconnect.
//
// Not goroutine-safe on its own; the connection manager serializes access.
// -----------------------------------------------------------------------------

type SubscriptionRegistry struct {
	order     []string
	byChannel map[string]models.MSubscription
}

// -----------------------------------------------------------------------------

func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{
		byChannel: make(map[string]models.MSubscription),
	}
}

// -----------------------------------------------------------------------------

// Add records a subscription. Re-adding a known channel updates its options
// but keeps the original position in the replay order.
func (r *SubscriptionRegistry) Add(sub models.MSubscription) {
	if _, exists := r.byChannel[sub.Channel]; !exists {
		r.order = append(r.order, sub.Channel)
	}
	r.byChannel[sub.Channel] = sub
}

// -----------------------------------------------------------------------------

// Remove drops a channel from the registry.
func (r *SubscriptionRegistry) Remove(channel string) {
	if _, exists := r.byChannel[channel]; !exists {
		return
	}
	delete(r.byChannel, channel)

	for i, ch := range r.order {
		if ch == channel {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// -----------------------------------------------------------------------------

// All returns subscriptions in registration order.
func (r *SubscriptionRegistry) All() []models.MSubscription {
	out := make([]models.MSubscription, 0, len(r.order))
	for _, ch := range r.order {
		out = append(out, r.byChannel[ch])
	}
	return out
}

// -----------------------------------------------------------------------------

// Has reports whether a channel is registered.
func (r *SubscriptionRegistry) Has(channel string) bool {
	_, ok := r.byChannel[channel]
	return ok
}

// -----------------------------------------------------------------------------

// Len returns the number of registered channels.
func (r *SubscriptionRegistry) Len() int {
	return len(r.order)
}

// -----------------------------------------------------------------------------

// Clear empties the registry.
func (r *SubscriptionRegistry) Clear() {
	r.order = nil
	r.byChannel = make(map[string]models.MSubscription)
}
