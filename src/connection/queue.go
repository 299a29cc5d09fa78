package connection

import (
	"market-sync/src/helpers"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// OutboundQueue is a fixed-size FIFO ring over messages awaiting transmission.
// True ring buffer - no resizing allowed!
//
// Overflow policy is drop-newest: a full queue rejects the incoming message
// so the earliest-submitted work keeps its ordering guarantee.
//
// Not goroutine-safe on its own; the connection manager serializes access.
// -----------------------------------------------------------------------------

type OutboundQueue struct {
	data     []models.MMessage
	capacity int
	head     int // Read position (oldest element)
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewOutboundQueue creates a new queue with fixed capacity
func NewOutboundQueue(capacity int) *OutboundQueue {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &OutboundQueue{
		data:     make([]models.MMessage, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Enqueue appends a message. Returns an OverflowError when full; the queue
// is left untouched in that case.
func (q *OutboundQueue) Enqueue(msg models.MMessage) error {
	if q.size == q.capacity {
		return helpers.NewOverflowError("outbound queue full, message rejected")
	}

	idx := (q.head + q.size) % q.capacity
	q.data[idx] = msg
	q.size++
	return nil
}

// -----------------------------------------------------------------------------

// Dequeue removes and returns the oldest message.
func (q *OutboundQueue) Dequeue() (models.MMessage, bool) {
	if q.size == 0 {
		return models.MMessage{}, false
	}

	msg := q.data[q.head]
	q.data[q.head] = models.MMessage{} // release payload reference
	q.head = (q.head + 1) % q.capacity
	q.size--
	return msg, true
}

// -----------------------------------------------------------------------------

// Drain removes and returns every queued message in insertion order.
func (q *OutboundQueue) Drain() []models.MMessage {
	if q.size == 0 {
		return nil
	}

	out := make([]models.MMessage, 0, q.size)
	for {
		msg, ok := q.Dequeue()
		if !ok {
			break
		}
		out = append(out, msg)
	}
	return out
}

// -----------------------------------------------------------------------------

// Len returns current number of queued messages
func (q *OutboundQueue) Len() int {
	return q.size
}

// -----------------------------------------------------------------------------

// Capacity returns queue capacity (fixed)
func (q *OutboundQueue) Capacity() int {
	return q.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether the queue is at capacity
func (q *OutboundQueue) IsFull() bool {
	return q.size == q.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the queue
func (q *OutboundQueue) Clear() {
	for i := range q.data {
		q.data[i] = models.MMessage{}
	}
	q.head = 0
	q.size = 0
}
