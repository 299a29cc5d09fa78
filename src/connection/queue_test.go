package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/helpers"
	"market-sync/src/models"
)

func msgNum(n int) models.MMessage {
	return models.MMessage{Type: models.TypeMarketUpdate, Timestamp: int64(n)}
}

func TestQueueEnqueueDequeue(t *testing.T) {
	q := NewOutboundQueue(4)

	require.NoError(t, q.Enqueue(msgNum(1)))
	require.NoError(t, q.Enqueue(msgNum(2)))
	assert.Equal(t, 2, q.Len())

	first, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, int64(1), first.Timestamp)
	assert.Equal(t, 1, q.Len())
}

func TestQueueOverflowDropsNewest(t *testing.T) {
	q := NewOutboundQueue(3)
	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(msgNum(i)))
	}
	require.True(t, q.IsFull())

	// Every enqueue past capacity fails; the queue keeps the oldest entries.
	overflows := 0
	for i := 4; i <= 8; i++ {
		err := q.Enqueue(msgNum(i))
		require.Error(t, err)
		assert.True(t, helpers.IsOverflow(err))
		overflows++
	}
	assert.Equal(t, 5, overflows)
	assert.Equal(t, 3, q.Len())

	drained := q.Drain()
	require.Len(t, drained, 3)
	for i, msg := range drained {
		assert.Equal(t, int64(i+1), msg.Timestamp)
	}
}

func TestQueueDrainOrderAfterWrap(t *testing.T) {
	q := NewOutboundQueue(3)
	require.NoError(t, q.Enqueue(msgNum(1)))
	require.NoError(t, q.Enqueue(msgNum(2)))

	_, ok := q.Dequeue()
	require.True(t, ok)

	// head has advanced; these wrap around the backing array
	require.NoError(t, q.Enqueue(msgNum(3)))
	require.NoError(t, q.Enqueue(msgNum(4)))

	drained := q.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, int64(2), drained[0].Timestamp)
	assert.Equal(t, int64(3), drained[1].Timestamp)
	assert.Equal(t, int64(4), drained[2].Timestamp)
}

func TestQueueClear(t *testing.T) {
	q := NewOutboundQueue(2)
	require.NoError(t, q.Enqueue(msgNum(1)))
	require.NoError(t, q.Enqueue(msgNum(2)))

	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.IsFull())
	require.NoError(t, q.Enqueue(msgNum(3)))
}

func TestQueueDefaultCapacity(t *testing.T) {
	q := NewOutboundQueue(0)
	assert.Equal(t, 1000, q.Capacity())
}
