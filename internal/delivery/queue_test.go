package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/model"
)

func envelope(requestID string) model.Envelope {
	return model.Envelope{Record: model.Record{Service: "svc", RequestID: requestID}}
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Enqueue(envelope("a"))
	q.Enqueue(envelope("b"))
	q.Enqueue(envelope("c"))

	for _, want := range []string{"a", "b", "c"} {
		env, kind := q.Dequeue(time.Second)
		require.Equal(t, DequeueRecord, kind)
		assert.Equal(t, want, env.RequestID)
	}
	assert.Equal(t, 0, q.Len())
}

func TestDequeueTimesOut(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	_, kind := q.Dequeue(50 * time.Millisecond)
	assert.Equal(t, DequeueTimeout, kind)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDequeueWakesOnEnqueue(t *testing.T) {
	q := NewQueue()
	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Enqueue(envelope("late"))
	}()
	env, kind := q.Dequeue(2 * time.Second)
	require.Equal(t, DequeueRecord, kind)
	assert.Equal(t, "late", env.RequestID)
}

func TestSentinelIsDistinct(t *testing.T) {
	q := NewQueue()
	q.Enqueue(envelope("a"))
	q.EnqueueSentinel()

	_, kind := q.Dequeue(time.Second)
	assert.Equal(t, DequeueRecord, kind)
	_, kind = q.Dequeue(time.Second)
	assert.Equal(t, DequeueSentinel, kind)
}

func TestTakeAllDropsSentinels(t *testing.T) {
	q := NewQueue()
	q.Enqueue(envelope("a"))
	q.EnqueueSentinel()
	q.Enqueue(envelope("b"))

	envs := q.TakeAll()
	require.Len(t, envs, 2)
	assert.Equal(t, "a", envs[0].RequestID)
	assert.Equal(t, "b", envs[1].RequestID)
	assert.Equal(t, 0, q.Len())
}
