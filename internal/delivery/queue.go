// Package delivery implements the durable delivery pipeline: the in-memory
// queue, the HTTP worker with bounded retries, the supervisor that restarts
// a crashed worker, and the shutdown coordinator.
package delivery

import (
	"sync"
	"time"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/model"
)

// Dequeued reports what a Dequeue call produced.
type Dequeued int

const (
	DequeueTimeout Dequeued = iota
	DequeueRecord
	DequeueSentinel
)

type queueItem struct {
	env      model.Envelope
	sentinel bool
}

// Queue is the unbounded FIFO between producing loggers and the delivery
// worker. Enqueue never blocks; Dequeue blocks up to a timeout so the single
// consumer can poll the stop flag without spinning.
type Queue struct {
	mu     sync.Mutex
	items  []queueItem
	signal chan struct{}
}

func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Enqueue appends an envelope. It is O(1) amortized and never blocks the
// caller.
func (q *Queue) Enqueue(env model.Envelope) {
	q.push(queueItem{env: env})
}

// EnqueueSentinel appends the drain-then-exit marker, which the worker
// distinguishes from ordinary records.
func (q *Queue) EnqueueSentinel() {
	q.push(queueItem{sentinel: true})
}

func (q *Queue) push(it queueItem) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Dequeue removes the oldest item, waiting up to timeout for one to arrive.
// There is a single consumer, the delivery worker.
func (q *Queue) Dequeue(timeout time.Duration) (model.Envelope, Dequeued) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if env, kind, ok := q.pop(); ok {
			return env, kind
		}
		select {
		case <-q.signal:
		case <-deadline.C:
			return model.Envelope{}, DequeueTimeout
		}
	}
}

func (q *Queue) pop() (model.Envelope, Dequeued, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return model.Envelope{}, DequeueTimeout, false
	}
	it := q.items[0]
	q.items = q.items[1:]
	if it.sentinel {
		return model.Envelope{}, DequeueSentinel, true
	}
	return it.env, DequeueRecord, true
}

// Len reports the number of queued items, sentinels included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// TakeAll removes and returns every queued envelope, dropping sentinels.
// The shutdown coordinator uses it to flush records that the worker will
// never get to consume.
func (q *Queue) TakeAll() []model.Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()
	var envs []model.Envelope
	for _, it := range q.items {
		if !it.sentinel {
			envs = append(envs, it.env)
		}
	}
	q.items = nil
	return envs
}
