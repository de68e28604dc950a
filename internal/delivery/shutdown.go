package delivery

import (
	"log"
	"sync"
	"time"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/buffer"
)

const (
	// DefaultStartTimeout is how long shutdown waits for a worker that has
	// not yet confirmed it is live.
	DefaultStartTimeout = 2 * time.Second

	// DefaultDrainTimeout is how long shutdown waits for the worker to
	// finish draining before abandoning it.
	DefaultDrainTimeout = 2 * time.Second
)

// Coordinator drives graceful shutdown. Stop is idempotent and returns
// within its bounded waits; whatever the worker could not consume in time is
// flushed to the disk buffer so nothing is left only in memory.
type Coordinator struct {
	state *State
	queue *Queue
	store *buffer.Store
	sup   *Supervisor

	startTimeout time.Duration
	drainTimeout time.Duration
	once         sync.Once
}

func NewCoordinator(state *State, queue *Queue, store *buffer.Store, sup *Supervisor) *Coordinator {
	return &Coordinator{
		state:        state,
		queue:        queue,
		store:        store,
		sup:          sup,
		startTimeout: DefaultStartTimeout,
		drainTimeout: DefaultDrainTimeout,
	}
}

// Stop requests a stop, unblocks the worker with the sentinel, and waits a
// bounded interval for the drain. Calling it any number of times is safe;
// later calls return once the first has finished.
func (c *Coordinator) Stop() {
	c.once.Do(c.stop)
}

func (c *Coordinator) stop() {
	c.state.RequestStop()
	c.queue.EnqueueSentinel()

	// A worker that never came up gets no chance to drain: persist the
	// whole in-memory queue directly.
	select {
	case <-c.state.Started():
	case <-time.After(c.startTimeout):
		log.Printf("[redarch] shutdown: worker never started, flushing queue to disk")
		c.flush()
		return
	}

	select {
	case <-c.sup.Done():
	case <-time.After(c.drainTimeout):
		log.Printf("[redarch] shutdown: worker did not drain in time, flushing remaining queue to disk")
	}
	c.flush()
}

// flush persists every envelope still queued. Records the abandoned worker
// had mid-flight are not covered; at-least-once allows the resulting
// duplicate or loss at this boundary.
func (c *Coordinator) flush() {
	for _, env := range c.queue.TakeAll() {
		if err := c.store.Write(env); err != nil {
			log.Printf("[redarch] shutdown: %v: record %s may be lost: %v", ErrBufferIO, env.RequestID, err)
		}
	}
}
