package delivery

import (
	"sync"
	"sync/atomic"
)

// State holds the lifecycle flags shared by the supervisor and the shutdown
// coordinator. Both flags are monotonic: once set they are never cleared.
type State struct {
	stopRequested atomic.Bool
	stop          chan struct{}
	started       chan struct{}
	stopOnce      sync.Once
	startedOnce   sync.Once
}

func NewState() *State {
	return &State{
		stop:    make(chan struct{}),
		started: make(chan struct{}),
	}
}

// RequestStop marks the pipeline as stopping. Safe to call repeatedly.
func (s *State) RequestStop() {
	s.stopOnce.Do(func() {
		s.stopRequested.Store(true)
		close(s.stop)
	})
}

func (s *State) StopRequested() bool {
	return s.stopRequested.Load()
}

// StopChan is closed when a stop has been requested. Backoff sleeps select
// on it so shutdown is never delayed by a full backoff interval.
func (s *State) StopChan() <-chan struct{} {
	return s.stop
}

// MarkStarted records that the worker's run loop is confirmed live.
func (s *State) MarkStarted() {
	s.startedOnce.Do(func() { close(s.started) })
}

// Started is closed once the worker has started at least once.
func (s *State) Started() <-chan struct{} {
	return s.started
}
