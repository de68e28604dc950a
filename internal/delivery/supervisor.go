package delivery

import (
	"log"
	"time"
)

// DefaultRestartDelay is how long the supervisor waits before starting a
// replacement worker after an unexpected exit.
const DefaultRestartDelay = 3 * time.Second

// Supervisor runs the worker loop in its own goroutine and contains crashes:
// a panic in delivery logic is recovered and a fresh worker is started on the
// same queue, so unconsumed records survive the restart. A deliberate stop
// ends the loop without restarting.
type Supervisor struct {
	run          func()
	state        *State
	restartDelay time.Duration
	done         chan struct{}
}

// NewSupervisor supervises the given run loop, normally Worker.Run.
func NewSupervisor(run func(), state *State, restartDelay time.Duration) *Supervisor {
	if restartDelay <= 0 {
		restartDelay = DefaultRestartDelay
	}
	return &Supervisor{
		run:          run,
		state:        state,
		restartDelay: restartDelay,
		done:         make(chan struct{}),
	}
}

func (s *Supervisor) Start() {
	go s.loop()
}

// Done is closed when the supervisor loop has exited, which implies the
// worker is no longer running.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

func (s *Supervisor) loop() {
	defer close(s.done)
	for {
		s.runOnce()
		if s.state.StopRequested() {
			return
		}
		log.Printf("[redarch] supervisor: worker exited unexpectedly, restarting in %v", s.restartDelay)
		t := time.NewTimer(s.restartDelay)
		select {
		case <-t.C:
		case <-s.state.StopChan():
			t.Stop()
			return
		}
		t.Stop()
	}
}

// runOnce runs one worker incarnation, recovering panics so a crash in
// delivery logic cannot take down the host process.
func (s *Supervisor) runOnce() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[redarch] supervisor: worker crashed: %v", r)
		}
	}()
	s.state.MarkStarted()
	s.run()
}
