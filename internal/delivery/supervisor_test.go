package delivery

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/buffer"
	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/token"
)

func TestSupervisorRestartsCrashedWorker(t *testing.T) {
	state := NewState()
	var runs atomic.Int32
	run := func() {
		if runs.Add(1) <= 2 {
			panic("simulated delivery crash")
		}
		<-state.StopChan()
	}

	sup := NewSupervisor(run, state, 10*time.Millisecond)
	sup.Start()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond,
		"supervisor should restart after each crash")

	state.RequestStop()
	select {
	case <-sup.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not exit after stop")
	}
}

func TestSupervisorDoesNotRestartOnDeliberateStop(t *testing.T) {
	state := NewState()
	var runs atomic.Int32
	run := func() {
		runs.Add(1)
		<-state.StopChan()
	}

	sup := NewSupervisor(run, state, 10*time.Millisecond)
	sup.Start()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	state.RequestStop()

	select {
	case <-sup.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not exit")
	}
	assert.Equal(t, int32(1), runs.Load(), "a deliberate stop must not trigger a restart")
}

func TestQueuedRecordsSurviveWorkerCrash(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := buffer.NewStore(t.TempDir())
	require.NoError(t, err)
	queue := NewQueue()
	state := NewState()
	w := NewWorker(WorkerConfig{
		Endpoint:   srv.URL,
		Timeout:    time.Second,
		MaxBackoff: 5 * time.Millisecond,
	}, queue, store, token.NewSigner("secret"), state, NewMetrics(nil))
	w.backoffUnit = time.Millisecond

	// Records are queued before the first worker incarnation dies.
	queue.Enqueue(envelope("a"))
	queue.Enqueue(envelope("b"))

	var first atomic.Bool
	first.Store(true)
	run := func() {
		if first.CompareAndSwap(true, false) {
			panic("killed before consuming")
		}
		w.Run()
	}

	sup := NewSupervisor(run, state, 10*time.Millisecond)
	sup.Start()

	// The replacement worker consumes the surviving queue.
	require.Eventually(t, func() bool { return requests.Load() == 2 }, 5*time.Second, 10*time.Millisecond)

	state.RequestStop()
	queue.EnqueueSentinel()
	select {
	case <-sup.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not exit")
	}
}
