package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/buffer"
	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/model"
	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/token"
)

const (
	// attemptsPerCycle is how many consecutive HTTP attempts one dequeued
	// record gets before it goes back to disk.
	attemptsPerCycle = 3

	// dequeueTimeout bounds how long the worker blocks on an empty queue
	// before polling the stop flag.
	dequeueTimeout = time.Second
)

// WorkerConfig carries the delivery tunables.
type WorkerConfig struct {
	Endpoint   string
	Timeout    time.Duration // per HTTP attempt
	MaxRetries int           // delivery cycles before a permanent drop
	MaxBackoff time.Duration
	TokenTTL   time.Duration
}

// Worker drains the queue and posts records to the logging API. Every
// failure path ends in a retry, a buffer write, or a drop with a local
// diagnostic; Run never panics out on delivery errors and never reports an
// error to its caller.
type Worker struct {
	cfg     WorkerConfig
	queue   *Queue
	store   *buffer.Store
	signer  *token.Signer
	state   *State
	metrics *Metrics
	client  *http.Client

	// backoffUnit scales the exponential backoff; tests shrink it.
	backoffUnit time.Duration
}

func NewWorker(cfg WorkerConfig, queue *Queue, store *buffer.Store, signer *token.Signer, state *State, metrics *Metrics) *Worker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = token.DefaultTTL
	}
	return &Worker{
		cfg:         cfg,
		queue:       queue,
		store:       store,
		signer:      signer,
		state:       state,
		metrics:     metrics,
		client:      &http.Client{Timeout: cfg.Timeout},
		backoffUnit: time.Second,
	}
}

// Run consumes records until a stop is requested and the sentinel has been
// seen, draining whatever remains in the queue before returning.
func (w *Worker) Run() {
	for {
		env, kind := w.queue.Dequeue(dequeueTimeout)
		switch kind {
		case DequeueTimeout:
			if w.state.StopRequested() {
				return
			}
		case DequeueSentinel:
			w.drainRemaining()
			return
		case DequeueRecord:
			w.deliver(env)
		}
	}
}

// drainRemaining consumes everything already queued without blocking for
// new arrivals.
func (w *Worker) drainRemaining() {
	for {
		env, kind, ok := w.queue.pop()
		if !ok {
			return
		}
		if kind == DequeueRecord {
			w.deliver(env)
		}
	}
}

// deliver runs one delivery cycle for an envelope: up to attemptsPerCycle
// HTTP attempts with exponential backoff between them. An exhausted cycle
// increments the attempt counter and either re-buffers the record or, at the
// retry cap, drops it for good.
func (w *Worker) deliver(env model.Envelope) {
	for attempt := 1; attempt <= attemptsPerCycle; attempt++ {
		w.metrics.Attempts.Inc()
		err := w.post(env)
		if err == nil {
			w.metrics.Delivered.Inc()
			return
		}
		log.Printf("[redarch] worker: attempt %d/%d for record %s: %v", attempt, attemptsPerCycle, env.RequestID, err)
		if attempt < attemptsPerCycle {
			w.backoff(attempt)
		}
	}

	env.Attempts++
	if env.Attempts >= w.cfg.MaxRetries {
		w.metrics.Dropped.Inc()
		log.Printf("[redarch] worker: dropping record %s after %d delivery cycles", env.RequestID, env.Attempts)
		return
	}
	if err := w.store.Write(env); err != nil {
		log.Printf("[redarch] worker: %v: record %s may be lost: %v", ErrBufferIO, env.RequestID, err)
		return
	}
	w.metrics.Buffered.Inc()
}

// post performs a single HTTP attempt with a freshly signed bearer token.
func (w *Worker) post(env model.Envelope) error {
	tok, err := w.signer.Sign(env.Service, w.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSigning, err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d", ErrTransient, resp.StatusCode)
	}
	return nil
}

// backoff sleeps min(2^attempt, MaxBackoff) between attempts. The sleep is
// cut short by a stop request so shutdown is never held up by a full
// backoff interval.
func (w *Worker) backoff(attempt int) {
	d := time.Duration(1<<uint(attempt)) * w.backoffUnit
	if d > w.cfg.MaxBackoff {
		d = w.cfg.MaxBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-w.state.StopChan():
	}
}
