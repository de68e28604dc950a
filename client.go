package redarch

import (
	"log"
	"os"
	"sync"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/buffer"
	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/delivery"
	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/model"
	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/token"
)

// Client is the composition root of the delivery pipeline. It owns exactly
// one queue, disk buffer, worker and supervisor, and hands shared references
// to every Logger it creates. Construct one Client per process and share it.
//
// Construction performs startup recovery: records persisted by an earlier
// run are loaded back into the queue before any new record is accepted.
type Client struct {
	cfg     Config
	store   *buffer.Store
	queue   *delivery.Queue
	state   *delivery.State
	sup     *delivery.Supervisor
	coord   *delivery.Coordinator
	metrics *delivery.Metrics
	stdout  *log.Logger

	mu      sync.Mutex
	loggers map[string]*Logger
}

// New builds and starts a Client. The only failure mode is an unusable
// buffer root; everything past construction is error-swallowing.
func New(cfg Config) (*Client, error) {
	if cfg.Service == "" {
		cfg.Service = "unspecified-service"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:8080/log"
	}
	if cfg.BufferRoot == "" {
		cfg.BufferRoot = "./var/log"
	}

	store, err := buffer.NewStore(cfg.BufferRoot)
	if err != nil {
		return nil, err
	}

	queue := delivery.NewQueue()
	state := delivery.NewState()
	metrics := delivery.NewMetrics(cfg.Metrics)
	worker := delivery.NewWorker(delivery.WorkerConfig{
		Endpoint:   cfg.Endpoint,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		MaxBackoff: cfg.MaxBackoff,
	}, queue, store, token.NewSigner(cfg.Secret), state, metrics)
	sup := delivery.NewSupervisor(worker.Run, state, delivery.DefaultRestartDelay)

	c := &Client{
		cfg:     cfg,
		store:   store,
		queue:   queue,
		state:   state,
		sup:     sup,
		coord:   delivery.NewCoordinator(state, queue, store, sup),
		metrics: metrics,
		loggers: make(map[string]*Logger),
	}
	if cfg.Stdout {
		c.stdout = log.New(os.Stdout, "", 0)
	}

	// Startup recovery before any new record is accepted.
	envs, err := store.ReadAll()
	if err != nil {
		log.Printf("[redarch] startup recovery: %v", err)
	}
	for _, env := range envs {
		queue.Enqueue(env)
	}

	sup.Start()
	return c, nil
}

// LoggerOption customizes a logger created by Client.Logger.
type LoggerOption func(*loggerSettings)

type loggerSettings struct {
	name     string
	level    Level
	hasLevel bool
}

// WithLoggerName sets the logger_name reported on records; it defaults to
// the service name.
func WithLoggerName(name string) LoggerOption {
	return func(s *loggerSettings) { s.name = name }
}

// WithLevel sets the logger's initial level instead of the client default.
func WithLevel(level Level) LoggerOption {
	return func(s *loggerSettings) { s.level = level; s.hasLevel = true }
}

// Logger returns the logger registered for a service and logger name,
// creating it on first use. Concurrent first use of the same name yields a
// single instance.
func (c *Client) Logger(service string, opts ...LoggerOption) *Logger {
	var settings loggerSettings
	for _, opt := range opts {
		opt(&settings)
	}
	if service == "" {
		service = c.cfg.Service
	}
	if settings.name == "" {
		settings.name = service
	}
	if !settings.hasLevel {
		settings.level = c.cfg.DefaultLevel
	}

	key := service + "/" + settings.name
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.loggers[key]; ok {
		return l
	}
	l := &Logger{client: c, service: service, name: settings.name}
	l.level.Store(int32(settings.level))
	c.loggers[key] = l
	return l
}

// SetLevel adjusts the level of the logger registered for a service,
// creating it if needed.
func (c *Client) SetLevel(service string, level Level) {
	c.Logger(service).SetLevel(level)
}

// enqueue hands an accepted record to the delivery pipeline. Past shutdown
// it goes straight to disk so it is not silently lost.
func (c *Client) enqueue(rec model.Record) {
	c.metrics.Enqueued.Inc()
	if c.stdout != nil {
		c.stdout.Printf("%s | %s | %s | %s", rec.ClientLogDatetime, rec.Level, rec.LoggerName, rec.Message)
	}
	if c.state.StopRequested() {
		if err := c.store.Write(model.Envelope{Record: rec}); err != nil {
			log.Printf("[redarch] enqueue after stop: record %s may be lost: %v", rec.RequestID, err)
		}
		return
	}
	c.queue.Enqueue(model.Envelope{Record: rec})
}

// Stop drains and stops the delivery pipeline within a bounded wait,
// persisting anything undeliverable. Safe to call any number of times.
func (c *Client) Stop() {
	c.coord.Stop()
}

// Flush is equivalent to Stop: it drains what it can and persists the rest.
func (c *Client) Flush() {
	c.coord.Stop()
}
