package redarch

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/model"
)

// Logger is the level-filtered logging facade. Logging calls never block
// beyond the O(1) enqueue and never return an error; every failure past this
// point ends in a retry, a buffer write, or a local diagnostic.
type Logger struct {
	client  *Client
	service string
	name    string
	level   atomic.Int32
}

func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Enabled reports whether a record at the given level would be accepted.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.Level()
}

// Option attaches optional fields to a single record.
type Option func(*recordOptions)

type recordOptions struct {
	userID    string
	tenantID  string
	requestID string
	context   map[string]any
	datetime  string
}

func WithUserID(id string) Option {
	return func(o *recordOptions) { o.userID = id }
}

func WithTenantID(id string) Option {
	return func(o *recordOptions) { o.tenantID = id }
}

// WithRequestID sets an explicit request id instead of a generated one. The
// id stays stable across retries and re-buffering either way.
func WithRequestID(id string) Option {
	return func(o *recordOptions) { o.requestID = id }
}

func WithContext(ctx map[string]any) Option {
	return func(o *recordOptions) { o.context = ctx }
}

// WithClientLogTime overrides the record timestamp, which otherwise is the
// creation time.
func WithClientLogTime(t time.Time) Option {
	return func(o *recordOptions) { o.datetime = t.UTC().Format(time.RFC3339Nano) }
}

func (l *Logger) Debug(message string, opts ...Option) { l.log(LevelDebug, message, opts...) }
func (l *Logger) Info(message string, opts ...Option)  { l.log(LevelInfo, message, opts...) }
func (l *Logger) Warn(message string, opts ...Option)  { l.log(LevelWarn, message, opts...) }
func (l *Logger) Error(message string, opts ...Option) { l.log(LevelError, message, opts...) }

// Fatal logs at the highest severity. It does not terminate the process.
func (l *Logger) Fatal(message string, opts ...Option) { l.log(LevelFatal, message, opts...) }

func (l *Logger) log(level Level, message string, opts ...Option) {
	if !l.Enabled(level) {
		return
	}
	var o recordOptions
	for _, opt := range opts {
		opt(&o)
	}

	rec := model.Record{
		Level:             level.String(),
		Service:           l.service,
		LoggerName:        l.name,
		Message:           message,
		UserID:            o.userID,
		TenantID:          o.tenantID,
		RequestID:         o.requestID,
		Context:           o.context,
		ClientLogDatetime: o.datetime,
	}
	if rec.RequestID == "" {
		rec.RequestID = uuid.NewString()
	}
	if rec.Context == nil {
		rec.Context = map[string]any{}
	}
	if rec.ClientLogDatetime == "" {
		rec.ClientLogDatetime = time.Now().UTC().Format(time.RFC3339Nano)
	}
	l.client.enqueue(rec)
}
