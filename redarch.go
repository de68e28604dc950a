package redarch

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Init constructs the process-default client from the given configuration
// and makes it the target of the package-level logging functions. A
// previously initialized default client is stopped first.
func Init(cfg Config) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defaultMu.Lock()
	old := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if old != nil {
		old.Stop()
	}
	return c, nil
}

// Default returns the process-default client, constructing one from the
// environment on first use. When the configured buffer root is unusable it
// falls back to a directory under the system temp dir; logging never fails
// the application.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		return defaultClient
	}

	cfg := DefaultConfig()
	c, err := New(cfg)
	if err != nil {
		log.Printf("[redarch] default client: %v, falling back to temp buffer", err)
		cfg.BufferRoot = filepath.Join(os.TempDir(), "redarch-logging")
		if c, err = New(cfg); err != nil {
			log.Printf("[redarch] default client unavailable: %v", err)
			return nil
		}
	}
	defaultClient = c
	return defaultClient
}

// Shutdown stops the process-default client, if one exists. Idempotent.
func Shutdown() {
	defaultMu.Lock()
	c := defaultClient
	defaultMu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// Log emits one record for a service through the default client.
func Log(level Level, service, message string, opts ...Option) {
	c := Default()
	if c == nil {
		return
	}
	c.Logger(service).log(level, message, opts...)
}

func LogDebug(service, message string, opts ...Option) { Log(LevelDebug, service, message, opts...) }
func LogInfo(service, message string, opts ...Option)  { Log(LevelInfo, service, message, opts...) }
func LogWarn(service, message string, opts ...Option)  { Log(LevelWarn, service, message, opts...) }
func LogError(service, message string, opts ...Option) { Log(LevelError, service, message, opts...) }
func LogFatal(service, message string, opts ...Option) { Log(LevelFatal, service, message, opts...) }

// GetLogger returns a named logger from the default client, or nil when no
// client could be constructed.
func GetLogger(service string, opts ...LoggerOption) *Logger {
	c := Default()
	if c == nil {
		return nil
	}
	return c.Logger(service, opts...)
}

// SetLogLevel adjusts the level of a service's logger on the default client.
func SetLogLevel(service string, level Level) {
	if c := Default(); c != nil {
		c.SetLevel(service, level)
	}
}
