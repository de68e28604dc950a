package redarch

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// Recognized environment variables.
const (
	EnvURL          = "RARCH_LOGGING_URL"
	EnvAPIKey       = "RARCH_LOGGING_API_KEY"
	EnvService      = "RARCH_LOGGING_SERVICE"
	EnvDefaultLevel = "RARCH_LOGGING_DEFAULT_LEVEL"
)

// Config holds everything a Client needs. Zero values for Endpoint,
// BufferRoot and the delivery tunables fall back to the same defaults
// DefaultConfig uses.
type Config struct {
	// Service is the default service name for loggers that do not name one.
	Service string

	// Endpoint receives one POSTed JSON record per delivery.
	Endpoint string

	// Secret signs the bearer token attached to every delivery attempt.
	Secret string

	// DefaultLevel is the initial level of newly created loggers.
	DefaultLevel Level

	// BufferRoot is the directory holding per-service buffer files.
	BufferRoot string

	// Timeout bounds each HTTP delivery attempt.
	Timeout time.Duration

	// Stdout mirrors accepted records to standard output.
	Stdout bool

	// MaxRetries is the number of delivery cycles before a permanent drop.
	MaxRetries int

	// MaxBackoff caps the exponential backoff between attempts in a cycle.
	MaxBackoff time.Duration

	// Metrics optionally registers delivery counters.
	Metrics prometheus.Registerer
}

// DefaultConfig builds a Config from the environment with the standard
// fallbacks.
func DefaultConfig() Config {
	level := LevelDebug
	if s := os.Getenv(EnvDefaultLevel); s != "" {
		if parsed, err := ParseLevel(s); err == nil {
			level = parsed
		}
	}
	return Config{
		Service:      envOr(EnvService, "unspecified-service"),
		Endpoint:     envOr(EnvURL, "http://localhost:8080/log"),
		Secret:       os.Getenv(EnvAPIKey),
		DefaultLevel: level,
		BufferRoot:   "./var/log",
		Timeout:      2 * time.Second,
		Stdout:       true,
		MaxRetries:   5,
		MaxBackoff:   10 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfigFile overlays a YAML file on top of DefaultConfig. Only keys
// present in the file are overridden; durations use Go syntax ("2s").
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file struct {
		Service      *string `yaml:"service"`
		Endpoint     *string `yaml:"endpoint"`
		Secret       *string `yaml:"secret"`
		DefaultLevel *Level  `yaml:"default_level"`
		BufferRoot   *string `yaml:"buffer_root"`
		Timeout      *string `yaml:"timeout"`
		Stdout       *bool   `yaml:"stdout"`
		MaxRetries   *int    `yaml:"max_retries"`
		MaxBackoff   *string `yaml:"max_backoff"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if file.Service != nil {
		cfg.Service = *file.Service
	}
	if file.Endpoint != nil {
		cfg.Endpoint = *file.Endpoint
	}
	if file.Secret != nil {
		cfg.Secret = *file.Secret
	}
	if file.DefaultLevel != nil {
		cfg.DefaultLevel = *file.DefaultLevel
	}
	if file.BufferRoot != nil {
		cfg.BufferRoot = *file.BufferRoot
	}
	if file.Timeout != nil {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if file.Stdout != nil {
		cfg.Stdout = *file.Stdout
	}
	if file.MaxRetries != nil {
		cfg.MaxRetries = *file.MaxRetries
	}
	if file.MaxBackoff != nil {
		d, err := time.ParseDuration(*file.MaxBackoff)
		if err != nil {
			return cfg, fmt.Errorf("parse max_backoff: %w", err)
		}
		cfg.MaxBackoff = d
	}
	return cfg, nil
}
