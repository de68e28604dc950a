package redarch

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogHandlerForwardsRecords(t *testing.T) {
	srv := newCaptureServer(t)
	defer srv.Close()

	c, err := New(testConfig(t.TempDir(), srv.URL))
	require.NoError(t, err)
	defer c.Stop()

	logger := slog.New(NewSlogHandler(c.Logger("billing")))
	logger.Info("payment received",
		"user_id", "user-001",
		"tenant_id", "client-123",
		"amount", 42)

	require.Eventually(t, func() bool { return len(srv.received()) == 1 }, 5*time.Second, 10*time.Millisecond)

	got := srv.received()[0]
	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, "billing", got["service"])
	assert.Equal(t, "payment received", got["message"])
	assert.Equal(t, "user-001", got["user_id"])
	assert.Equal(t, "client-123", got["tenant_id"])
	ctx, ok := got["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), ctx["amount"])
}

func TestSlogHandlerGroupsPrefixContextKeys(t *testing.T) {
	srv := newCaptureServer(t)
	defer srv.Close()

	c, err := New(testConfig(t.TempDir(), srv.URL))
	require.NoError(t, err)
	defer c.Stop()

	logger := slog.New(NewSlogHandler(c.Logger("billing"))).
		WithGroup("request").
		With("method", "POST")
	logger.Warn("slow request", "elapsed_ms", 1200)

	require.Eventually(t, func() bool { return len(srv.received()) == 1 }, 5*time.Second, 10*time.Millisecond)

	got := srv.received()[0]
	assert.Equal(t, "WARN", got["level"])
	ctx, ok := got["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "POST", ctx["request.method"])
	assert.Equal(t, float64(1200), ctx["request.elapsed_ms"])
}

func TestSlogHandlerRespectsLoggerLevel(t *testing.T) {
	srv := newCaptureServer(t)
	defer srv.Close()

	c, err := New(testConfig(t.TempDir(), srv.URL))
	require.NoError(t, err)
	defer c.Stop()

	underlying := c.Logger("billing", WithLevel(LevelError))
	h := NewSlogHandler(underlying)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	slog.New(h).Info("suppressed")
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, srv.received())
}
