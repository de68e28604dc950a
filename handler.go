package redarch

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// SlogHandler adapts a Logger to the standard library's slog.Handler
// interface, so applications already on slog can ship records through the
// delivery pipeline without changing call sites.
//
// Attributes named user_id, tenant_id and request_id are promoted to the
// corresponding record fields; everything else lands in the record context,
// with group names joined by dots.
type SlogHandler struct {
	logger *Logger
	attrs  []slog.Attr
	groups []string
}

func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

func levelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(levelFromSlog(level))
}

func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	var o recordOptions
	ctx := make(map[string]any)

	add := func(a slog.Attr) {
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		switch a.Key {
		case "user_id":
			o.userID = a.Value.String()
		case "tenant_id":
			o.tenantID = a.Value.String()
		case "request_id":
			o.requestID = a.Value.String()
		default:
			ctx[key] = a.Value.Any()
		}
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})

	opts := []Option{WithContext(ctx)}
	if o.userID != "" {
		opts = append(opts, WithUserID(o.userID))
	}
	if o.tenantID != "" {
		opts = append(opts, WithTenantID(o.tenantID))
	}
	if o.requestID != "" {
		opts = append(opts, WithRequestID(o.requestID))
	}
	if !r.Time.IsZero() {
		opts = append(opts, WithClientLogTime(r.Time.UTC()))
	} else {
		opts = append(opts, WithClientLogTime(time.Now().UTC()))
	}

	h.logger.log(levelFromSlog(r.Level), r.Message, opts...)
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}
