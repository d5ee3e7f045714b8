package converter

import (
	"context"
	"log/slog"
)

// =============================================================================
// LOGGING
// =============================================================================

// Logger is the logging interface of the pipeline. Arguments are
// alternating keys and values, as in log/slog; *slog.Logger implements it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// asSlog returns l as a *slog.Logger, wrapping it when needed.
func asSlog(l Logger) *slog.Logger {
	if s, ok := l.(*slog.Logger); ok {
		return s
	}
	return slog.New(&loggerHandler{target: l})
}

// loggerHandler forwards slog records to a Logger. Attributes added with
// With are prepended to every record's arguments; groups prefix keys.
type loggerHandler struct {
	target Logger
	attrs  []any
	prefix string
}

func (h *loggerHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *loggerHandler) Handle(_ context.Context, r slog.Record) error {
	args := make([]any, 0, len(h.attrs)+2*r.NumAttrs())
	args = append(args, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		args = append(args, h.prefix+a.Key, a.Value.Any())
		return true
	})

	switch {
	case r.Level >= slog.LevelError:
		h.target.Error(r.Message, args...)
	case r.Level >= slog.LevelWarn:
		h.target.Warn(r.Message, args...)
	case r.Level >= slog.LevelInfo:
		h.target.Info(r.Message, args...)
	default:
		h.target.Debug(r.Message, args...)
	}
	return nil
}

func (h *loggerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]any(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.prefix+a.Key, a.Value.Any())
	}
	return &next
}

func (h *loggerHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
