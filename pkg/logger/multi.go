package logger

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler hands each record to several handlers. A handler that fails to
// write does not stop the others; their errors are joined.
type teeHandler []slog.Handler

// Multi returns a logger that writes every record to each of loggers, each
// at its own level. Nil loggers are skipped, a single logger is returned as
// is, and no loggers at all gives Nop.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	var (
		tee  teeHandler
		last *slog.Logger
	)
	for _, l := range loggers {
		if l != nil {
			tee = append(tee, l.Handler())
			last = l
		}
	}

	switch len(tee) {
	case 0:
		return Nop()
	case 1:
		return last
	}
	return slog.New(tee)
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}
