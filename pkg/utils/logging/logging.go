package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type ctxKey struct{}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger. A nil logger is ignored.
func SetDefault(logger *slog.Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// With returns a copy of ctx carrying logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger stored in ctx, or Default() when there is none
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}
