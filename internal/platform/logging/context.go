package logging

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// Loggers carries a request-scoped logger on the goroutine serving the
// request and on every task that captures it.
var Loggers = typedctx.Declare[*slog.Logger](typedctx.WithName("logger"))

// FromContext returns the logger stored in ctx. Without one it falls back to
// the logger attached on the calling goroutine, then to the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	if logger, ok := Loggers.Current(); ok && logger != nil {
		return logger
	}

	return defaultLogger
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Attach makes logger the one FromContext returns on the calling goroutine
// until the guard is detached.
func Attach(logger *slog.Logger) *typedctx.Guard {
	return Loggers.Attach(logger)
}

// SetDefault sets the default logger used when no logger is in context.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
