package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// ContextAttr reads one typed context value as a log attribute. It reports
// false when nothing is attached on the logging goroutine.
type ContextAttr func() (slog.Attr, bool)

// KeyAttr returns a ContextAttr for k, logged under the key's name.
func KeyAttr[T any](k *typedctx.Key[T]) ContextAttr {
	return func() (slog.Attr, bool) {
		v, ok := k.Current()
		if !ok {
			return slog.Attr{}, false
		}

		return slog.Any(k.Name(), logValue(v)), true
	}
}

func logValue(v any) any {
	switch v := v.(type) {
	case slog.LogValuer, string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}

// ContextHandler is an slog.Handler that stamps every record with the typed
// context values current on the goroutine that emits it.
type ContextHandler struct {
	next  slog.Handler
	attrs []ContextAttr
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler, attrs ...ContextAttr) *ContextHandler {
	return &ContextHandler{next: next, attrs: attrs}
}

// Enabled reports whether the wrapped handler handles records at level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle adds the current context attributes and passes the record on.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	r = r.Clone()

	for _, attr := range h.attrs {
		if a, ok := attr(); ok {
			r.AddAttrs(a)
		}
	}

	return h.next.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes added.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), attrs: h.attrs}
}

// WithGroup returns a new ContextHandler with the given group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), attrs: h.attrs}
}
