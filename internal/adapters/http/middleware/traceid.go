// Package middleware provides HTTP middleware components for the Gin server.
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/platform/telemetry"
)

const (
	// HeaderTraceID is the default header name for the trace id.
	HeaderTraceID = "trace-id"

	// ContextKeyTraceID is the gin context key for the trace id.
	ContextKeyTraceID = "trace_id"
)

// TraceID returns middleware that attaches a domain.TraceID for the rest of
// the request. The trace id is:
//   - Extracted from the given header if present and valid
//   - Otherwise taken from the active OpenTelemetry span
//   - Otherwise generated as a new UUID
//   - Echoed in the response headers and recorded on the span
func TraceID(header string) gin.HandlerFunc {
	if header == "" {
		header = HeaderTraceID
	}

	return createIDMiddleware(idMiddlewareConfig[domain.TraceID]{
		headerName: header,
		contextKey: ContextKeyTraceID,
		key:        domain.TraceIDs,
		parse:      domain.ParseTraceID,
		generate:   spanOrNewTraceID,
		onAttach: func(c *gin.Context, id domain.TraceID) {
			telemetry.Annotate(c.Request.Context(), attribute.String("app.trace_id", id.String()))
		},
	})
}

func spanOrNewTraceID(c *gin.Context) domain.TraceID {
	if id, ok := telemetry.SpanTraceID(c.Request.Context()); ok {
		return domain.TraceID(id)
	}

	return domain.NewTraceID()
}

// GetTraceID extracts the trace id from the gin.Context.
// Returns empty string if not set.
func GetTraceID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyTraceID)
}
