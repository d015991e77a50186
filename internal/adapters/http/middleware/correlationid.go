package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/domain"
)

const (
	// HeaderCorrelationID is the default header name for correlation ID.
	// Unlike the trace id (per-request), the correlation ID tracks an entire
	// business transaction across multiple services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that attaches a domain.CorrelationID for
// the rest of the request. The correlation ID is:
//   - Extracted from the given header if present (propagated from upstream)
//   - Generated as a new UUID if not present (this is the transaction origin)
//   - Added to response headers
func CorrelationID(header string) gin.HandlerFunc {
	if header == "" {
		header = HeaderCorrelationID
	}

	return createIDMiddleware(idMiddlewareConfig[domain.CorrelationID]{
		headerName: header,
		contextKey: ContextKeyCorrelationID,
		key:        domain.CorrelationIDs,
		parse:      domain.ParseCorrelationID,
		generate: func(*gin.Context) domain.CorrelationID {
			return domain.NewCorrelationID()
		},
	})
}

// GetCorrelationID extracts the correlation ID from the gin.Context.
// Returns empty string if not set.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}
