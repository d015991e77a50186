package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
	"github.com/jsamuelsen/go-typedctx/internal/platform/telemetry"
)

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the error with full stack trace at ERROR level
//   - Returns a 500 Internal Server Error with standard error envelope
//   - Includes the trace id in the response for debugging
//
// This middleware should be applied first in the chain to catch panics
// from all subsequent handlers and middleware. By the time it runs the id
// middleware has already detached its values, so ids are read from gin.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctxLogger := logger
			if ctxLogger == nil {
				ctxLogger = logging.FromContext(c.Request.Context())
			}

			traceID := GetTraceID(c)
			if traceID == "" {
				traceID, _ = telemetry.SpanTraceID(c.Request.Context())
			}

			ctxLogger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
				slog.String("correlation_id", GetCorrelationID(c)),
			)

			errResp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").
				WithTraceID(traceID)

			// Ensure headers haven't been sent yet
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
			} else {
				c.Abort()
			}
		}()

		c.Next()
	}
}
