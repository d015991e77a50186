package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
)

const (
	// HeaderDeadline is the default header carrying the caller's remaining
	// budget as a Go duration ("1.5s", "300ms").
	HeaderDeadline = "X-Request-Timeout"

	// ContextKeyDeadline is the gin context key for the attached deadline.
	ContextKeyDeadline = "deadline"
)

// Deadline returns middleware that attaches a domain.Deadline for the rest
// of the request and bounds the request context by it.
//
// The budget is the smaller of the caller's header and the default timeout.
// A missing or malformed header uses the default. Handlers run on the calling
// goroutine; if the deadline has passed when they return without writing a
// response, a 504 with the standard error envelope is sent.
func Deadline(header string, defaultTimeout time.Duration) gin.HandlerFunc {
	if header == "" {
		header = HeaderDeadline
	}

	return func(c *gin.Context) {
		budget := requestBudget(c, header, defaultTimeout)
		deadline := domain.DeadlineAfter(budget)

		ctx, cancel := deadline.Context(c.Request.Context())
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextKeyDeadline, deadline)

		guard := domain.Deadlines.Attach(deadline)
		defer guard.Detach()

		c.Next()

		if deadline.Expired() && !c.Writer.Written() {
			handleTimeout(c, budget)
		}
	}
}

func requestBudget(c *gin.Context, header string, defaultTimeout time.Duration) time.Duration {
	raw := c.GetHeader(header)
	if raw == "" {
		return defaultTimeout
	}

	budget, err := time.ParseDuration(raw)
	if err != nil || budget <= 0 {
		logging.FromContext(c.Request.Context()).Warn("ignoring invalid deadline header",
			slog.String("header", header),
			slog.String("value", raw),
		)

		return defaultTimeout
	}

	return min(budget, defaultTimeout)
}

// handleTimeout writes the timeout response.
func handleTimeout(c *gin.Context, budget time.Duration) {
	logging.FromContext(c.Request.Context()).Warn("request deadline exceeded",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Duration("budget", budget),
	)

	errResp := dto.NewErrorResponse(dto.ErrorCodeTimeout, "request deadline exceeded").
		WithTraceID(GetTraceID(c))

	c.AbortWithStatusJSON(http.StatusGatewayTimeout, errResp)
}

// GetDeadline extracts the attached deadline from the gin.Context.
func GetDeadline(c *gin.Context) (domain.Deadline, bool) {
	v, ok := c.Get(ContextKeyDeadline)
	if !ok {
		return domain.Deadline{}, false
	}

	d, ok := v.(domain.Deadline)

	return d, ok
}
