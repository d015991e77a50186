package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// idMiddlewareConfig configures the ID middleware behavior.
type idMiddlewareConfig[T ~string] struct {
	headerName string
	contextKey string
	key        *typedctx.Key[T]
	parse      func(string) (T, error)
	generate   func(c *gin.Context) T
	onAttach   func(c *gin.Context, id T)
}

// createIDMiddleware creates middleware that extracts or generates an ID and
// attaches it for the rest of the request. Handlers run on the goroutine
// that calls c.Next, so the attached value is visible to them and detached
// again when the request completes.
func createIDMiddleware[T ~string](cfg idMiddlewareConfig[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := extractID(c, cfg)

		// Kept in gin as well: recovery runs after the guard below is detached.
		c.Set(cfg.contextKey, string(id))
		c.Header(cfg.headerName, string(id))

		guard := cfg.key.Attach(id)
		defer guard.Detach()

		if cfg.onAttach != nil {
			cfg.onAttach(c, id)
		}

		c.Next()
	}
}

func extractID[T ~string](c *gin.Context, cfg idMiddlewareConfig[T]) T {
	raw := c.GetHeader(cfg.headerName)
	if raw == "" {
		return cfg.generate(c)
	}

	id, err := cfg.parse(raw)
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("ignoring invalid id header",
			slog.String("header", cfg.headerName),
			slog.Any("error", err),
		)

		return cfg.generate(c)
	}

	return id
}

// getIDFromContext extracts an ID from the gin context by key.
func getIDFromContext(c *gin.Context, key string) string {
	if id, exists := c.Get(key); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}
