package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/middleware"
	"github.com/jsamuelsen/go-typedctx/internal/platform/config"
	"github.com/jsamuelsen/go-typedctx/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests when no default timeout is configured.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// Propagation names the headers carrying the trace id, correlation id
	// and deadline. Zero fields fall back to the default header names.
	Propagation config.PropagationConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// TraceHandler handles the trace and task endpoints.
	TraceHandler *handlers.TraceHandler
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Tracing - start the server span
//  3. Trace ID - attach the trace id, reusing the span's when no header came in
//  4. Correlation ID - attach the correlation id
//  5. Deadline - attach the request deadline and enforce it
//  6. Logging - request logging (skips health endpoints)
//  7. Metrics - HTTP server metrics
//
// Route groups:
//   - /-/ (internal): Health and metrics endpoints
//   - /api/v1/ (public API): Trace, echo and task endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := "typedctx-service"
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		serviceName = cfg.AppConfig.Name
	}

	traceHeader := cfg.Propagation.TraceHeader
	if traceHeader == "" {
		traceHeader = middleware.HeaderTraceID
	}

	timeout := cfg.Propagation.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		telemetry.TracingMiddleware(serviceName),
		middleware.TraceID(traceHeader),
		middleware.CorrelationID(cfg.Propagation.CorrelationHeader),
		middleware.Deadline(cfg.Propagation.DeadlineHeader, timeout),
		middleware.Logging(cfg.Logger),
		telemetry.Middleware(traceHeader),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")

	if cfg.TraceHandler != nil {
		cfg.TraceHandler.RegisterTraceRoutes(apiV1)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.TraceID(""),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
