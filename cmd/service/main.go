// Package main is the entry point for the service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/clients"
	"github.com/jsamuelsen/go-typedctx/internal/adapters/clients/acl"
	"github.com/jsamuelsen/go-typedctx/internal/adapters/http"
	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/handlers"
	"github.com/jsamuelsen/go-typedctx/internal/adapters/journal"
	"github.com/jsamuelsen/go-typedctx/internal/app"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/platform/config"
	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
	"github.com/jsamuelsen/go-typedctx/internal/platform/telemetry"
	"github.com/jsamuelsen/go-typedctx/internal/ports"
	"github.com/jsamuelsen/go-typedctx/internal/scheduler"
	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging. Every record carries the attached trace and
	// correlation ids.
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	},
		logging.KeyAttr(domain.TraceIDs),
		logging.KeyAttr(domain.CorrelationIDs),
	)
	logging.SetDefault(logger)
	typedctx.SetLogger(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Create the metrics registry served on /-/metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 6. Start the executor that runs background tasks
	executor := scheduler.New(scheduler.Config{
		Workers:    cfg.Scheduler.Workers,
		QueueSize:  cfg.Scheduler.QueueSize,
		Logger:     logger,
		Registerer: registry,
	})
	if err := executor.Start(ctx); err != nil {
		return fmt.Errorf("starting executor: %w", err)
	}

	// 7. Create health registry
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(executor); err != nil {
		return fmt.Errorf("registering executor health check: %w", err)
	}

	// 8. Create the task journal
	taskJournal, err := journal.NewMemory(cfg.Journal.Capacity, logger)
	if err != nil {
		return fmt.Errorf("creating task journal: %w", err)
	}

	// 9. Create HTTP client for the downstream service
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Downstream.BaseURL,
		ServiceName: cfg.Downstream.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Propagation: cfg.Propagation,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	if err := healthRegistry.Register(httpClient); err != nil {
		return fmt.Errorf("registering downstream health check: %w", err)
	}

	// 10. Create downstream client adapter (ACL pattern)
	downstream := acl.NewDownstreamClient(acl.DownstreamClientConfig{
		Client:      httpClient,
		ServiceName: cfg.Downstream.Name,
		Path:        cfg.Downstream.Path,
		Logger:      logger,
	})

	// 11. Create trace service (application layer)
	traceService := app.NewTraceService(app.TraceServiceConfig{
		Executor:    executor,
		Client:      downstream,
		Journal:     taskJournal,
		Logger:      logger,
		TaskTimeout: cfg.Propagation.DefaultTimeout,
	})

	// 12. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, handlers.WithGatherer(registry))
	traceHandler := handlers.NewTraceHandler(traceService, cfg.App.Name)

	// 13. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 14. Setup router with all middleware and routes
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		Propagation:   cfg.Propagation,
		HealthHandler: healthHandler,
		TraceHandler:  traceHandler,
	})

	// 15. Start server (non-blocking)
	serverErr := server.Start()

	// 16. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, executor, serverErr, shutdownTimeouts{
		server:    cfg.Server.ShutdownTimeout,
		scheduler: cfg.Scheduler.StopTimeout,
	})
}

type shutdownTimeouts struct {
	server    time.Duration
	scheduler time.Duration
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then drains the HTTP server and afterwards the executor, so tasks
// dispatched by in-flight requests still get to finish.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	executor *scheduler.Executor,
	serverErr <-chan error,
	timeouts shutdownTimeouts,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error

	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	logger.Info("initiating graceful shutdown",
		slog.Duration("server_timeout", timeouts.server),
		slog.Duration("scheduler_timeout", timeouts.scheduler),
	)

	if runErr == nil {
		serverCtx, cancel := context.WithTimeout(ctx, timeouts.server)
		defer cancel()

		if err := server.Shutdown(serverCtx); err != nil {
			runErr = fmt.Errorf("server shutdown: %w", err)
		}
	}

	schedulerCtx, cancel := context.WithTimeout(ctx, timeouts.scheduler)
	defer cancel()

	if err := executor.Stop(schedulerCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("executor stop: %w", err))
	}

	if runErr != nil {
		return runErr
	}

	logger.Info("shutdown complete")

	return nil
}
