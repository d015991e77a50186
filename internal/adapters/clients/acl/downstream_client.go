package acl

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/clients"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
)

// DefaultEchoPath is the echo endpoint used when none is configured.
const DefaultEchoPath = "/api/v1/echo"

// DownstreamClientConfig contains configuration for the downstream client.
type DownstreamClientConfig struct {
	// Client is the HTTP client to use for requests.
	Client *clients.Client

	// ServiceName names the downstream service in errors and echoes.
	ServiceName string

	// Path is the echo endpoint on the downstream service.
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DownstreamClient implements ports.DownstreamClient. It calls an endpoint
// that reports the trace and correlation ids it received, and translates
// that report to a domain Echo.
type DownstreamClient struct {
	BaseAdapter

	path   string
	logger *slog.Logger
}

// NewDownstreamClient creates a new downstream client adapter.
// Panics if Client is nil.
func NewDownstreamClient(cfg DownstreamClientConfig) *DownstreamClient {
	if cfg.Client == nil {
		panic("DownstreamClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.ServiceName
	if name == "" {
		name = cfg.Client.Name()
	}

	path := cfg.Path
	if path == "" {
		path = DefaultEchoPath
	}

	return &DownstreamClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		path:        path,
		logger:      logger.With(slog.String("component", "acl.DownstreamClient")),
	}
}

// Echo calls the downstream echo endpoint with the typed context of the
// calling goroutine and returns what the downstream service received.
func (c *DownstreamClient) Echo(ctx context.Context) (*domain.Echo, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", c.path))

	body, err := c.Get(ctx, c.path, "echo")
	if err != nil {
		return nil, err
	}

	ext, err := DecodeResponse[echoResponse](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	echo, err := translateEcho(c.ServiceName())(ext)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	c.logger.DebugContext(ctx, "downstream echoed",
		slog.String("echo_trace_id", echo.TraceID.String()),
		slog.String("echo_correlation_id", echo.CorrelationID.String()),
	)

	return echo, nil
}
