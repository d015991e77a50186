package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/clients"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
)

// BaseAdapter provides common functionality for ACL adapters.
// Embed this in your service-specific adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a new base adapter with the given client and service name.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET request and returns the response body.
// The path should be an absolute path starting with "/".
// On failure, returns a mapped domain error.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	return resp.Body, nil
}

// DecodeResponse reads and decodes a JSON response body into the target type.
// Closes the body after reading.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Translator is a function type that translates an external DTO to a domain type.
// The function should validate the external data and return a domain error
// if validation fails.
type Translator[External any, Domain any] func(ext *External) (*Domain, error)

// echoResponse is the DTO the downstream echo endpoint returns.
type echoResponse struct {
	Service       string `json:"service"`
	TraceID       string `json:"traceId"`
	CorrelationID string `json:"correlationId"`
}

// translateEcho validates an echo DTO and converts it to a domain Echo.
// Empty ids are kept: they mean the downstream service received nothing.
func translateEcho(fallbackService string) Translator[echoResponse, domain.Echo] {
	return func(ext *echoResponse) (*domain.Echo, error) {
		echo := &domain.Echo{Service: ext.Service}
		if echo.Service == "" {
			echo.Service = fallbackService
		}

		if ext.TraceID != "" {
			id, err := domain.ParseTraceID(ext.TraceID)
			if err != nil {
				return nil, fmt.Errorf("echoed trace id: %w", err)
			}

			echo.TraceID = id
		}

		if ext.CorrelationID != "" {
			id, err := domain.ParseCorrelationID(ext.CorrelationID)
			if err != nil {
				return nil, fmt.Errorf("echoed correlation id: %w", err)
			}

			echo.CorrelationID = id
		}

		return echo, nil
	}
}
