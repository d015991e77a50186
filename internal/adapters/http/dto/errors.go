// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
)

// contextKeyTraceID is the gin context key the trace id middleware sets.
const contextKeyTraceID = "trace_id"

// ErrorResponse is the standard error envelope for all error responses.
// It provides a consistent structure for API error handling.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details provides additional context about the error.
	// For validation errors, this contains field-level error messages.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	// ErrorCodeNotFound indicates the requested resource was not found.
	ErrorCodeNotFound = "NOT_FOUND"

	// ErrorCodeValidation indicates request validation failed.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// ErrorCodeUnavailable indicates a dependency is unavailable.
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"

	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal = "INTERNAL_ERROR"

	// ErrorCodeTimeout indicates the request deadline passed.
	ErrorCodeTimeout = "TIMEOUT"

	// ErrorCodeBadRequest indicates the request was malformed.
	ErrorCodeBadRequest = "BAD_REQUEST"

	// ErrorCodePropagationLost indicates a downstream service did not
	// receive the trace context it was sent.
	ErrorCodePropagationLost = "PROPAGATION_LOST"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodePropagationLost:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to an error response.
// Unknown errors are mapped to INTERNAL_ERROR with a generic message.
func MapDomainError(err error) *ErrorResponse {
	switch {
	case domain.IsNotFound(err):
		return NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return resp

	case domain.IsDeadlineExceeded(err), errors.Is(err, context.DeadlineExceeded):
		return NewErrorResponse(ErrorCodeTimeout, err.Error())

	case domain.IsPropagationLost(err):
		return NewErrorResponse(ErrorCodePropagationLost, err.Error())

	case domain.IsUnavailable(err):
		return NewErrorResponse(ErrorCodeUnavailable, "service temporarily unavailable: "+err.Error())

	default:
		// Unknown errors get a generic message to avoid leaking internals
		return NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleError writes the error response for err, stamped with the request's
// trace id. Internal errors are logged with full detail.
func HandleError(c *gin.Context, err error) {
	resp := MapDomainError(err).WithTraceID(GetTraceID(c))
	status := HTTPStatusFromCode(resp.Error.Code)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "internal error",
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(status, resp)
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fieldErrors).
		WithTraceID(GetTraceID(c))

	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// GetTraceID returns the trace id of the request: the one the middleware
// stored in gin, or else the one attached to the handler goroutine.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(contextKeyTraceID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	if id, ok := domain.TraceIDs.Current(); ok {
		return id.String()
	}

	return ""
}
