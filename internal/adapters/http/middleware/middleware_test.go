package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestTraceIDMiddleware tests the TraceID middleware.
func TestTraceIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		header          string
		expectGenerated bool
	}{
		{
			name:            "generates UUID when no header present",
			header:          "",
			expectGenerated: true,
		},
		{
			name:            "passes through existing header",
			header:          "upstream-trace-123",
			expectGenerated: false,
		},
		{
			name:            "replaces invalid header",
			header:          "bad trace id!",
			expectGenerated: true,
		},
		{
			name:            "replaces oversized header",
			header:          strings.Repeat("a", 129),
			expectGenerated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ginID string
			var attached domain.TraceID
			var ok bool

			router := gin.New()
			router.Use(TraceID(""))
			router.GET("/test", func(c *gin.Context) {
				ginID = GetTraceID(c)
				attached, ok = domain.TraceIDs.Current()
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(HeaderTraceID, tt.header)
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			require.True(t, ok, "handler should see an attached trace id")

			responseHeader := w.Header().Get(HeaderTraceID)
			assert.NotEmpty(t, responseHeader)
			assert.Equal(t, responseHeader, ginID)
			assert.Equal(t, responseHeader, attached.String())

			if tt.expectGenerated {
				assert.NotEqual(t, tt.header, attached.String())
			} else {
				assert.Equal(t, tt.header, attached.String())
			}

			_, stillAttached := domain.TraceIDs.Current()
			assert.False(t, stillAttached, "trace id must be detached when the request ends")
		})
	}
}

func TestTraceIDMiddleware_CustomHeader(t *testing.T) {
	t.Parallel()

	var attached domain.TraceID

	router := gin.New()
	router.Use(TraceID("X-Trace"))
	router.GET("/test", func(c *gin.Context) {
		attached = domain.CurrentTraceID()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Trace", "custom-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, domain.TraceID("custom-1"), attached)
	assert.Equal(t, "custom-1", w.Header().Get("X-Trace"))
}

func TestTraceIDMiddleware_FallsBackToSpan(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	var spanTraceID string
	var attached domain.TraceID

	router := gin.New()
	router.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()

		spanTraceID = span.SpanContext().TraceID().String()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.Use(TraceID(""))
	router.GET("/test", func(c *gin.Context) {
		attached = domain.CurrentTraceID()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.NotEmpty(t, spanTraceID)
	assert.Equal(t, spanTraceID, attached.String())
}

// TestCorrelationIDMiddleware tests the CorrelationID middleware.
func TestCorrelationIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		header          string
		expectGenerated bool
	}{
		{
			name:            "generates UUID when no header present",
			expectGenerated: true,
		},
		{
			name:   "passes through existing header",
			header: "existing-corr-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ginID string
			var attached domain.CorrelationID

			router := gin.New()
			router.Use(CorrelationID(""))
			router.GET("/test", func(c *gin.Context) {
				ginID = GetCorrelationID(c)
				attached = domain.CurrentCorrelationID()
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(HeaderCorrelationID, tt.header)
			}

			router.ServeHTTP(w, req)

			responseHeader := w.Header().Get(HeaderCorrelationID)
			assert.NotEmpty(t, responseHeader)
			assert.Equal(t, responseHeader, ginID)
			assert.Equal(t, responseHeader, attached.String())

			if !tt.expectGenerated {
				assert.Equal(t, tt.header, ginID)
			}
		})
	}
}

// TestDeadlineMiddleware tests the Deadline middleware.
func TestDeadlineMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		defaultTTL time.Duration
		maxBudget  time.Duration
		minBudget  time.Duration
	}{
		{
			name:       "uses default without header",
			defaultTTL: time.Minute,
			maxBudget:  time.Minute,
			minBudget:  50 * time.Second,
		},
		{
			name:       "uses smaller caller budget",
			header:     "2s",
			defaultTTL: time.Minute,
			maxBudget:  2 * time.Second,
			minBudget:  time.Second,
		},
		{
			name:       "caps caller budget at default",
			header:     "10m",
			defaultTTL: time.Minute,
			maxBudget:  time.Minute,
			minBudget:  50 * time.Second,
		},
		{
			name:       "ignores malformed header",
			header:     "soon",
			defaultTTL: time.Minute,
			maxBudget:  time.Minute,
			minBudget:  50 * time.Second,
		},
		{
			name:       "ignores negative header",
			header:     "-5s",
			defaultTTL: time.Minute,
			maxBudget:  time.Minute,
			minBudget:  50 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var remaining time.Duration
			var attached, ctxHasDeadline, ginHasDeadline bool
			var ctxDeadline, attachedAt time.Time

			router := gin.New()
			router.Use(Deadline("", tt.defaultTTL))
			router.GET("/test", func(c *gin.Context) {
				var d domain.Deadline
				d, attached = domain.Deadlines.Current()
				remaining = d.Remaining()
				attachedAt = d.Time()
				ctxDeadline, ctxHasDeadline = c.Request.Context().Deadline()
				_, ginHasDeadline = GetDeadline(c)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(HeaderDeadline, tt.header)
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			require.True(t, attached)
			assert.True(t, ginHasDeadline)
			assert.LessOrEqual(t, remaining, tt.maxBudget)
			assert.GreaterOrEqual(t, remaining, tt.minBudget)

			require.True(t, ctxHasDeadline, "request context should carry the deadline")
			assert.Equal(t, attachedAt, ctxDeadline)

			_, stillAttached := domain.Deadlines.Current()
			assert.False(t, stillAttached)
		})
	}
}

func TestDeadlineMiddleware_ExpiredWithoutResponse(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(TraceID(""))
	router.Use(Deadline("", time.Minute))
	router.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	req.Header.Set(HeaderDeadline, "20ms")
	req.Header.Set(HeaderTraceID, "slow-trace")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dto.ErrorCodeTimeout, body.Error.Code)
	assert.Equal(t, "slow-trace", body.TraceID)
}

func TestDeadlineMiddleware_ResponseAlreadyWritten(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(Deadline("", time.Minute))
	router.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.String(http.StatusOK, "late but written")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	req.Header.Set(HeaderDeadline, "10ms")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "late but written", w.Body.String())
}

// TestLogging tests the Logging middleware.
func TestLogging(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "logs normal request", path: "/api/test", status: http.StatusOK},
		{name: "skips /-/ paths", path: "/-/live", status: http.StatusOK},
		{name: "logs path with query string", path: "/api/search?q=hello", status: http.StatusOK},
		{name: "logs 500 error at error level", path: "/api/error", status: http.StatusInternalServerError},
		{name: "logs 400 error at warn level", path: "/api/bad", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(Logging(logger))
			router.NoRoute(func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestLogging_StampsTypedContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(logging.NewContextHandler(
		slog.NewJSONHandler(&buf, nil),
		logging.KeyAttr(domain.TraceIDs),
		logging.KeyAttr(domain.CorrelationIDs),
	))

	router := gin.New()
	router.Use(TraceID(""), CorrelationID(""), Logging(logger, "/skipped"))
	router.GET("/api/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/skipped", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set(HeaderTraceID, "logged-trace")
	req.Header.Set(HeaderCorrelationID, "logged-corr")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/skipped", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "start and completion of /api/test only")

	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "logged-trace", entry["trace_id"])
		assert.Equal(t, "logged-corr", entry["correlation_id"])
	}
}

func TestLogging_AttachesRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(Logging(logger))
	router.GET("/api/items/:id", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("from handler")
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/7", nil))

	var found bool

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		if entry["msg"] == "from handler" {
			found = true
			assert.Equal(t, "/api/items/:id", entry["route"])
		}
	}

	assert.True(t, found, "handler log line written through the attached logger")

	_, attached := logging.Loggers.Current()
	assert.False(t, attached)
}

// TestRecovery tests the Recovery middleware.
func TestRecovery(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normal request passes through", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(logger))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panicking handler returns 500 with trace id", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(logger), TraceID(""))
		router.GET("/test", func(c *gin.Context) {
			panic("something went wrong")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderTraceID, "panic-trace")

		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, dto.ErrorCodeInternal, body.Error.Code)
		assert.Equal(t, "panic-trace", body.TraceID)

		_, stillAttached := domain.TraceIDs.Current()
		assert.False(t, stillAttached, "panic must not leave the trace id attached")
	})

	t.Run("nil logger falls back to context logger", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(nil))
		router.GET("/test", func(c *gin.Context) {
			panic("boom")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetIDFromContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setupCtx func(*gin.Context)
		key      string
		expected string
	}{
		{
			name: "returns ID when string value exists",
			setupCtx: func(c *gin.Context) {
				c.Set("test-key", "test-value")
			},
			key:      "test-key",
			expected: "test-value",
		},
		{
			name:     "returns empty when key not exists",
			setupCtx: func(c *gin.Context) {},
			key:      "test-key",
			expected: "",
		},
		{
			name: "returns empty when value is not string",
			setupCtx: func(c *gin.Context) {
				c.Set("test-key", 123)
			},
			key:      "test-key",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupCtx(c)

			assert.Equal(t, tt.expected, getIDFromContext(c, tt.key))
		})
	}
}

func TestGetDeadline_NotSet(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetDeadline(c)
	assert.False(t, ok)
}
