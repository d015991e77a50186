package clients

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jsamuelsen/go-typedctx/internal/platform/config"
)

// Defaults applied when the breaker configuration leaves a field unset.
const (
	defaultBreakerMaxFailures   = 5
	defaultBreakerTimeout       = 30 * time.Second
	defaultBreakerHalfOpenLimit = 1
)

// newBreaker builds the circuit breaker guarding one downstream service.
//
// The circuit opens after MaxFailures consecutive failed calls, stays open
// for Timeout, then lets HalfOpenLimit probe calls through. That many
// consecutive successes close it again; any failure reopens it.
func newBreaker(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultBreakerMaxFailures
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}

	halfOpen := cfg.HalfOpenLimit
	if halfOpen <= 0 {
		halfOpen = defaultBreakerHalfOpenLimit
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(halfOpen), //nolint:gosec // bounded by config validation
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures) //nolint:gosec // bounded by config validation
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// isBreakerRejection reports whether err came from the breaker refusing a
// call rather than from the call itself.
func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
