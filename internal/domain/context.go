// Package domain declares the context types this service propagates
// implicitly through request handling and background tasks.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// maxIDLength bounds externally supplied trace and correlation ids.
const maxIDLength = 128

// TraceID identifies one request as it crosses goroutines and services.
type TraceID string

// CorrelationID ties together every request of one business transaction.
type CorrelationID string

// Deadline is the point in time by which the current work should finish.
// It is an ordinary attached value; nothing enforces it automatically.
type Deadline struct {
	at time.Time
}

// Keys for the context types. Each type is declared exactly once.
var (
	TraceIDs       = typedctx.Declare[TraceID](typedctx.WithName("trace_id"))
	CorrelationIDs = typedctx.Declare[CorrelationID](typedctx.WithName("correlation_id"))
	Deadlines      = typedctx.Declare[Deadline](typedctx.WithName("deadline"))
)

// NewTraceID generates a random trace id.
func NewTraceID() TraceID {
	return TraceID(uuid.NewString())
}

// ParseTraceID validates an externally supplied trace id.
func ParseTraceID(s string) (TraceID, error) {
	if err := validateID("trace_id", s); err != nil {
		return "", err
	}

	return TraceID(s), nil
}

// String returns the id.
func (t TraceID) String() string { return string(t) }

// NewCorrelationID generates a random correlation id.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString())
}

// ParseCorrelationID validates an externally supplied correlation id.
func ParseCorrelationID(s string) (CorrelationID, error) {
	if err := validateID("correlation_id", s); err != nil {
		return "", err
	}

	return CorrelationID(s), nil
}

// String returns the id.
func (c CorrelationID) String() string { return string(c) }

// DeadlineAfter returns a deadline d from now.
func DeadlineAfter(d time.Duration) Deadline {
	return Deadline{at: time.Now().Add(d)}
}

// DeadlineAt returns a deadline at t.
func DeadlineAt(t time.Time) Deadline {
	return Deadline{at: t}
}

// Time returns the instant of the deadline.
func (d Deadline) Time() time.Time { return d.at }

// Remaining returns the time left, never negative.
func (d Deadline) Remaining() time.Duration {
	return max(time.Until(d.at), 0)
}

// Expired reports whether the deadline has passed.
func (d Deadline) Expired() bool {
	return !time.Now().Before(d.at)
}

// Context derives a context.Context that is canceled at the deadline.
func (d Deadline) Context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithDeadline(parent, d.at)
}

// CurrentTraceID returns the attached trace id, or the empty id.
func CurrentTraceID() TraceID {
	id, _ := TraceIDs.Current()
	return id
}

// CurrentCorrelationID returns the attached correlation id, or the empty id.
func CurrentCorrelationID() CorrelationID {
	id, _ := CorrelationIDs.Current()
	return id
}

func validateID(field, s string) error {
	if s == "" {
		return NewValidationError(field, "must not be empty")
	}

	if len(s) > maxIDLength {
		return NewValidationErrorWithValue(field, "too long", len(s))
	}

	for _, r := range s {
		if !isIDRune(r) {
			return NewValidationErrorWithValue(field, "contains invalid characters", s)
		}
	}

	return nil
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == ':':
		return true
	default:
		return false
	}
}
