package clients

import "errors"

// Transport-level failures. Adapters in acl translate them to domain errors;
// nothing above the adapters should match on them.
var (
	// ErrCircuitOpen is returned without sending when the breaker for the
	// downstream service is open or its half-open probe budget is spent.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once the retry
	// budget is used up.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
