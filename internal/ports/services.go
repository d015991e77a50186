// Package ports holds the interfaces the application layer calls out
// through. Adapters implement them.
//
// Every method takes a context.Context first and returns domain types. The
// trace id, correlation id and deadline are not parameters: implementations
// read them from the calling goroutine.
package ports

import (
	"context"

	"github.com/jsamuelsen/go-typedctx/internal/domain"
)

// DownstreamClient calls the downstream service that background tasks talk to.
//
// Implementations copy the current trace id, correlation id and deadline into
// the outbound request and report what the downstream service saw.
type DownstreamClient interface {
	// Echo calls the downstream service and returns what it received.
	// Returns domain.ErrUnavailable if the service is unreachable.
	Echo(ctx context.Context) (*domain.Echo, error)
}

// TaskJournal keeps the records of background tasks.
type TaskJournal interface {
	// Put creates or replaces the record with the same id.
	Put(ctx context.Context, record domain.TaskRecord) error

	// Get returns the record with id.
	// Returns domain.ErrNotFound if no such record exists.
	Get(ctx context.Context, id string) (*domain.TaskRecord, error)

	// List returns up to limit records, newest first, starting after the
	// record with id after. An empty after starts from the newest record.
	List(ctx context.Context, after string, limit int) ([]domain.TaskRecord, error)
}
