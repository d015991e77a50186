// Package journal provides an in-memory implementation of ports.TaskJournal.
//
// The journal is bounded: once it holds Capacity records, storing a new one
// evicts the record that was written least recently. Records are copied on
// the way in and out so callers never share state with the journal.
package journal

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/ports"
)

// DefaultLimit is used by List when the caller passes a non-positive limit.
const DefaultLimit = 20

// Memory is a bounded in-memory task journal.
type Memory struct {
	records *lru.Cache[string, domain.TaskRecord]
}

var _ ports.TaskJournal = (*Memory)(nil)

// NewMemory creates a journal that keeps at most capacity records.
func NewMemory(capacity int, logger *slog.Logger) (*Memory, error) {
	if logger == nil {
		logger = slog.Default()
	}

	records, err := lru.NewWithEvict(capacity, func(id string, r domain.TaskRecord) {
		logger.Debug("task record evicted",
			slog.String("task_id", id),
			slog.String("status", string(r.Status)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("creating task journal: %w", err)
	}

	return &Memory{records: records}, nil
}

// Put stores record, replacing any record with the same id.
func (m *Memory) Put(ctx context.Context, record domain.TaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if record.ID == "" {
		return domain.NewValidationError("id", "must not be empty")
	}

	m.records.Add(record.ID, clone(record))

	return nil
}

// Get returns a copy of the record with id.
func (m *Memory) Get(ctx context.Context, id string) (*domain.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, ok := m.records.Peek(id)
	if !ok {
		return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}

	r = clone(r)

	return &r, nil
}

// List returns up to limit records ordered newest first by creation time.
// A non-empty after resumes the listing behind that record.
func (m *Memory) List(ctx context.Context, after string, limit int) ([]domain.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	keys := m.records.Keys()
	all := make([]domain.TaskRecord, 0, len(keys))

	for _, id := range keys {
		if r, ok := m.records.Peek(id); ok {
			all = append(all, r)
		}
	}

	slices.SortFunc(all, func(a, b domain.TaskRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID, a.ID)
	})

	if after != "" {
		i := slices.IndexFunc(all, func(r domain.TaskRecord) bool { return r.ID == after })
		if i < 0 {
			return nil, fmt.Errorf("cursor task %q: %w", after, domain.ErrNotFound)
		}

		all = all[i+1:]
	}

	page := all[:min(limit, len(all))]
	out := make([]domain.TaskRecord, len(page))

	for i, r := range page {
		out[i] = clone(r)
	}

	return out, nil
}

// Len returns the number of records held.
func (m *Memory) Len() int {
	return m.records.Len()
}

func clone(r domain.TaskRecord) domain.TaskRecord {
	if r.Echo != nil {
		echo := *r.Echo
		r.Echo = &echo
	}

	return r
}
