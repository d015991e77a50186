package typedctx

import "sync"

// holding is the content of one goroutine's cell: nothing, an owned value, or
// a borrow of a value owned by a wrapper.
type holding[T any] struct {
	owned    T
	borrowed *T
	present  bool
}

func ownedHolding[T any](v T) holding[T] {
	return holding[T]{owned: v, present: true}
}

func borrowedHolding[T any](p *T) holding[T] {
	return holding[T]{borrowed: p, present: true}
}

func (h holding[T]) value() T {
	if h.borrowed != nil {
		return *h.borrowed
	}

	return h.owned
}

// slot maps goroutine ids to their current holding for a single type.
// A cell is only ever read or replaced by the goroutine it belongs to; the
// lock protects the map itself.
type slot[T any] struct {
	mu    sync.RWMutex
	cells map[uint64]holding[T]
}

func (s *slot[T]) read(gid uint64) holding[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cells[gid]
}

// swap replaces the goroutine's holding and returns the previous one.
// Swapping in an empty holding drops the cell entirely.
func (s *slot[T]) swap(gid uint64, h holding[T]) holding[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.cells[gid]

	if !h.present {
		delete(s.cells, gid)
		return prev
	}

	if s.cells == nil {
		s.cells = make(map[uint64]holding[T])
	}

	s.cells[gid] = h

	return prev
}

// len reports how many goroutines currently hold a value.
func (s *slot[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cells)
}
