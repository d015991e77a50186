package scheduler

import (
	"context"
	"sync"
)

// runQueue is an unbounded FIFO of runnable tasks. Workers requeue pending
// tasks themselves, so pushes must never block; capacity is enforced by
// Spawn instead.
type runQueue struct {
	mu     sync.Mutex
	items  []runnable
	signal chan struct{}
}

func newRunQueue() *runQueue {
	return &runQueue{signal: make(chan struct{}, 1)}
}

func (q *runQueue) push(r runnable) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	q.notify()
}

// pop blocks until a task is available or ctx is done, returning nil in the
// latter case.
func (q *runQueue) pop(ctx context.Context) runnable {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			r := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()

			if more {
				q.notify()
			}

			return r
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-ctx.Done():
			return nil
		}
	}
}

func (q *runQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

func (q *runQueue) drain() []runnable {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil

	return items
}

func (q *runQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
