package scheduler

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// runnable is the type-erased view of a Handle the workers operate on.
type runnable interface {
	taskID() string
	step(ctx context.Context, worker int) bool
	suspend() bool
	begin() bool
	finished() bool
	isCancelled() bool
	fail(err error)
}

// Handle tracks one spawned task.
type Handle[R any] struct {
	id   string
	task typedctx.Task[R]
	exec *Executor

	mu       sync.Mutex
	parked   bool
	woken    bool
	sleeping bool
	workers  []int

	started     atomic.Bool
	cancelled   atomic.Bool
	resumptions atomic.Int64

	once   sync.Once
	done   chan struct{}
	result R
	err    error
}

func newHandle[R any](e *Executor, id string, task typedctx.Task[R]) *Handle[R] {
	return &Handle[R]{
		id:   id,
		task: task,
		exec: e,
		done: make(chan struct{}),
	}
}

// ID returns the task id.
func (h *Handle[R]) ID() string { return h.id }

// Done is closed once the task has a result or an error.
func (h *Handle[R]) Done() <-chan struct{} { return h.done }

// Await blocks until the task finishes or ctx is done.
func (h *Handle[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Cancel stops the task at its next scheduling point. A task that is not
// resumed again is simply dropped; its step in progress, if any, finishes.
func (h *Handle[R]) Cancel() {
	if h.cancelled.CompareAndSwap(false, true) {
		h.wake()
	}
}

// Resumptions reports how many steps have been driven so far.
func (h *Handle[R]) Resumptions() int64 {
	return h.resumptions.Load()
}

// Workers lists the workers that resumed the task, in order, with
// consecutive repeats collapsed.
func (h *Handle[R]) Workers() []int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.workers)
}

func (h *Handle[R]) taskID() string { return h.id }

func (h *Handle[R]) isCancelled() bool { return h.cancelled.Load() }

// begin reports whether this is the first time a worker picked the task up.
func (h *Handle[R]) begin() bool { return h.started.CompareAndSwap(false, true) }

func (h *Handle[R]) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Handle[R]) step(ctx context.Context, worker int) bool {
	h.mu.Lock()
	h.parked, h.woken = false, false
	if n := len(h.workers); n == 0 || h.workers[n-1] != worker {
		h.workers = append(h.workers, worker)
	}
	h.mu.Unlock()

	h.resumptions.Add(1)

	ctx = context.WithValue(ctx, parkerKey{}, h)
	ctx = context.WithValue(ctx, workerKey{}, worker)

	result, done := h.task.Resume(ctx)
	if !done {
		return false
	}

	if f, ok := h.task.(failer); ok && f.Err() != nil {
		h.fail(f.Err())
		return true
	}

	h.finish(result, nil)

	return true
}

// failer is implemented by tasks that can complete with an error.
type failer interface {
	Err() error
}

// suspend reports whether a pending task should go straight back on the run
// queue. A parked task that has not been woken sleeps until wake.
func (h *Handle[R]) suspend() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.parked && !h.woken && !h.cancelled.Load() {
		h.sleeping = true
		return false
	}

	return true
}

func (h *Handle[R]) park() {
	h.mu.Lock()
	h.parked = true
	h.mu.Unlock()
}

// wake requeues a sleeping task. A task that already has its result, for
// example one abandoned by Stop, is left alone.
func (h *Handle[R]) wake() {
	if h.finished() {
		return
	}

	h.mu.Lock()

	if h.sleeping {
		h.sleeping = false
		h.mu.Unlock()
		h.exec.requeue(h)

		return
	}

	h.woken = true
	h.mu.Unlock()
}

func (h *Handle[R]) fail(err error) {
	var zero R
	h.finish(zero, &TaskError{TaskID: h.id, Err: err})
}

func (h *Handle[R]) finish(result R, err error) {
	h.once.Do(func() {
		h.result, h.err = result, err
		h.task = nil
		close(h.done)
	})
}

type (
	parkerKey struct{}
	workerKey struct{}
)

// Worker returns the number of the executor worker resuming the current
// step. It reports false outside an executor step.
func Worker(ctx context.Context) (int, bool) {
	w, ok := ctx.Value(workerKey{}).(int)
	return w, ok
}

type parker interface {
	park()
	wake()
}

// Park tells the executor resuming the current step not to resume the task
// again until the returned wake function is called. A task that returns
// pending without parking is requeued right away.
//
// Outside an executor step Park returns a no-op.
func Park(ctx context.Context) (wake func()) {
	p, ok := ctx.Value(parkerKey{}).(parker)
	if !ok {
		return func() {}
	}

	p.park()

	return p.wake
}
