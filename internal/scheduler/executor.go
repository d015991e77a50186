// Package scheduler is a small host scheduler for typedctx tasks: a pool of
// worker goroutines that resume tasks one step at a time. A task that is not
// done after a step goes back on the shared run queue and may be resumed by a
// different worker next time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

// Default executor settings.
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 1024
)

// Config configures an Executor.
type Config struct {
	// Workers is the number of worker goroutines.
	Workers int

	// QueueSize caps how many spawned tasks may wait for their first
	// resumption. Requeued pending tasks do not count against it.
	QueueSize int

	// Logger is an optional logger. If nil, slog.Default is used.
	Logger *slog.Logger

	// Registerer receives the executor metrics. If nil, metrics are kept
	// but not registered.
	Registerer prometheus.Registerer
}

// Executor drives spawned tasks on a fixed pool of workers.
type Executor struct {
	workers   int
	queueSize int
	logger    *slog.Logger
	metrics   *metrics
	queue     *runQueue

	// waiting counts spawned tasks not yet picked up by a worker.
	waiting atomic.Int64

	mu      sync.Mutex
	running bool
	live    map[string]runnable
	drained chan struct{}
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New creates an executor. Call Start before spawning.
func New(cfg Config) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		workers:   cfg.Workers,
		queueSize: cfg.QueueSize,
		logger:    logger.With(slog.String("component", "scheduler.Executor")),
		metrics:   newMetrics(cfg.Registerer),
		queue:     newRunQueue(),
		live:      make(map[string]runnable),
	}
}

// Start launches the workers. It returns immediately. The workers stop when
// ctx is canceled or Stop is called.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	e.running = true
	e.cancel = cancel
	e.group = group
	e.drained = make(chan struct{})

	for worker := 1; worker <= e.workers; worker++ {
		group.Go(func() error {
			return e.work(groupCtx, worker)
		})
	}

	e.logger.Info("executor started",
		slog.Int("workers", e.workers),
		slog.Int("queue_size", e.queueSize),
	)

	return nil
}

// Stop stops accepting tasks and waits for live tasks to finish. When ctx
// ends first, the workers are stopped and the remaining tasks complete with
// ErrExecutorStopped.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}

	e.running = false
	drained := e.drained
	e.closeDrainedLocked()
	e.mu.Unlock()

	e.logger.Info("executor stopping")

	select {
	case <-drained:
		e.logger.Info("executor drained")
	case <-ctx.Done():
		e.logger.Warn("executor stop timed out, abandoning live tasks")
	}

	e.cancel()

	err := e.group.Wait()

	e.mu.Lock()
	abandoned := make([]runnable, 0, len(e.live))
	for id, r := range e.live {
		abandoned = append(abandoned, r)
		delete(e.live, id)
	}
	e.mu.Unlock()

	for _, r := range abandoned {
		r.fail(ErrExecutorStopped)
	}

	e.queue.drain()
	e.waiting.Store(0)
	e.metrics.queued.Set(0)

	if err != nil {
		return fmt.Errorf("stopping executor: %w", err)
	}

	return nil
}

// Running reports whether the executor accepts tasks.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.running
}

// Live reports how many spawned tasks have not finished.
func (e *Executor) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.live)
}

// Name implements ports.HealthChecker.
func (e *Executor) Name() string {
	return "scheduler"
}

// Check implements ports.HealthChecker.
func (e *Executor) Check(_ context.Context) error {
	if !e.Running() {
		return ErrExecutorStopped
	}

	return nil
}

// Spawn hands task to the executor. The task is resumed by whichever worker
// picks it up; wrap it with typedctx.WithCurrent to carry context along.
func Spawn[R any](e *Executor, task typedctx.Task[R]) (*Handle[R], error) {
	h := newHandle(e, uuid.NewString(), task)

	if err := e.submit(h); err != nil {
		return nil, err
	}

	return h, nil
}

// Go spawns fn as a single-step task carrying a snapshot of every typed
// context value current on the caller. A non-nil error from fn completes the
// handle with a *TaskError.
func Go(e *Executor, fn func(ctx context.Context) error) (*Handle[struct{}], error) {
	return Spawn[struct{}](e, &funcTask{snapshot: typedctx.CaptureAll(), fn: fn})
}

// funcTask runs fn once under a captured snapshot.
type funcTask struct {
	snapshot typedctx.Snapshot
	fn       func(ctx context.Context) error
	err      error
}

func (t *funcTask) Resume(ctx context.Context) (struct{}, bool) {
	t.snapshot.Run(func() {
		t.err = t.fn(ctx)
	})

	return struct{}{}, true
}

func (t *funcTask) Err() error { return t.err }

func (e *Executor) submit(r runnable) error {
	e.mu.Lock()

	if !e.running {
		e.mu.Unlock()
		return ErrExecutorStopped
	}

	if e.waiting.Load() >= int64(e.queueSize) {
		e.mu.Unlock()
		return ErrQueueFull
	}

	e.waiting.Add(1)
	e.live[r.taskID()] = r
	e.mu.Unlock()

	e.metrics.spawned.Inc()
	e.logger.Debug("task spawned", slog.String("task_id", r.taskID()))

	e.requeue(r)

	return nil
}

func (e *Executor) requeue(r runnable) {
	e.queue.push(r)
	e.metrics.queued.Set(float64(e.queue.len()))
}

// work is run by each worker goroutine.
func (e *Executor) work(ctx context.Context, worker int) error {
	for {
		r := e.queue.pop(ctx)
		if r == nil {
			return nil
		}

		if r.begin() {
			e.waiting.Add(-1)
		}

		e.metrics.queued.Set(float64(e.queue.len()))

		if r.finished() {
			continue
		}

		if r.isCancelled() {
			r.fail(ErrTaskCancelled)
			e.metrics.cancelled.Inc()
			e.retire(r)
			e.logger.Debug("task cancelled", slog.String("task_id", r.taskID()))

			continue
		}

		if e.resume(ctx, r, worker) {
			e.retire(r)
			continue
		}

		if r.suspend() {
			e.requeue(r)
			runtime.Gosched()
		}
	}
}

// resume drives one step and reports whether the task is finished.
func (e *Executor) resume(ctx context.Context, r runnable, worker int) (finished bool) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}

		e.metrics.panicked.Inc()
		e.logger.Error("task panicked",
			slog.String("task_id", r.taskID()),
			slog.Int("worker", worker),
			slog.Any("panic", p),
		)

		r.fail(fmt.Errorf("%w: %v", ErrTaskPanicked, p))

		finished = true
	}()

	e.metrics.resumptions.Inc()

	if r.step(ctx, worker) {
		e.metrics.completed.Inc()
		e.logger.Debug("task completed",
			slog.String("task_id", r.taskID()),
			slog.Int("worker", worker),
		)

		return true
	}

	return false
}

func (e *Executor) retire(r runnable) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.live, r.taskID())

	if !e.running {
		e.closeDrainedLocked()
	}
}

// closeDrainedLocked closes the drained channel once no task is live.
// Must be called with e.mu held.
func (e *Executor) closeDrainedLocked() {
	if len(e.live) > 0 || e.drained == nil {
		return
	}

	select {
	case <-e.drained:
	default:
		close(e.drained)
	}
}
