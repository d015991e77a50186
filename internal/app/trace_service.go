// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Services here never take trace ids, correlation ids or deadlines as
// parameters. They read them from the calling goroutine and move them onto
// the goroutines and executor workers that continue the work.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/go-typedctx/internal/domain"
	"github.com/jsamuelsen/go-typedctx/internal/ports"
	"github.com/jsamuelsen/go-typedctx/internal/scheduler"
	"github.com/jsamuelsen/go-typedctx/internal/typedctx"
)

const (
	// MaxObserveSteps bounds the resumptions of one observation task.
	MaxObserveSteps = 64

	// fanOutWidth is the number of goroutines an observation fans out to.
	fanOutWidth = 3

	// DefaultTaskTimeout bounds a dispatched task when none is configured.
	DefaultTaskTimeout = 30 * time.Second
)

// StepObservation is what one resumption of an observation task saw.
type StepObservation struct {
	Step          int
	Worker        int
	TraceID       domain.TraceID
	CorrelationID domain.CorrelationID
}

// Observation compares the context seen by a request handler with the
// context seen by work it handed to other goroutines.
type Observation struct {
	TaskID        string
	Handler       domain.TraceID
	CorrelationID domain.CorrelationID
	Steps         []StepObservation
	Workers       []int
	FanOut        []domain.TraceID
}

// Propagated reports whether every step and every fan-out goroutine saw the
// handler's trace id.
func (o *Observation) Propagated() bool {
	for _, s := range o.Steps {
		if s.TraceID != o.Handler || s.CorrelationID != o.CorrelationID {
			return false
		}
	}

	for _, id := range o.FanOut {
		if id != o.Handler {
			return false
		}
	}

	return true
}

// TraceService runs the trace use cases: observing propagation onto executor
// workers and dispatching background downstream calls.
type TraceService struct {
	executor    *scheduler.Executor
	client      ports.DownstreamClient
	journal     ports.TaskJournal
	pipeline    *Pipeline
	logger      *slog.Logger
	taskTimeout time.Duration
	now         func() time.Time
}

// TraceServiceConfig contains the dependencies of the trace service.
type TraceServiceConfig struct {
	Executor    *scheduler.Executor
	Client      ports.DownstreamClient
	Journal     ports.TaskJournal
	Logger      *slog.Logger
	TaskTimeout time.Duration
}

// NewTraceService creates a trace service. It panics when a required
// dependency is missing.
func NewTraceService(cfg TraceServiceConfig) *TraceService {
	if cfg.Executor == nil || cfg.Client == nil || cfg.Journal == nil {
		panic("app: trace service requires an executor, a downstream client and a journal")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.TaskTimeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}

	logger = logger.With(slog.String("component", "app.TraceService"))

	return &TraceService{
		executor:    cfg.Executor,
		client:      cfg.Client,
		journal:     cfg.Journal,
		pipeline:    NewPipeline(logger),
		logger:      logger,
		taskTimeout: timeout,
		now:         time.Now,
	}
}

// Observe spawns a task of the given number of steps onto the executor and
// reports the trace id each step saw, next to the one the caller has
// attached. Each step yields, so consecutive steps may run on different
// workers. The same trace id is also read from a small goroutine fan-out.
func (s *TraceService) Observe(ctx context.Context, steps int) (*Observation, error) {
	if steps < 1 || steps > MaxObserveSteps {
		return nil, domain.NewValidationErrorWithValue("steps",
			fmt.Sprintf("must be between 1 and %d", MaxObserveSteps), steps)
	}

	handler, ok := domain.TraceIDs.Current()
	if !ok {
		return nil, domain.NewValidationError("trace_id", "no trace id attached")
	}

	var seen []StepObservation

	step := func(ctx context.Context) []StepObservation {
		worker, _ := scheduler.Worker(ctx)
		seen = append(seen, StepObservation{
			Step:          len(seen) + 1,
			Worker:        worker,
			TraceID:       domain.CurrentTraceID(),
			CorrelationID: domain.CurrentCorrelationID(),
		})

		return seen
	}

	task := typedctx.Steps(slices.Repeat([]func(context.Context) []StepObservation{step}, steps)...)
	task = typedctx.WithCurrent[domain.TraceID](task)
	task = typedctx.WithCurrent[domain.CorrelationID](task)

	h, err := scheduler.Spawn(s.executor, task)
	if err != nil {
		return nil, schedulerUnavailable(err)
	}

	observed, err := h.Await(ctx)
	if err != nil {
		h.Cancel()
		return nil, fmt.Errorf("awaiting observation task: %w", err)
	}

	readers := slices.Repeat([]func(context.Context) (domain.TraceID, error){
		func(context.Context) (domain.TraceID, error) { return domain.CurrentTraceID(), nil },
	}, fanOutWidth)

	fanOut, err := Parallel(ctx, readers...)
	if err != nil {
		return nil, err
	}

	obs := &Observation{
		TaskID:        h.ID(),
		Handler:       handler,
		CorrelationID: domain.CurrentCorrelationID(),
		Steps:         observed,
		Workers:       h.Workers(),
		FanOut:        fanOut,
	}

	s.logger.DebugContext(ctx, "observation finished",
		slog.String("task_id", obs.TaskID),
		slog.Any("workers", obs.Workers),
		slog.Bool("propagated", obs.Propagated()),
	)

	return obs, nil
}

// Dispatch records a pending task and spawns it onto the executor. The task
// carries the caller's trace and correlation ids and a fresh deadline of its
// own, calls the downstream service and checks that the service received
// the trace id. The outcome is written to the journal.
func (s *TraceService) Dispatch(ctx context.Context) (*domain.TaskRecord, error) {
	traceID, ok := domain.TraceIDs.Current()
	if !ok {
		return nil, domain.NewValidationError("trace_id", "no trace id attached")
	}

	now := s.now()
	record := domain.TaskRecord{
		ID:            uuid.NewString(),
		TraceID:       traceID,
		CorrelationID: domain.CurrentCorrelationID(),
		Status:        domain.TaskPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.journal.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("recording task: %w", err)
	}

	task := typedctx.Ready(func(ctx context.Context) domain.TaskRecord {
		return s.runDispatch(ctx, record)
	})
	task = typedctx.With(task, domain.DeadlineAfter(s.taskTimeout))
	task = typedctx.WithCurrent[domain.TraceID](task)
	task = typedctx.WithCurrent[domain.CorrelationID](task)

	if _, err := scheduler.Spawn(s.executor, task); err != nil {
		s.fail(context.WithoutCancel(ctx), record, err)
		return nil, schedulerUnavailable(err)
	}

	s.logger.InfoContext(ctx, "task dispatched", slog.String("task_id", record.ID))

	return &record, nil
}

// runDispatch is the body of a dispatched task. It runs on an executor
// worker with the task's context attached.
func (s *TraceService) runDispatch(ctx context.Context, record domain.TaskRecord) domain.TaskRecord {
	if d, ok := domain.Deadlines.Current(); ok {
		var cancel context.CancelFunc

		ctx, cancel = d.Context(ctx)
		defer cancel()
	}

	done, err := Execute(ctx, s.pipeline, Operation[domain.TaskRecord, *domain.Echo, domain.TaskRecord, domain.TaskRecord]{
		Name: "dispatch",
		Validate: func(_ context.Context, rec domain.TaskRecord) error {
			if domain.CurrentTraceID() != rec.TraceID {
				return domain.NewPropagationLostError("trace_id", rec.TraceID.String(), domain.CurrentTraceID().String())
			}

			return domain.CheckDeadline("dispatch")
		},
		Perform: func(ctx context.Context, _ domain.TaskRecord) (*domain.Echo, error) {
			return s.client.Echo(ctx)
		},
		Verify: func(_ context.Context, rec domain.TaskRecord, echo *domain.Echo) (domain.TaskRecord, error) {
			if echo == nil {
				return rec, domain.NewUnavailableError("downstream", "empty response")
			}

			if echo.TraceID != rec.TraceID {
				return rec, domain.NewPropagationLostError("trace_id", rec.TraceID.String(), echo.TraceID.String())
			}

			if rec.CorrelationID != "" && echo.CorrelationID != rec.CorrelationID {
				return rec, domain.NewPropagationLostError("correlation_id",
					rec.CorrelationID.String(), echo.CorrelationID.String())
			}

			rec.Status = domain.TaskSucceeded
			rec.Echo = echo
			rec.UpdatedAt = s.now()

			return rec, nil
		},
		Archive: func(ctx context.Context, _ domain.TaskRecord, verified domain.TaskRecord) error {
			return s.journal.Put(ctx, verified)
		},
		Respond: func(_ context.Context, _ domain.TaskRecord, verified domain.TaskRecord) (domain.TaskRecord, error) {
			return verified, nil
		},
	}, record)
	if err != nil {
		return s.fail(context.WithoutCancel(ctx), record, err)
	}

	return done
}

// fail records record as failed with err.
func (s *TraceService) fail(ctx context.Context, record domain.TaskRecord, err error) domain.TaskRecord {
	record.Status = domain.TaskFailed
	record.Error = err.Error()
	record.UpdatedAt = s.now()

	if putErr := s.journal.Put(ctx, record); putErr != nil {
		s.logger.ErrorContext(ctx, "recording failed task",
			slog.String("task_id", record.ID),
			slog.Any("error", errors.Join(err, putErr)),
		)
	}

	return record
}

// Task returns the journal record with id.
func (s *TraceService) Task(ctx context.Context, id string) (*domain.TaskRecord, error) {
	record, err := s.journal.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}

	return record, nil
}

// Tasks lists up to limit journal records, newest first, after the record
// with id after. It reports whether more records follow.
func (s *TraceService) Tasks(ctx context.Context, after string, limit int) ([]domain.TaskRecord, bool, error) {
	records, err := s.journal.List(ctx, after, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("listing tasks: %w", err)
	}

	if len(records) > limit {
		return records[:limit], true, nil
	}

	return records, false, nil
}

func schedulerUnavailable(err error) error {
	return fmt.Errorf("spawning task: %w", domain.NewUnavailableError("scheduler", err.Error()))
}
