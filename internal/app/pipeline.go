package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/go-typedctx/internal/platform/logging"
)

// Transactional pipeline: Validate → Perform → Verify → Archive → Respond
//
// Background tasks that call a downstream service run through this pipeline
// so that nothing is archived until the downstream result has been checked.
// For dispatched tasks that check is the propagation check: the downstream
// service must report the trace id the task had attached when it called.
//
//  1. VALIDATE  - Required context is attached and the deadline has not passed
//  2. PERFORM   - Call the downstream service
//  3. VERIFY    - Compare what the downstream service saw with what was sent
//  4. ARCHIVE   - Persist the verified result
//  5. RESPOND   - Return the archived result
//
// Steps run on the calling goroutine, so typed context attached there is
// visible to every step and to the logger.

// Stage names a step of the pipeline.
type Stage string

// Pipeline stages.
const (
	StageValidate Stage = "validate"
	StagePerform  Stage = "perform"
	StageVerify   Stage = "verify"
	StageArchive  Stage = "archive"
	StageRespond  Stage = "respond"
)

// StageError wraps errors with the stage where they occurred.
type StageError struct {
	Stage   Stage
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Cause
}

func stageError(stage Stage, message string, cause error) error {
	return &StageError{Stage: stage, Message: message, Cause: cause}
}

// Pipeline runs operations stage by stage and logs each transition.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a pipeline that logs to logger.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{logger: logger}
}

// Operation defines the functions for each stage. Nil stages are skipped.
type Operation[I, P, V, O any] struct {
	// Name identifies this operation for logging.
	Name string

	// Validate checks inputs and preconditions.
	Validate func(ctx context.Context, input I) error

	// Perform executes the main operation.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify confirms the operation succeeded.
	// Never trust Perform's return value - always verify independently.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive persists the verified state.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond transforms the result for the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// run executes one stage, logging its start and outcome.
func run[T any](ctx context.Context, logger *slog.Logger, stage Stage, level slog.Level, fn func() (T, error)) (T, error) {
	logger.Log(ctx, logging.LevelTrace, "stage started", slog.String("stage", string(stage)))

	out, err := fn()
	if err != nil {
		logger.Log(ctx, level, "stage failed",
			slog.String("stage", string(stage)),
			slog.Any("error", err),
		)

		var zero T

		return zero, err
	}

	logger.DebugContext(ctx, "stage passed", slog.String("stage", string(stage)))

	return out, nil
}

// Execute runs an operation through every stage.
func Execute[I, P, V, O any](ctx context.Context, p *Pipeline, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	logger := p.logger.With(slog.String("operation", op.Name))
	start := time.Now()

	_, err := run(ctx, logger, StageValidate, slog.LevelWarn, func() (struct{}, error) {
		if op.Validate == nil {
			return struct{}{}, nil
		}

		if err := op.Validate(ctx, input); err != nil {
			return struct{}{}, stageError(StageValidate, "input validation failed", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return zero, err
	}

	performed, err := run(ctx, logger, StagePerform, slog.LevelError, func() (P, error) {
		if op.Perform == nil {
			var none P
			return none, nil
		}

		out, err := op.Perform(ctx, input)
		if err != nil {
			return out, stageError(StagePerform, "operation failed", err)
		}

		return out, nil
	})
	if err != nil {
		return zero, err
	}

	verified, err := run(ctx, logger, StageVerify, slog.LevelError, func() (V, error) {
		if op.Verify == nil {
			var none V
			return none, nil
		}

		out, err := op.Verify(ctx, input, performed)
		if err != nil {
			return out, stageError(StageVerify, "verification failed", err)
		}

		return out, nil
	})
	if err != nil {
		return zero, err
	}

	_, err = run(ctx, logger, StageArchive, slog.LevelError, func() (struct{}, error) {
		if op.Archive == nil {
			return struct{}{}, nil
		}

		if err := op.Archive(ctx, input, verified); err != nil {
			return struct{}{}, stageError(StageArchive, "state persistence failed", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return zero, err
	}

	result, err := run(ctx, logger, StageRespond, slog.LevelWarn, func() (O, error) {
		if op.Respond == nil {
			return zero, nil
		}

		return op.Respond(ctx, input, verified)
	})
	if err != nil {
		return zero, err
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// FailedStage extracts the stage from a pipeline error.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}

	return "", false
}
