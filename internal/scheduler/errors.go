package scheduler

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrExecutorStopped is returned when spawning onto, or awaiting a task
	// abandoned by, an executor that is not running.
	ErrExecutorStopped = errors.New("executor stopped")

	// ErrQueueFull is returned by Spawn when the run queue is at capacity.
	ErrQueueFull = errors.New("run queue full")

	// ErrTaskCancelled completes a task that was cancelled before finishing.
	ErrTaskCancelled = errors.New("task cancelled")

	// ErrTaskPanicked completes a task whose step panicked.
	ErrTaskPanicked = errors.New("task panicked")
)

// TaskError wraps the reason a task ended without a result.
type TaskError struct {
	TaskID string
	Err    error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.TaskID, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TaskError) Unwrap() error {
	return e.Err
}
