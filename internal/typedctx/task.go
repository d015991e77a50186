package typedctx

import (
	"context"
	"runtime"
)

// Task is a computation driven one step at a time. Each call to Resume is one
// resumption step: it runs until the computation completes or has to wait,
// and reports which. Once done is true the task must not be resumed again.
//
// Resume is never called concurrently for the same task.
type Task[R any] interface {
	Resume(ctx context.Context) (result R, done bool)
}

// TaskFunc adapts a step function to Task.
type TaskFunc[R any] func(ctx context.Context) (R, bool)

// Resume calls f.
func (f TaskFunc[R]) Resume(ctx context.Context) (R, bool) {
	return f(ctx)
}

// Func returns fn as a Task.
func Func[R any](fn func(ctx context.Context) (R, bool)) Task[R] {
	return TaskFunc[R](fn)
}

// Ready returns a task that completes in a single step with fn's result.
func Ready[R any](fn func(ctx context.Context) R) Task[R] {
	return TaskFunc[R](func(ctx context.Context) (R, bool) {
		return fn(ctx), true
	})
}

// Steps returns a task that runs fns in order, one per resumption, and
// completes with the last function's result.
func Steps[R any](fns ...func(ctx context.Context) R) Task[R] {
	next := 0

	return TaskFunc[R](func(ctx context.Context) (R, bool) {
		var result R

		if next < len(fns) {
			result = fns[next](ctx)
			next++
		}

		return result, next >= len(fns)
	})
}

// Drive resumes t on the calling goroutine until it completes or ctx ends,
// yielding the processor between steps.
func Drive[R any](ctx context.Context, t Task[R]) (R, error) {
	for {
		if err := ctx.Err(); err != nil {
			var zero R
			return zero, err
		}

		if result, done := t.Resume(ctx); done {
			return result, nil
		}

		runtime.Gosched()
	}
}
