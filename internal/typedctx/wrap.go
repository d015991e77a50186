package typedctx

import "context"

// wrapped carries an optional value next to a task and attaches it around
// each resumption step. The value is a field of the wrapper and only a borrow
// of that field ever reaches the slot, for exactly one step.
type wrapped[T, R any] struct {
	inner Task[R]
	key   *Key[T]
	value T

	done   bool
	result R
}

// With returns t carrying v: every resumption of t sees v as current.
func With[T, R any](t Task[R], v T) Task[R] {
	return &wrapped[T, R]{inner: t, key: For[T](), value: v}
}

// WithOptional is With when ok is true. Otherwise t is returned as is and
// resumes without touching the current value of T.
func WithOptional[T, R any](t Task[R], v T, ok bool) Task[R] {
	if !ok {
		return t
	}

	return With(t, v)
}

// WithCurrent carries the value of T current at wrap time. This is how a task
// spawned onto another goroutine inherits the spawner's context.
func WithCurrent[T, R any](t Task[R]) Task[R] {
	v, ok := Current[T]()
	return WithOptional(t, v, ok)
}

// Resume attaches the carried value, drives the inner task one step and
// detaches before returning, even if the step panics.
func (w *wrapped[T, R]) Resume(ctx context.Context) (R, bool) {
	if w.done {
		return w.result, true
	}

	g := w.key.attachRef(&w.value)
	defer g.Detach()

	result, done := w.inner.Resume(ctx)
	if done {
		w.done, w.result, w.inner = true, result, nil
	}

	return result, done
}

// Bind snapshots the current value of T and returns fn wrapped so that every
// call runs with that value attached. Calls may happen on any goroutine.
func Bind[T any](fn func()) func() {
	key := For[T]()

	v, ok := key.Current()
	if !ok {
		return fn
	}

	return func() {
		g := key.attachRef(&v)
		defer g.Detach()

		fn()
	}
}

// Go runs fn on a new goroutine with the current value of T attached.
func Go[T any](fn func()) {
	go Bind[T](fn)()
}
