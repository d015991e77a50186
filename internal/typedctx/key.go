package typedctx

import (
	"sync/atomic"
)

// Cloner is implemented by context types whose plain Go copy would share
// mutable state. Current returns Clone() instead of the raw copy.
type Cloner[T any] interface {
	Clone() T
}

// Key is the single slot for context type T. Obtain it with Declare or For.
type Key[T any] struct {
	name     atomic.Pointer[string]
	slot     slot[T]
	declared atomic.Bool
}

func newKey[T any](name string) *Key[T] {
	k := &Key[T]{}
	k.name.Store(&name)

	return k
}

// Name identifies the key in logs.
func (k *Key[T]) Name() string {
	return *k.name.Load()
}

// Current returns a copy of the value attached on this goroutine.
// ok is false when nothing is attached.
func (k *Key[T]) Current() (value T, ok bool) {
	h := k.slot.read(goid())
	if !h.present {
		return value, false
	}

	return cloneValue(h.value()), true
}

// Attach makes v current on this goroutine until the guard is detached.
func (k *Key[T]) Attach(v T) *Guard {
	return k.attach(ownedHolding(v))
}

// attachRef makes *p current without copying it. The caller must detach the
// guard before *p is modified or goes out of use; only the task wrappers and
// Bind call it, and they own the value the pointer refers to.
func (k *Key[T]) attachRef(p *T) *Guard {
	return k.attach(borrowedHolding(p))
}

func (k *Key[T]) attach(h holding[T]) *Guard {
	gid := goid()
	prev := k.slot.swap(gid, h)

	return &Guard{
		gid: gid,
		key: k.Name(),
		restore: func() {
			k.slot.swap(gid, prev)
		},
	}
}

// capture implements Propagator.
func (k *Key[T]) capture() binding {
	v, ok := k.Current()
	if !ok {
		return nil
	}

	return &keyBinding[T]{key: k, value: v}
}

func cloneValue[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}

	return v
}

// Current returns the value of type T attached on this goroutine.
func Current[T any]() (T, bool) {
	return For[T]().Current()
}

// Attach makes v the current value of type T on this goroutine.
func Attach[T any](v T) *Guard {
	return For[T]().Attach(v)
}
