package typedctx

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// registry holds the one key each context type is allowed to have.
var registry = struct {
	mu   sync.RWMutex
	keys map[reflect.Type]Propagator
}{
	keys: make(map[reflect.Type]Propagator),
}

// KeyOption configures a key at declaration.
type KeyOption func(*keyOptions)

type keyOptions struct {
	name string
}

// WithName sets the name the key reports in logs. Defaults to the Go type name.
func WithName(name string) KeyOption {
	return func(o *keyOptions) { o.name = name }
}

// Declare registers the key for T and returns it. It panics with
// ErrDuplicateKey when T was already declared: two slots for one type would
// break restore ordering for that type.
func Declare[T any](opts ...KeyOption) *Key[T] {
	k := For[T]()

	if !k.declared.CompareAndSwap(false, true) {
		panic(fmt.Errorf("%w: %s", ErrDuplicateKey, k.Name()))
	}

	var o keyOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.name != "" {
		k.name.Store(&o.name)
	}

	return k
}

// For returns the key for T, creating an undeclared one on first use.
func For[T any]() *Key[T] {
	t := reflect.TypeFor[T]()

	registry.mu.RLock()
	p, ok := registry.keys[t]
	registry.mu.RUnlock()

	if ok {
		return p.(*Key[T]) //nolint:forcetypeassert // keys are stored by their own type
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if p, ok := registry.keys[t]; ok {
		return p.(*Key[T]) //nolint:forcetypeassert // keys are stored by their own type
	}

	k := newKey[T](t.String())
	registry.keys[t] = k

	return k
}

// Keys returns every key created so far, sorted by name.
func Keys() []Propagator {
	registry.mu.RLock()
	keys := make([]Propagator, 0, len(registry.keys))

	for _, k := range registry.keys {
		keys = append(keys, k)
	}
	registry.mu.RUnlock()

	slices.SortFunc(keys, func(a, b Propagator) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return keys
}
