package typedctx

// Propagator is a key whose current value can be captured into a Snapshot.
// Every *Key[T] implements it.
type Propagator interface {
	Name() string
	capture() binding
}

type binding interface {
	attach() *Guard
}

type keyBinding[T any] struct {
	key   *Key[T]
	value T
}

func (b *keyBinding[T]) attach() *Guard {
	return b.key.attachRef(&b.value)
}

// Snapshot holds the values several keys had at capture time. Keys with
// nothing attached are left out, so attaching a snapshot never hides a value
// already current on the target goroutine.
type Snapshot struct {
	bindings []binding
}

// Capture records the current values of the given keys.
func Capture(keys ...Propagator) Snapshot {
	s := Snapshot{bindings: make([]binding, 0, len(keys))}

	for _, k := range keys {
		if b := k.capture(); b != nil {
			s.bindings = append(s.bindings, b)
		}
	}

	return s
}

// CaptureAll records the current values of every known key.
func CaptureAll() Snapshot {
	return Capture(Keys()...)
}

// Len reports how many values the snapshot carries.
func (s Snapshot) Len() int {
	return len(s.bindings)
}

// Attach makes the captured values current on this goroutine.
func (s Snapshot) Attach() *SnapshotGuard {
	guards := make([]*Guard, len(s.bindings))
	for i, b := range s.bindings {
		guards[i] = b.attach()
	}

	return &SnapshotGuard{guards: guards}
}

// Run calls fn with the captured values attached.
func (s Snapshot) Run(fn func()) {
	g := s.Attach()
	defer g.Detach()

	fn()
}

// Go runs fn on a new goroutine with the captured values attached.
func (s Snapshot) Go(fn func()) {
	go s.Run(fn)
}

// SnapshotGuard detaches the values of an attached Snapshot.
type SnapshotGuard struct {
	guards []*Guard
}

// Detach restores every key, most recently attached first.
func (g *SnapshotGuard) Detach() {
	for i := len(g.guards) - 1; i >= 0; i-- {
		g.guards[i].Detach()
	}
}
