// Package typedctx attaches typed values to the current goroutine so code deep
// in a call chain can read them without threading an argument through every
// function. Typical values are a trace identifier, a deadline or a
// cancellation token.
//
// # Keys
//
// Every Go type owns exactly one slot. Declare it once, usually in a package
// var block:
//
//	type TraceID string
//
//	var TraceIDs = typedctx.Declare[TraceID](typedctx.WithName("trace_id"))
//
// Declaring the same type twice panics with ErrDuplicateKey.
//
// # Attach and Current
//
// Attach makes a value current until the returned guard is detached. Guards
// nest: detaching restores whatever was current before the attach.
//
//	g := TraceIDs.Attach("1234")
//	defer g.Detach()
//
//	id, ok := TraceIDs.Current() // "1234", true
//
// # Tasks
//
// The slot is goroutine-confined, so a value attached on one goroutine is not
// visible to work resumed elsewhere. A Task is a computation driven one step at
// a time by a host scheduler. The wrappers re-attach a value around every
// single step and detach it before control returns to the scheduler:
//
//	task := typedctx.WithCurrent[TraceID](typedctx.Func(makeRequest))
//	handle := scheduler.Spawn(exec, task)
//
// Propagation is explicit. A new goroutine or task only sees a value when the
// caller wraps it with With, WithOptional, WithCurrent, Bind or a Snapshot.
package typedctx
