package typedctx

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used to report guards detached on the wrong
// goroutine. A nil logger restores slog.Default.
func SetLogger(logger *slog.Logger) {
	pkgLogger.Store(logger)
}

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}

	return slog.Default()
}

// Guard keeps an attached value current until Detach is called.
//
// Detach restores the value that was current when the guard was created.
// It runs at most once; further calls do nothing. Use it with defer so the
// restore happens on every exit path, panics included:
//
//	g := key.Attach(v)
//	defer g.Detach()
//
// A guard belongs to the goroutine that created it. Detaching from any other
// goroutine cannot reach the owner's slot, so the restore is skipped and a
// warning is logged.
type Guard struct {
	gid      uint64
	key      string
	restore  func()
	detached atomic.Bool
}

// Detach restores the previous value.
func (g *Guard) Detach() {
	if g == nil || g.restore == nil {
		return
	}

	if !g.detached.CompareAndSwap(false, true) {
		return
	}

	if gid := goid(); gid != g.gid {
		logger().Warn("typed context guard detached on foreign goroutine, restore skipped",
			slog.String("key", g.key),
			slog.Uint64("owner_goroutine", g.gid),
			slog.Uint64("goroutine", gid),
		)

		return
	}

	g.restore()
}

// Detached reports whether Detach has been called.
func (g *Guard) Detached() bool {
	return g.detached.Load()
}
