package typedctx

import (
	goroutineid "github.com/petermattis/goid"
)

// goid returns the runtime id of the calling goroutine. Ids are never reused
// within a process.
func goid() uint64 {
	return uint64(goroutineid.Get()) //nolint:gosec // runtime ids are positive
}
