package typedctx

import "time"

type traceID string

type deadline struct {
	name string
	at   time.Time
}

func deadlineAfter(name string, d time.Duration) deadline {
	return deadline{name: name, at: time.Now().Add(d)}
}

var (
	traceIDs  = Declare[traceID](WithName("trace_id"))
	deadlines = Declare[deadline](WithName("deadline"))
)
