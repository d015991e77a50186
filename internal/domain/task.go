package domain

import "time"

// Echo is what a downstream service reports it received with a call.
type Echo struct {
	Service       string
	TraceID       TraceID
	CorrelationID CorrelationID
}

// TaskStatus is the lifecycle state of a background task.
type TaskStatus string

// Task statuses.
const (
	TaskPending   TaskStatus = "pending"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// TaskRecord is the journal entry of one background task.
type TaskRecord struct {
	ID            string
	TraceID       TraceID
	CorrelationID CorrelationID
	Status        TaskStatus
	Error         string
	Echo          *Echo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Done reports whether the task reached a final status.
func (r *TaskRecord) Done() bool {
	return r.Status == TaskSucceeded || r.Status == TaskFailed
}
