package dto

import (
	"time"

	"github.com/jsamuelsen/go-typedctx/internal/app"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
)

// DefaultObserveSteps is the number of steps observed when none is requested.
const DefaultObserveSteps = 3

// TraceRequest holds the query parameters of GET /api/v1/trace.
type TraceRequest struct {
	// Steps is the number of resumptions of the observation task (1-64, default 3).
	Steps int `form:"steps" json:"steps" validate:"omitempty,gte=1,lte=64"`
}

// GetSteps returns the step count with the default applied.
func (r *TraceRequest) GetSteps() int {
	if r.Steps <= 0 {
		return DefaultObserveSteps
	}

	return r.Steps
}

// TaskRequest holds the path parameters of GET /api/v1/tasks/:id.
type TaskRequest struct {
	ID string `uri:"id" json:"id" validate:"required,uuid"`
}

// StepResponse is what one resumption of the observation task saw.
type StepResponse struct {
	Step          int    `json:"step"`
	Worker        int    `json:"worker"`
	TraceID       string `json:"traceId"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// TraceResponse compares the trace id seen by the handler with the ones
// seen by executor workers and fan-out goroutines.
type TraceResponse struct {
	TaskID         string         `json:"taskId"`
	HandlerTraceID string         `json:"handlerTraceId"`
	CorrelationID  string         `json:"correlationId,omitempty"`
	Steps          []StepResponse `json:"steps"`
	Workers        []int          `json:"workers"`
	FanOut         []string       `json:"fanOut"`
	Propagated     bool           `json:"propagated"`
}

// NewTraceResponse converts an observation to its response.
func NewTraceResponse(o *app.Observation) *TraceResponse {
	steps := make([]StepResponse, len(o.Steps))
	for i, s := range o.Steps {
		steps[i] = StepResponse{
			Step:          s.Step,
			Worker:        s.Worker,
			TraceID:       s.TraceID.String(),
			CorrelationID: s.CorrelationID.String(),
		}
	}

	fanOut := make([]string, len(o.FanOut))
	for i, id := range o.FanOut {
		fanOut[i] = id.String()
	}

	workers := o.Workers
	if workers == nil {
		workers = []int{}
	}

	return &TraceResponse{
		TaskID:         o.TaskID,
		HandlerTraceID: o.Handler.String(),
		CorrelationID:  o.CorrelationID.String(),
		Steps:          steps,
		Workers:        workers,
		FanOut:         fanOut,
		Propagated:     o.Propagated(),
	}
}

// EchoResponse reports the typed context a request arrived with. It is
// both what this service's echo endpoint returns and what it expects from
// the downstream service.
type EchoResponse struct {
	Service       string `json:"service"`
	TraceID       string `json:"traceId"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// NewEchoResponse converts a domain Echo to its response.
func NewEchoResponse(e *domain.Echo) *EchoResponse {
	return &EchoResponse{
		Service:       e.Service,
		TraceID:       e.TraceID.String(),
		CorrelationID: e.CorrelationID.String(),
	}
}

// TaskResponse is a background task record.
type TaskResponse struct {
	ID            string        `json:"id"`
	TraceID       string        `json:"traceId"`
	CorrelationID string        `json:"correlationId,omitempty"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	Echo          *EchoResponse `json:"echo,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewTaskResponse converts a task record to its response.
func NewTaskResponse(r *domain.TaskRecord) *TaskResponse {
	resp := &TaskResponse{
		ID:            r.ID,
		TraceID:       r.TraceID.String(),
		CorrelationID: r.CorrelationID.String(),
		Status:        string(r.Status),
		Error:         r.Error,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if r.Echo != nil {
		resp.Echo = NewEchoResponse(r.Echo)
	}

	return resp
}

// NewTaskListResponse converts a page of task records to its response. The
// cursor carries the id of the last record.
func NewTaskListResponse(records []domain.TaskRecord, hasMore bool) *PaginatedResponse[*TaskResponse] {
	items := make([]*TaskResponse, len(records))
	for i := range records {
		items[i] = NewTaskResponse(&records[i])
	}

	return NewPaginatedResponse(items, hasMore, func(t *TaskResponse) Cursor {
		return Cursor{ID: t.ID, CreatedAt: t.CreatedAt}
	})
}
