package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-typedctx/internal/adapters/http/dto"
	"github.com/jsamuelsen/go-typedctx/internal/app"
	"github.com/jsamuelsen/go-typedctx/internal/domain"
)

// TraceHandler handles the trace, outbound, task and echo endpoints.
//
// Handlers run on the goroutine the middleware attached the trace id,
// correlation id and deadline to, so none of them reads those values from
// the request directly.
type TraceHandler struct {
	service     *app.TraceService
	serviceName string
}

// NewTraceHandler creates a new trace handler. serviceName is reported by
// the echo endpoint.
func NewTraceHandler(service *app.TraceService, serviceName string) *TraceHandler {
	return &TraceHandler{
		service:     service,
		serviceName: serviceName,
	}
}

// GetTrace handles GET /api/v1/trace
// Reports the trace id seen by the handler next to the ones seen by a task
// resumed on executor workers and by a goroutine fan-out.
//
// @Summary Observe trace id propagation
// @Tags trace
// @Produce json
// @Param steps query int false "Resumptions of the observation task (1-64)"
// @Success 200 {object} dto.TraceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/trace [get]
func (h *TraceHandler) GetTrace(c *gin.Context) {
	var req dto.TraceRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	obs, err := h.service.Observe(c.Request.Context(), req.GetSteps())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTraceResponse(obs))
}

// Dispatch handles POST /api/v1/outbound
// Spawns a background task that calls the downstream service with the
// request's trace id. Returns immediately with the pending task record.
//
// @Summary Dispatch a background downstream call
// @Tags trace
// @Produce json
// @Success 202 {object} dto.TaskResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/outbound [post]
func (h *TraceHandler) Dispatch(c *gin.Context) {
	record, err := h.service.Dispatch(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/tasks/"+record.ID)
	c.JSON(http.StatusAccepted, dto.NewTaskResponse(record))
}

// ListTasks handles GET /api/v1/tasks
// Lists background task records, newest first.
//
// @Summary List background tasks
// @Tags tasks
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.TaskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/tasks [get]
func (h *TraceHandler) ListTasks(c *gin.Context) {
	var req dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	after, err := req.After()
	if err != nil {
		respondBindError(c, err)
		return
	}

	records, hasMore, err := h.service.Tasks(c.Request.Context(), after, req.GetLimit())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTaskListResponse(records, hasMore))
}

// GetTask handles GET /api/v1/tasks/:id
//
// @Summary Get a background task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/tasks/{id} [get]
func (h *TraceHandler) GetTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := dto.BindURIAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.service.Task(c.Request.Context(), req.ID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTaskResponse(record))
}

// Echo handles GET /api/v1/echo
// Reports the trace and correlation ids this request arrived with. Another
// instance of the service uses it as its downstream.
//
// @Summary Echo the received trace context
// @Tags trace
// @Produce json
// @Success 200 {object} dto.EchoResponse
// @Router /api/v1/echo [get]
func (h *TraceHandler) Echo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewEchoResponse(&domain.Echo{
		Service:       h.serviceName,
		TraceID:       domain.CurrentTraceID(),
		CorrelationID: domain.CurrentCorrelationID(),
	}))
}

// RegisterTraceRoutes registers the trace routes on the given router group.
func (h *TraceHandler) RegisterTraceRoutes(rg *gin.RouterGroup) {
	rg.GET("/trace", h.GetTrace)
	rg.POST("/outbound", h.Dispatch)
	rg.GET("/echo", h.Echo)

	tasks := rg.Group("/tasks")
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
}

// respondBindError writes a 400 for a request that failed binding or validation.
func respondBindError(c *gin.Context, err error) {
	switch {
	case dto.IsValidationError(err):
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
	case errors.Is(err, dto.ErrInvalidCursor):
		dto.RespondWithValidationErrors(c, map[string]string{"cursor": dto.ErrInvalidCursor.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrorCodeBadRequest, err.Error()).WithTraceID(dto.GetTraceID(c)))
	}
}
