package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/application/service"
	"github.com/approvalhq/workflow-service/internal/auth"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	approvalService service.ApprovalService
	workflowService service.WorkflowService
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	approvalService service.ApprovalService,
	workflowService service.WorkflowService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		approvalService: approvalService,
		workflowService: workflowService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateRequestPayload is the body of POST /api/requests
type CreateRequestPayload struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// ActionPayload is the body of POST /api/requests/:id/action
type ActionPayload struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// WorkflowPayload is the body of PUT /api/workflow
type WorkflowPayload struct {
	WorkflowOrder []string `json:"workflow_order" binding:"required"`
}

// WorkflowResponse mirrors the original API's workflow shape
type WorkflowResponse struct {
	WorkflowOrder []entity.Role `json:"workflow_order"`
}

// Root handles GET /
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Approval Workflow API",
		"status":  "running",
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"status": "healthy", "service": "approval-workflow"},
	})
}

// CreateRequest handles POST /api/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	req, err := h.approvalService.Create(c.Request.Context(), actor, payload.Title, payload.Description)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: req})
}

// ListMyRequests handles GET /api/requests/my-requests
func (h *Handlers) ListMyRequests(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	requests, err := h.approvalService.ListOwn(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// ListPendingForRole handles GET /api/requests/pending/:role
func (h *Handlers) ListPendingForRole(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	role, ok := entity.ParseRole(c.Param("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown role"})
		return
	}

	requests, err := h.approvalService.ListPendingForRole(c.Request.Context(), actor, role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requests})
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request id"})
		return
	}

	detail, err := h.approvalService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// PerformAction handles POST /api/requests/:id/action
func (h *Handlers) PerformAction(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request id"})
		return
	}

	var payload ActionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	action := entity.Action(payload.Action)
	if err := h.approvalService.PerformAction(c.Request.Context(), actor, id, action, payload.Comment); err != nil {
		h.writeError(c, err)
		return
	}

	message := "request approved"
	if action == entity.ActionReject {
		message = "request rejected"
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"message": message}})
}

// GetWorkflow handles GET /api/workflow
func (h *Handlers) GetWorkflow(c *gin.Context) {
	order, err := h.workflowService.GetOrder(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: WorkflowResponse{WorkflowOrder: order}})
}

// UpdateWorkflow handles PUT /api/workflow
func (h *Handlers) UpdateWorkflow(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	var payload WorkflowPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	// Canonicalize known spellings; unknown entries are passed through so
	// the service rejects them with a precise error.
	order := make([]entity.Role, 0, len(payload.WorkflowOrder))
	for _, s := range payload.WorkflowOrder {
		if role, ok := entity.ParseRole(s); ok {
			order = append(order, role)
		} else {
			order = append(order, entity.Role(s))
		}
	}

	cfg, err := h.workflowService.SetOrder(c.Request.Context(), actor, order)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: cfg})
}

// Dashboard handles GET /api/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	summary, err := h.approvalService.Dashboard(c.Request.Context(), actor)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

func (h *Handlers) unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "not authenticated"})
}

// writeError maps the engine's tagged errors to HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrConflict):
		// Retryable: the client should re-fetch the request and re-attempt.
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
