package service

import (
	"context"
	"fmt"
	"time"

	"github.com/approvalhq/workflow-service/internal/application/port"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RequestDetail is a request together with its full ordered action history
type RequestDetail struct {
	Request *entity.ApprovalRequest `json:"request"`
	History []*entity.HistoryRecord `json:"history"`
}

// DashboardSummary aggregates all requests for the read-side dashboard
type DashboardSummary struct {
	Total    int                       `json:"total"`
	Pending  int                       `json:"pending"`
	Approved int                       `json:"approved"`
	Rejected int                       `json:"rejected"`
	Requests []*entity.ApprovalRequest `json:"requests"`
}

// ApprovalService is the approval engine: it validates an actor's authority
// to act, applies approve/reject transitions and writes the resulting state
// and history as one atomic unit. It holds no mutable state of its own, so
// calls may run concurrently; per-request atomicity comes from the
// conditional update in the persistence layer.
type ApprovalService interface {
	Create(ctx context.Context, actor entity.Actor, title, description string) (*entity.ApprovalRequest, error)
	ListOwn(ctx context.Context, actor entity.Actor) ([]*entity.ApprovalRequest, error)
	ListPendingForRole(ctx context.Context, actor entity.Actor, role entity.Role) ([]*entity.ApprovalRequest, error)
	Get(ctx context.Context, actor entity.Actor, id int64) (*RequestDetail, error)
	PerformAction(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error
	Dashboard(ctx context.Context, actor entity.Actor) (*DashboardSummary, error)
}

type approvalServiceImpl struct {
	requestRepo port.RequestRepository
	historyRepo port.HistoryRepository
	configRepo  port.ConfigRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	requestRepo port.RequestRepository,
	historyRepo port.HistoryRepository,
	configRepo port.ConfigRepository,
	txManager port.TransactionManager,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		configRepo:  configRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create submits a new request on behalf of an L1 requester. The current
// workflow order is snapshotted into the request so later configuration
// changes cannot affect it.
func (s *approvalServiceImpl) Create(ctx context.Context, actor entity.Actor, title, description string) (*entity.ApprovalRequest, error) {
	if actor.Role != entity.RoleL1 {
		return nil, fmt.Errorf("only %s may create requests: %w", entity.RoleL1, workflow.ErrForbidden)
	}

	order, err := s.resolveOrder(ctx)
	if err != nil {
		return nil, err
	}

	status, stage := workflow.InitialState(order, actor.Role)

	now := time.Now().UTC()
	req := &entity.ApprovalRequest{
		Title:            title,
		Description:      description,
		Requester:        actor.Identity,
		Status:           status,
		CurrentStage:     stage,
		WorkflowSnapshot: order,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		record := &entity.HistoryRecord{
			RequestID: req.ID,
			Stage:     0,
			Role:      actor.Role,
			Action:    entity.ActionCreated,
			Actor:     actor.Identity,
			Timestamp: now,
		}
		if err := s.historyRepo.Create(txCtx, record); err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create request", "error", err, "requester", actor.Identity)
		return nil, err
	}

	s.logger.Info("Request created",
		"id", req.ID,
		"requester", actor.Identity,
		"status", req.Status.String(),
		"stage", req.CurrentStage)
	return req, nil
}

// ListOwn returns the requester's own requests, newest first
func (s *approvalServiceImpl) ListOwn(ctx context.Context, actor entity.Actor) ([]*entity.ApprovalRequest, error) {
	if actor.Role != entity.RoleL1 {
		return nil, fmt.Errorf("only %s may list own requests: %w", entity.RoleL1, workflow.ErrForbidden)
	}

	requests, err := s.requestRepo.ListByRequester(ctx, actor.Identity)
	if err != nil {
		s.logger.Error("Failed to list own requests", "error", err, "requester", actor.Identity)
		return nil, err
	}
	return requests, nil
}

// ListPendingForRole returns pending requests currently waiting on the given
// role. Callers may only read their own queue.
func (s *approvalServiceImpl) ListPendingForRole(ctx context.Context, actor entity.Actor, role entity.Role) ([]*entity.ApprovalRequest, error) {
	if !actor.Role.IsApprover() || !actor.Role.Equals(role) {
		return nil, fmt.Errorf("queue %s is not readable by %s: %w", role, actor.Role, workflow.ErrForbidden)
	}

	pending, err := s.requestRepo.ListByStatus(ctx, entity.StatusPending)
	if err != nil {
		s.logger.Error("Failed to list pending requests", "error", err, "role", role.String())
		return nil, err
	}

	// Out-of-range stages are skipped defensively; StageRole reports them.
	queue := make([]*entity.ApprovalRequest, 0, len(pending))
	for _, req := range pending {
		if stageRole, ok := req.StageRole(); ok && stageRole.Equals(role) {
			queue = append(queue, req)
		}
	}
	return queue, nil
}

// Get returns a request with its ordered history. L1 callers may only view
// their own requests; other roles may view any.
func (s *approvalServiceImpl) Get(ctx context.Context, actor entity.Actor, id int64) (*RequestDetail, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get request", "error", err, "id", id)
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", id, workflow.ErrNotFound)
	}

	if actor.Role == entity.RoleL1 && req.Requester != actor.Identity {
		return nil, fmt.Errorf("request %d belongs to another requester: %w", id, workflow.ErrForbidden)
	}

	history, err := s.historyRepo.GetByRequestID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get request history", "error", err, "id", id)
		return nil, err
	}

	return &RequestDetail{Request: req, History: history}, nil
}

// PerformAction applies an approve or reject action to a request. The read,
// the turn check, the history append and the conditional state update all
// run inside one transaction; losing a race against another action on the
// same request surfaces as workflow.ErrConflict, which the caller may retry
// after re-fetching.
func (s *approvalServiceImpl) PerformAction(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error {
	if !actor.Role.IsApprover() {
		return fmt.Errorf("role %s may not approve or reject: %w", actor.Role, workflow.ErrForbidden)
	}
	if !action.IsValid() {
		return fmt.Errorf("unknown action %q: %w", action, workflow.ErrInvalidArgument)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("request %d: %w", id, workflow.ErrNotFound)
		}

		if !workflow.IsTurn(req, actor.Role) {
			return fmt.Errorf("not your turn: %w", workflow.ErrForbidden)
		}

		now := time.Now().UTC()

		// History records the stage at the time of the action, never the
		// post-transition stage.
		record := &entity.HistoryRecord{
			RequestID: id,
			Stage:     req.CurrentStage,
			Role:      actor.Role,
			Action:    action,
			Comment:   comment,
			Actor:     actor.Identity,
			Timestamp: now,
		}
		if err := s.historyRepo.Create(txCtx, record); err != nil {
			return fmt.Errorf("create history: %w", err)
		}

		newStatus, newStage, err := workflow.Transition(action, req.CurrentStage, len(req.WorkflowSnapshot))
		if err != nil {
			return err
		}

		return s.requestRepo.UpdateState(txCtx, id,
			newStatus, newStage,
			req.Status, req.CurrentStage,
			now)
	})
	if err != nil {
		s.logger.Error("Failed to perform action",
			"error", err, "id", id, "action", action.String(), "actor", actor.Identity)
		return err
	}

	s.logger.Info("Action applied",
		"id", id, "action", action.String(), "role", actor.Role.String(), "actor", actor.Identity)
	return nil
}

// Dashboard returns totals partitioned by status plus the full request list,
// newest first. Restricted to L0 and admin.
func (s *approvalServiceImpl) Dashboard(ctx context.Context, actor entity.Actor) (*DashboardSummary, error) {
	if actor.Role != entity.RoleL0 && actor.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("dashboard is not readable by %s: %w", actor.Role, workflow.ErrForbidden)
	}

	requests, err := s.requestRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list requests for dashboard", "error", err)
		return nil, err
	}

	summary := &DashboardSummary{
		Total:    len(requests),
		Requests: requests,
	}
	for _, req := range requests {
		switch req.Status {
		case entity.StatusPending:
			summary.Pending++
		case entity.StatusApproved:
			summary.Approved++
		case entity.StatusRejected:
			summary.Rejected++
		}
	}
	return summary, nil
}

// resolveOrder reads the configured workflow order, falling back to the
// default when nothing has ever been configured.
func (s *approvalServiceImpl) resolveOrder(ctx context.Context) ([]entity.Role, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		s.logger.Error("Failed to read workflow configuration", "error", err)
		return nil, err
	}
	if cfg == nil || len(cfg.Order) == 0 {
		return entity.DefaultWorkflowOrder(), nil
	}

	order := make([]entity.Role, len(cfg.Order))
	copy(order, cfg.Order)
	return order, nil
}
