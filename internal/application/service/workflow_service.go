package service

import (
	"context"
	"fmt"

	"github.com/approvalhq/workflow-service/internal/application/port"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
)

// WorkflowService manages the workflow configuration singleton
type WorkflowService interface {
	// GetOrder returns the configured role order, or the hard-coded default
	// when no configuration has ever been written. It never fails on absence.
	GetOrder(ctx context.Context) ([]entity.Role, error)

	// SetOrder replaces the configured order. Admin only; the new order must
	// be non-empty and contain only known roles. Requests created before the
	// change keep their snapshot.
	SetOrder(ctx context.Context, actor entity.Actor, order []entity.Role) (*entity.WorkflowConfig, error)
}

type workflowServiceImpl struct {
	configRepo port.ConfigRepository
	logger     Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(configRepo port.ConfigRepository, logger Logger) WorkflowService {
	return &workflowServiceImpl{
		configRepo: configRepo,
		logger:     logger,
	}
}

func (s *workflowServiceImpl) GetOrder(ctx context.Context) ([]entity.Role, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		s.logger.Error("Failed to read workflow configuration", "error", err)
		return nil, err
	}
	if cfg == nil || len(cfg.Order) == 0 {
		return entity.DefaultWorkflowOrder(), nil
	}
	return cfg.Order, nil
}

func (s *workflowServiceImpl) SetOrder(ctx context.Context, actor entity.Actor, order []entity.Role) (*entity.WorkflowConfig, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("only %s may update the workflow: %w", entity.RoleAdmin, workflow.ErrForbidden)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("workflow order must not be empty: %w", workflow.ErrInvalidArgument)
	}
	for _, role := range order {
		if !role.IsValid() {
			return nil, fmt.Errorf("unknown role %q in workflow order: %w", role, workflow.ErrInvalidArgument)
		}
	}

	cfg, err := s.configRepo.Upsert(ctx, order)
	if err != nil {
		s.logger.Error("Failed to update workflow configuration", "error", err, "actor", actor.Identity)
		return nil, err
	}

	s.logger.Info("Workflow configuration updated", "actor", actor.Identity, "stages", len(order))
	return cfg, nil
}
