package port

import (
	"context"
	"time"

	"github.com/approvalhq/workflow-service/internal/domain/entity"
)

// RequestRepository defines persistence operations for ApprovalRequest
type RequestRepository interface {
	Create(ctx context.Context, req *entity.ApprovalRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ApprovalRequest, error)

	// UpdateState conditionally moves a request to a new status and stage.
	// The update only applies when the stored status and stage still match
	// the expected prior values; otherwise it fails with workflow.ErrConflict
	// so a concurrent action on the same request cannot double-apply.
	UpdateState(ctx context.Context, id int64,
		status entity.Status, stage int,
		expectedStatus entity.Status, expectedStage int,
		updatedAt time.Time) error

	ListByRequester(ctx context.Context, identity string) ([]*entity.ApprovalRequest, error)
	ListByStatus(ctx context.Context, status entity.Status) ([]*entity.ApprovalRequest, error)
	ListAll(ctx context.Context) ([]*entity.ApprovalRequest, error)
}

// HistoryRepository defines persistence operations for HistoryRecord
type HistoryRepository interface {
	Create(ctx context.Context, record *entity.HistoryRecord) error
	GetByRequestID(ctx context.Context, requestID int64) ([]*entity.HistoryRecord, error)
}

// ConfigRepository defines persistence operations for the workflow
// configuration singleton. Get returns (nil, nil) when no configuration
// has ever been written.
type ConfigRepository interface {
	Get(ctx context.Context) (*entity.WorkflowConfig, error)
	Upsert(ctx context.Context, order []entity.Role) (*entity.WorkflowConfig, error)
}

// TransactionManager executes a function within a database transaction.
// Repository calls made with the context passed to fn join the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
