package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/application/port"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
	"github.com/approvalhq/workflow-service/internal/infrastructure/persistence/sqlite"
)

// RequestRepository implements port.RequestRepository on SQLite
type RequestRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sqlite.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{db: db, logger: logger}
}

const requestColumns = `id, title, description, requester, status, current_stage,
		workflow_snapshot, created_at, updated_at`

// Create inserts a new approval request and backfills its assigned ID
func (r *RequestRepository) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	snapshot, err := json.Marshal(req.WorkflowSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow snapshot: %w", err)
	}

	query := `
		INSERT INTO approval_requests (
			title, description, requester, status, current_stage,
			workflow_snapshot, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.Title,
		req.Description,
		req.Requester,
		req.Status.String(),
		req.CurrentStage,
		string(snapshot),
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	return nil
}

// GetByID retrieves a request by ID, returning (nil, nil) when absent
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE id = ?`

	req, err := scanRequest(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// UpdateState conditionally moves a request to a new status and stage. The
// WHERE clause keys on the expected prior state, so a concurrent action that
// already advanced or finalized the request makes this update match zero
// rows and fail with workflow.ErrConflict instead of double-applying.
func (r *RequestRepository) UpdateState(ctx context.Context, id int64,
	status entity.Status, stage int,
	expectedStatus entity.Status, expectedStage int,
	updatedAt time.Time) error {

	query := `
		UPDATE approval_requests
		SET status = ?, current_stage = ?, updated_at = ?
		WHERE id = ? AND status = ? AND current_stage = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		status.String(), stage, updatedAt,
		id, expectedStatus.String(), expectedStage,
	)
	if err != nil {
		r.logger.Error("Failed to update request state", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update request state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %d was modified concurrently: %w", id, workflow.ErrConflict)
	}
	return nil
}

// ListByRequester retrieves a requester's requests, newest first
func (r *RequestRepository) ListByRequester(ctx context.Context, identity string) ([]*entity.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE requester = ?
		ORDER BY created_at DESC, id DESC`

	return r.queryRequests(ctx, query, identity)
}

// ListByStatus retrieves all requests in a given status, newest first
func (r *RequestRepository) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE status = ?
		ORDER BY created_at DESC, id DESC`

	return r.queryRequests(ctx, query, status.String())
}

// ListAll retrieves every request, newest first
func (r *RequestRepository) ListAll(ctx context.Context) ([]*entity.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM approval_requests
		ORDER BY created_at DESC, id DESC`

	return r.queryRequests(ctx, query)
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*entity.ApprovalRequest, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.ApprovalRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.ApprovalRequest, error) {
	var req entity.ApprovalRequest
	var status string
	var snapshot string

	err := row.Scan(
		&req.ID,
		&req.Title,
		&req.Description,
		&req.Requester,
		&status,
		&req.CurrentStage,
		&snapshot,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = entity.Status(status)
	if err := json.Unmarshal([]byte(snapshot), &req.WorkflowSnapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow snapshot: %w", err)
	}
	return &req, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
