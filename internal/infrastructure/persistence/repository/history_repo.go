package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/application/port"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository on SQLite
type HistoryRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlite.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Create appends a history record and backfills its assigned ID
func (r *HistoryRepository) Create(ctx context.Context, record *entity.HistoryRecord) error {
	query := `
		INSERT INTO approval_history (
			request_id, stage, role, action, comment, actor, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var comment sql.NullString
	if record.Comment != "" {
		comment = sql.NullString{String: record.Comment, Valid: true}
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.RequestID,
		record.Stage,
		record.Role.String(),
		record.Action.String(),
		comment,
		record.Actor,
		record.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetByRequestID retrieves all history records for a request in timeline
// order. The id tiebreaker keeps same-timestamp records in append order.
func (r *HistoryRepository) GetByRequestID(ctx context.Context, requestID int64) ([]*entity.HistoryRecord, error) {
	query := `
		SELECT id, request_id, stage, role, action, comment, actor, timestamp
		FROM approval_history
		WHERE request_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to get history by request ID", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.HistoryRecord
	for rows.Next() {
		var record entity.HistoryRecord
		var role, action string
		var comment sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.Stage,
			&role,
			&action,
			&comment,
			&record.Actor,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		record.Role = entity.Role(role)
		record.Action = entity.Action(action)
		if comment.Valid {
			record.Comment = comment.String
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
