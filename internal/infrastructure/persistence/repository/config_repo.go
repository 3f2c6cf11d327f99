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
	"github.com/approvalhq/workflow-service/internal/infrastructure/persistence/sqlite"
)

// The configuration is a singleton row; this fixed key enforces that.
const configSingletonID = 1

// ConfigRepository implements port.ConfigRepository on SQLite
type ConfigRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewConfigRepository creates a new workflow configuration repository
func NewConfigRepository(db *sqlite.DB, logger *zap.Logger) port.ConfigRepository {
	return &ConfigRepository{db: db, logger: logger}
}

// Get retrieves the workflow configuration singleton, returning (nil, nil)
// when it has never been written. Absence is a handled state, not an error.
func (r *ConfigRepository) Get(ctx context.Context) (*entity.WorkflowConfig, error) {
	query := `SELECT workflow_order, updated_at FROM workflow_config WHERE id = ?`

	var orderJSON string
	var cfg entity.WorkflowConfig

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, configSingletonID).Scan(&orderJSON, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow configuration", zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow config: %w", err)
	}

	if err := json.Unmarshal([]byte(orderJSON), &cfg.Order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow order: %w", err)
	}
	return &cfg, nil
}

// Upsert creates the singleton on first write and updates it in place
// afterwards, refreshing its timestamp
func (r *ConfigRepository) Upsert(ctx context.Context, order []entity.Role) (*entity.WorkflowConfig, error) {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow order: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO workflow_config (id, workflow_order, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workflow_order = excluded.workflow_order,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, configSingletonID, string(orderJSON), now); err != nil {
		r.logger.Error("Failed to upsert workflow configuration", zap.Error(err))
		return nil, fmt.Errorf("failed to upsert workflow config: %w", err)
	}

	return &entity.WorkflowConfig{Order: order, UpdatedAt: now}, nil
}

// Verify interface compliance
var _ port.ConfigRepository = (*ConfigRepository)(nil)
