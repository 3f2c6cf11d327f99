package service

import (
	"context"
	"time"

	"github.com/approvalhq/workflow-service/internal/domain/entity"
)

// Function-field mocks for the port interfaces

type mockRequestRepo struct {
	createFunc          func(ctx context.Context, req *entity.ApprovalRequest) error
	getByIDFunc         func(ctx context.Context, id int64) (*entity.ApprovalRequest, error)
	updateStateFunc     func(ctx context.Context, id int64, status entity.Status, stage int, expectedStatus entity.Status, expectedStage int, updatedAt time.Time) error
	listByRequesterFunc func(ctx context.Context, identity string) ([]*entity.ApprovalRequest, error)
	listByStatusFunc    func(ctx context.Context, status entity.Status) ([]*entity.ApprovalRequest, error)
	listAllFunc         func(ctx context.Context) ([]*entity.ApprovalRequest, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	req.ID = 1
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id int64) (*entity.ApprovalRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRequestRepo) UpdateState(ctx context.Context, id int64, status entity.Status, stage int, expectedStatus entity.Status, expectedStage int, updatedAt time.Time) error {
	if m.updateStateFunc != nil {
		return m.updateStateFunc(ctx, id, status, stage, expectedStatus, expectedStage, updatedAt)
	}
	return nil
}

func (m *mockRequestRepo) ListByRequester(ctx context.Context, identity string) ([]*entity.ApprovalRequest, error) {
	if m.listByRequesterFunc != nil {
		return m.listByRequesterFunc(ctx, identity)
	}
	return []*entity.ApprovalRequest{}, nil
}

func (m *mockRequestRepo) ListByStatus(ctx context.Context, status entity.Status) ([]*entity.ApprovalRequest, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, status)
	}
	return []*entity.ApprovalRequest{}, nil
}

func (m *mockRequestRepo) ListAll(ctx context.Context) ([]*entity.ApprovalRequest, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return []*entity.ApprovalRequest{}, nil
}

type mockHistoryRepo struct {
	createFunc         func(ctx context.Context, record *entity.HistoryRecord) error
	getByRequestIDFunc func(ctx context.Context, requestID int64) ([]*entity.HistoryRecord, error)
}

func (m *mockHistoryRepo) Create(ctx context.Context, record *entity.HistoryRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, record)
	}
	return nil
}

func (m *mockHistoryRepo) GetByRequestID(ctx context.Context, requestID int64) ([]*entity.HistoryRecord, error) {
	if m.getByRequestIDFunc != nil {
		return m.getByRequestIDFunc(ctx, requestID)
	}
	return []*entity.HistoryRecord{}, nil
}

type mockConfigRepo struct {
	getFunc    func(ctx context.Context) (*entity.WorkflowConfig, error)
	upsertFunc func(ctx context.Context, order []entity.Role) (*entity.WorkflowConfig, error)
}

func (m *mockConfigRepo) Get(ctx context.Context) (*entity.WorkflowConfig, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx)
	}
	return nil, nil
}

func (m *mockConfigRepo) Upsert(ctx context.Context, order []entity.Role) (*entity.WorkflowConfig, error) {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, order)
	}
	return &entity.WorkflowConfig{Order: order, UpdatedAt: time.Now()}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
