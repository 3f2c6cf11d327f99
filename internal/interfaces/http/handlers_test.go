package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/application/service"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
)

type stubApprovalService struct {
	createFunc        func(ctx context.Context, actor entity.Actor, title, description string) (*entity.ApprovalRequest, error)
	listOwnFunc       func(ctx context.Context, actor entity.Actor) ([]*entity.ApprovalRequest, error)
	listPendingFunc   func(ctx context.Context, actor entity.Actor, role entity.Role) ([]*entity.ApprovalRequest, error)
	getFunc           func(ctx context.Context, actor entity.Actor, id int64) (*service.RequestDetail, error)
	performActionFunc func(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error
	dashboardFunc     func(ctx context.Context, actor entity.Actor) (*service.DashboardSummary, error)
}

func (s *stubApprovalService) Create(ctx context.Context, actor entity.Actor, title, description string) (*entity.ApprovalRequest, error) {
	return s.createFunc(ctx, actor, title, description)
}

func (s *stubApprovalService) ListOwn(ctx context.Context, actor entity.Actor) ([]*entity.ApprovalRequest, error) {
	return s.listOwnFunc(ctx, actor)
}

func (s *stubApprovalService) ListPendingForRole(ctx context.Context, actor entity.Actor, role entity.Role) ([]*entity.ApprovalRequest, error) {
	return s.listPendingFunc(ctx, actor, role)
}

func (s *stubApprovalService) Get(ctx context.Context, actor entity.Actor, id int64) (*service.RequestDetail, error) {
	return s.getFunc(ctx, actor, id)
}

func (s *stubApprovalService) PerformAction(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error {
	return s.performActionFunc(ctx, actor, id, action, comment)
}

func (s *stubApprovalService) Dashboard(ctx context.Context, actor entity.Actor) (*service.DashboardSummary, error) {
	return s.dashboardFunc(ctx, actor)
}

type stubWorkflowService struct {
	getOrderFunc func(ctx context.Context) ([]entity.Role, error)
	setOrderFunc func(ctx context.Context, actor entity.Actor, order []entity.Role) (*entity.WorkflowConfig, error)
}

func (s *stubWorkflowService) GetOrder(ctx context.Context) ([]entity.Role, error) {
	return s.getOrderFunc(ctx)
}

func (s *stubWorkflowService) SetOrder(ctx context.Context, actor entity.Actor, order []entity.Role) (*entity.WorkflowConfig, error) {
	return s.setOrderFunc(ctx, actor, order)
}

// newTestRouter wires the handlers behind a middleware that injects a fixed
// actor, so routing and status mapping can be tested without real tokens.
func newTestRouter(approvals service.ApprovalService, workflows service.WorkflowService, actor entity.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handlers := NewHandlers(approvals, workflows, zap.NewNop())

	router := gin.New()
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api", func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	})
	api.POST("/requests", handlers.CreateRequest)
	api.GET("/requests/my-requests", handlers.ListMyRequests)
	api.GET("/requests/pending/:role", handlers.ListPendingForRole)
	api.GET("/requests/:id", handlers.GetRequest)
	api.POST("/requests/:id/action", handlers.PerformAction)
	api.GET("/workflow", handlers.GetWorkflow)
	api.PUT("/workflow", handlers.UpdateWorkflow)
	api.GET("/dashboard", handlers.Dashboard)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubApprovalService{}, &stubWorkflowService{}, entity.Actor{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestCreateRequest(t *testing.T) {
	alice := entity.Actor{Identity: "alice@example.com", Role: entity.RoleL1}

	t.Run("created", func(t *testing.T) {
		approvals := &stubApprovalService{
			createFunc: func(ctx context.Context, actor entity.Actor, title, description string) (*entity.ApprovalRequest, error) {
				assert.Equal(t, alice, actor)
				assert.Equal(t, "New laptop", title)
				return &entity.ApprovalRequest{
					ID:               1,
					Title:            title,
					Description:      description,
					Requester:        actor.Identity,
					Status:           entity.StatusPending,
					CurrentStage:     0,
					WorkflowSnapshot: []entity.Role{entity.RoleL1, entity.RoleL2},
					CreatedAt:        time.Now(),
					UpdatedAt:        time.Now(),
				}, nil
			},
		}
		router := newTestRouter(approvals, &stubWorkflowService{}, alice)

		w := doJSON(t, router, http.MethodPost, "/api/requests", CreateRequestPayload{
			Title:       "New laptop",
			Description: "Old one died",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("missing title", func(t *testing.T) {
		router := newTestRouter(&stubApprovalService{}, &stubWorkflowService{}, alice)

		w := doJSON(t, router, http.MethodPost, "/api/requests", map[string]string{"description": "no title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-requester refused", func(t *testing.T) {
		approvals := &stubApprovalService{
			createFunc: func(ctx context.Context, actor entity.Actor, title, description string) (*entity.ApprovalRequest, error) {
				return nil, fmt.Errorf("role %s cannot submit requests: %w", actor.Role, workflow.ErrForbidden)
			},
		}
		router := newTestRouter(approvals, &stubWorkflowService{}, entity.Actor{Identity: "bob", Role: entity.RoleL2})

		w := doJSON(t, router, http.MethodPost, "/api/requests", CreateRequestPayload{Title: "x"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestErrorStatusMapping(t *testing.T) {
	alice := entity.Actor{Identity: "alice@example.com", Role: entity.RoleL1}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"forbidden", fmt.Errorf("nope: %w", workflow.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("request 9: %w", workflow.ErrNotFound), http.StatusNotFound},
		{"invalid argument", fmt.Errorf("bad action: %w", workflow.ErrInvalidArgument), http.StatusBadRequest},
		{"conflict", fmt.Errorf("modified concurrently: %w", workflow.ErrConflict), http.StatusConflict},
		{"authentication", fmt.Errorf("stale: %w", workflow.ErrAuthentication), http.StatusUnauthorized},
		{"unclassified", fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approvals := &stubApprovalService{
				performActionFunc: func(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error {
					return tt.err
				},
			}
			router := newTestRouter(approvals, &stubWorkflowService{}, alice)

			w := doJSON(t, router, http.MethodPost, "/api/requests/1/action", ActionPayload{Action: "approve"})
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPerformAction(t *testing.T) {
	bob := entity.Actor{Identity: "bob@example.com", Role: entity.RoleL2}

	t.Run("approve message", func(t *testing.T) {
		approvals := &stubApprovalService{
			performActionFunc: func(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error {
				assert.Equal(t, int64(42), id)
				assert.Equal(t, entity.ActionApprove, action)
				assert.Equal(t, "looks good", comment)
				return nil
			},
		}
		router := newTestRouter(approvals, &stubWorkflowService{}, bob)

		w := doJSON(t, router, http.MethodPost, "/api/requests/42/action", ActionPayload{
			Action:  "approve",
			Comment: "looks good",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "request approved")
	})

	t.Run("reject message", func(t *testing.T) {
		approvals := &stubApprovalService{
			performActionFunc: func(ctx context.Context, actor entity.Actor, id int64, action entity.Action, comment string) error {
				return nil
			},
		}
		router := newTestRouter(approvals, &stubWorkflowService{}, bob)

		w := doJSON(t, router, http.MethodPost, "/api/requests/42/action", ActionPayload{Action: "reject"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "request rejected")
	})

	t.Run("non-numeric id", func(t *testing.T) {
		router := newTestRouter(&stubApprovalService{}, &stubWorkflowService{}, bob)

		w := doJSON(t, router, http.MethodPost, "/api/requests/abc/action", ActionPayload{Action: "approve"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing action", func(t *testing.T) {
		router := newTestRouter(&stubApprovalService{}, &stubWorkflowService{}, bob)

		w := doJSON(t, router, http.MethodPost, "/api/requests/42/action", map[string]string{"comment": "hm"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListPendingForRole(t *testing.T) {
	bob := entity.Actor{Identity: "bob@example.com", Role: entity.RoleL2}

	t.Run("role is canonicalized from the path", func(t *testing.T) {
		approvals := &stubApprovalService{
			listPendingFunc: func(ctx context.Context, actor entity.Actor, role entity.Role) ([]*entity.ApprovalRequest, error) {
				assert.Equal(t, entity.RoleL2, role)
				return []*entity.ApprovalRequest{}, nil
			},
		}
		router := newTestRouter(approvals, &stubWorkflowService{}, bob)

		w := doJSON(t, router, http.MethodGet, "/api/requests/pending/l2", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown role in path", func(t *testing.T) {
		router := newTestRouter(&stubApprovalService{}, &stubWorkflowService{}, bob)

		w := doJSON(t, router, http.MethodGet, "/api/requests/pending/L9", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRequest(t *testing.T) {
	alice := entity.Actor{Identity: "alice@example.com", Role: entity.RoleL1}

	approvals := &stubApprovalService{
		getFunc: func(ctx context.Context, actor entity.Actor, id int64) (*service.RequestDetail, error) {
			if id != 7 {
				return nil, fmt.Errorf("request %d: %w", id, workflow.ErrNotFound)
			}
			return &service.RequestDetail{
				Request: &entity.ApprovalRequest{ID: 7, Title: "New laptop", Requester: alice.Identity},
				History: []*entity.HistoryRecord{{RequestID: 7, Action: entity.ActionCreated}},
			}, nil
		},
	}
	router := newTestRouter(approvals, &stubWorkflowService{}, alice)

	w := doJSON(t, router, http.MethodGet, "/api/requests/7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "New laptop")

	w = doJSON(t, router, http.MethodGet, "/api/requests/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowEndpoints(t *testing.T) {
	admin := entity.Actor{Identity: "root@example.com", Role: entity.RoleAdmin}

	t.Run("get order", func(t *testing.T) {
		workflows := &stubWorkflowService{
			getOrderFunc: func(ctx context.Context) ([]entity.Role, error) {
				return []entity.Role{entity.RoleL1, entity.RoleL2, entity.RoleL3}, nil
			},
		}
		router := newTestRouter(&stubApprovalService{}, workflows, admin)

		w := doJSON(t, router, http.MethodGet, "/api/workflow", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"workflow_order":["L1","L2","L3"]`)
	})

	t.Run("put order canonicalizes roles", func(t *testing.T) {
		workflows := &stubWorkflowService{
			setOrderFunc: func(ctx context.Context, actor entity.Actor, order []entity.Role) (*entity.WorkflowConfig, error) {
				assert.Equal(t, []entity.Role{entity.RoleL1, entity.RoleL3}, order)
				return &entity.WorkflowConfig{Order: order, UpdatedAt: time.Now()}, nil
			},
		}
		router := newTestRouter(&stubApprovalService{}, workflows, admin)

		w := doJSON(t, router, http.MethodPut, "/api/workflow", WorkflowPayload{
			WorkflowOrder: []string{"l1", "L3"},
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("put order forwards unknown roles for rejection", func(t *testing.T) {
		workflows := &stubWorkflowService{
			setOrderFunc: func(ctx context.Context, actor entity.Actor, order []entity.Role) (*entity.WorkflowConfig, error) {
				return nil, fmt.Errorf("unknown role %q: %w", "L9", workflow.ErrInvalidArgument)
			},
		}
		router := newTestRouter(&stubApprovalService{}, workflows, admin)

		w := doJSON(t, router, http.MethodPut, "/api/workflow", WorkflowPayload{
			WorkflowOrder: []string{"L1", "L9"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDashboard(t *testing.T) {
	boss := entity.Actor{Identity: "boss@example.com", Role: entity.RoleL0}

	approvals := &stubApprovalService{
		dashboardFunc: func(ctx context.Context, actor entity.Actor) (*service.DashboardSummary, error) {
			return &service.DashboardSummary{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, nil
		},
	}
	router := newTestRouter(approvals, &stubWorkflowService{}, boss)

	w := doJSON(t, router, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
}
