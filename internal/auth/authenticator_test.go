package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
)

func newTestAuthenticator(secret string) *Authenticator {
	return NewAuthenticator(secret, "approval-workflow", zap.NewNop())
}

func TestAuthenticator_RoundTrip(t *testing.T) {
	a := newTestAuthenticator("test-secret")

	token, err := a.Sign("alice@example.com", entity.RoleL2, time.Hour)
	require.NoError(t, err)

	actor, err := a.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", actor.Identity)
	assert.Equal(t, entity.RoleL2, actor.Role)
}

func TestAuthenticator_RoleParsingIsCaseInsensitive(t *testing.T) {
	a := newTestAuthenticator("test-secret")

	token, err := a.Sign("bob@example.com", entity.Role("l3"), time.Hour)
	require.NoError(t, err)

	actor, err := a.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleL3, actor.Role, "role is canonicalized on resolve")
}

func TestAuthenticator_Rejections(t *testing.T) {
	a := newTestAuthenticator("test-secret")

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage token",
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name: "token signed with a different secret",
			token: func(t *testing.T) string {
				other := newTestAuthenticator("other-secret")
				token, err := other.Sign("alice@example.com", entity.RoleL2, time.Hour)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				token, err := a.Sign("alice@example.com", entity.RoleL2, -time.Minute)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "unknown role claim",
			token: func(t *testing.T) string {
				token, err := a.Sign("alice@example.com", entity.Role("L9"), time.Hour)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				token, err := a.Sign("", entity.RoleL2, time.Hour)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				other := NewAuthenticator("test-secret", "someone-else", zap.NewNop())
				token, err := other.Sign("alice@example.com", entity.RoleL2, time.Hour)
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Resolve(tt.token(t))
			assert.ErrorIs(t, err, workflow.ErrAuthentication)
		})
	}
}
