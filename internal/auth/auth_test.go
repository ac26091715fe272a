package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

const testPassword = "correct-horse-battery"

type fakeRoles struct {
	mu       sync.Mutex
	assigned map[uint]identity.Role
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{assigned: make(map[uint]identity.Role)}
}

func (f *fakeRoles) AssignRole(_ context.Context, userID uint, role identity.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned[userID] = role
	return nil
}

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AppConfig {
	return &config.AppConfig{
		Auth: config.AuthConfig{
			SessionSecret:    "test-secret-key",
			SessionDuration:  time.Hour,
			LockoutThreshold: 5,
		},
		Security: config.SecurityConfig{
			CSRFEnabled: true,
		},
	}
}

func newTestService(t *testing.T) (*Service, *mockRepository, *fakeRoles) {
	repo := newMockRepository()
	roles := newFakeRoles()
	return NewService(&newTestConfig().Auth, newTestLogger(t), repo, roles), repo, roles
}

func newTestResponder(t *testing.T) *response.Responder {
	table, err := response.LoadTable("")
	require.NoError(t, err)
	return response.NewResponder(table)
}

func provisionUser(t *testing.T, svc *Service, username string, role identity.Role) *User {
	user, err := svc.Provision(context.Background(), username, username+"@example.com", testPassword, role)
	require.NoError(t, err)
	return user
}
