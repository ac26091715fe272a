package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elskow/medtrack/internal/database/dbtest"
	"github.com/elskow/medtrack/internal/identity"
)

func newTestRepository(t *testing.T) Repository {
	return NewRepository(dbtest.Open(t, &User{}, &Session{}))
}

func createTestUser(t *testing.T, repo Repository, username string, role identity.Role) *User {
	user := &User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	alice := createTestUser(t, repo, "alice", identity.RoleUser)
	admin := createTestUser(t, repo, "root", identity.RoleAdmin)

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.True(t, got.IsActive)

	got, err = repo.GetUserByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = repo.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	first, err := repo.FirstUserWithRole(ctx, identity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, first.ID)

	err = repo.CreateUser(ctx, &User{Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: identity.RoleUser})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRepository_RecordFailedLogin(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "alice", identity.RoleUser)

	for i := 1; i <= 5; i++ {
		updated, err := repo.RecordFailedLogin(ctx, user.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, i, updated.FailedLoginAttempts)
		assert.Equal(t, i >= 5, updated.IsLocked)
	}

	require.NoError(t, repo.ResetFailedLogins(ctx, user.ID))
	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, got.FailedLoginAttempts)
	assert.False(t, got.IsLocked)

	_, err = repo.RecordFailedLogin(ctx, 999, 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_RecordFailedLoginConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "alice", identity.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.RecordFailedLogin(ctx, user.ID, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.FailedLoginAttempts)
	assert.True(t, got.IsLocked)
}

func TestRepository_Sessions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "alice", identity.RoleUser)
	now := time.Now()

	live := &Session{ID: newSessionID(), UserID: user.ID, ClientIP: "127.0.0.1", ExpiresAt: now.Add(time.Hour)}
	stale := &Session{ID: newSessionID(), UserID: user.ID, ClientIP: "127.0.0.1", ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.CreateSession(ctx, live))
	require.NoError(t, repo.CreateSession(ctx, stale))

	got, err := repo.GetSession(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	n, err := repo.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetSession(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, repo.DeleteSession(ctx, live.ID))
	assert.ErrorIs(t, repo.DeleteSession(ctx, live.ID), ErrSessionNotFound)
}
