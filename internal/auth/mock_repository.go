package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/elskow/medtrack/internal/identity"
)

type mockRepository struct {
	users    map[uint]*User
	sessions map[string]*Session
	nextID   uint
	mu       sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[uint]*User),
		sessions: make(map[string]*Session),
	}
}

func (r *mockRepository) CreateUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrUserExists
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	// Store a copy to prevent external modifications
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *mockRepository) GetUserByID(_ context.Context, id uint) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *mockRepository) GetUserByUsername(_ context.Context, username string) (*User, error) {
	return r.find(func(u *User) bool { return u.Username == username })
}

func (r *mockRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *mockRepository) FirstUserWithRole(_ context.Context, role identity.Role) (*User, error) {
	r.mu.RLock()
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u, err := r.GetUserByID(context.Background(), id)
		if err == nil && u.Role == role {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) RecordFailedLogin(ctx context.Context, userID uint, threshold int) (*User, error) {
	r.mu.Lock()
	u, ok := r.users[userID]
	if !ok {
		r.mu.Unlock()
		return nil, ErrUserNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		u.IsLocked = true
	}
	r.mu.Unlock()

	return r.GetUserByID(ctx, userID)
}

func (r *mockRepository) ResetFailedLogins(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.IsLocked = false
	return nil
}

func (r *mockRepository) CreateSession(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.CreatedAt = time.Now()
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *mockRepository) GetSession(_ context.Context, id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *mockRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *mockRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
