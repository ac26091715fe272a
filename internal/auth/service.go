package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RoleAssigner puts a user in the group for their role.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID uint, role identity.Role) error
}

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	roles      RoleAssigner
	policy     *PasswordPolicy
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(config *config.AuthConfig, log *zap.Logger, repo Repository, roles RoleAssigner) *Service {
	return &Service{
		config:     config,
		log:        log,
		repository: repo,
		roles:      roles,
		policy:     NewPasswordPolicy(),
		now:        time.Now,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (s *Service) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// burnHashTime spends one bcrypt comparison so unknown usernames take as
// long as wrong passwords.
func (s *Service) burnHashTime(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func (s *Service) lockoutThreshold() int {
	if s.config.LockoutThreshold <= 0 {
		return 5
	}
	return s.config.LockoutThreshold
}

type LoginResult struct {
	User    *User
	Session *Session
	Token   string
}

// Login checks credentials and opens a session. Unknown users and wrong
// passwords both yield ErrInvalidCredentials; a locked account yields
// ErrAccountLocked whatever the password.
func (s *Service) Login(ctx context.Context, username, password, clientIP string) (*LoginResult, error) {
	user, err := s.repository.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.burnHashTime(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.IsLocked {
		s.log.Warn("login attempt on locked account",
			zap.Uint("user_id", user.ID),
			zap.String("client_ip", clientIP))
		return nil, ErrAccountLocked
	}

	if !s.CheckPasswordHash(password, user.PasswordHash) || !user.IsActive {
		updated, err := s.repository.RecordFailedLogin(ctx, user.ID, s.lockoutThreshold())
		if err != nil {
			return nil, fmt.Errorf("failed to record failed login: %w", err)
		}

		s.log.Warn("failed login",
			zap.Uint("user_id", user.ID),
			zap.Int("failed_attempts", updated.FailedLoginAttempts),
			zap.String("client_ip", clientIP))
		if updated.IsLocked && !user.IsLocked {
			s.log.Warn("account locked", zap.Uint("user_id", user.ID))
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 {
		if err := s.repository.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to reset login attempts: %w", err)
		}
		user.FailedLoginAttempts = 0
	}

	session := &Session{
		ID:        newSessionID(),
		UserID:    user.ID,
		ClientIP:  clientIP,
		ExpiresAt: s.now().Add(s.sessionDuration()),
	}
	if err := s.repository.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signSession(session)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	s.log.Info("user logged in",
		zap.Uint("user_id", user.ID),
		zap.String("session_id", session.ID))

	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// Logout ends sessionID. Ending a session that is already gone is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.repository.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ResolveSession maps a session cookie to the caller. Any cookie that does
// not lead to a live session and an existing user is ErrInvalidSession.
func (s *Service) ResolveSession(ctx context.Context, token string) (*identity.Identity, error) {
	claims, err := s.parseSession(token)
	if err != nil {
		return nil, err
	}

	session, err := s.repository.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.UserID != claims.UserID {
		return nil, ErrInvalidSession
	}

	if session.Expired(s.now()) {
		if err := s.repository.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			s.log.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, ErrInvalidSession
	}

	user, err := s.repository.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return user.Identity(session.ID), nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     identity.Role
}

// Register validates in and creates the user. Field problems come back as a
// *response.ValidationError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Role == "" {
		in.Role = identity.RoleUser
	}

	verr := response.NewValidationError()

	if !usernamePattern.MatchString(in.Username) {
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	} else if _, err := s.repository.GetUserByUsername(ctx, in.Username); err == nil {
		verr.Add("username", "A user with that username already exists.")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.repository.GetUserByEmail(ctx, in.Email); err == nil {
		verr.Add("email", "A user with that email already exists.")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if !in.Role.Valid() {
		verr.Add("role", fmt.Sprintf("%q is not a valid choice.", in.Role))
	}

	for _, msg := range s.policy.Validate(in.Password,
		UserAttribute{Label: "username", Value: in.Username},
		UserAttribute{Label: "email address", Value: in.Email},
	) {
		verr.Add("password", msg)
	}

	if verr.HasErrors() {
		return nil, verr
	}

	user, err := s.Provision(ctx, in.Username, in.Email, in.Password, in.Role)
	if errors.Is(err, ErrUserExists) {
		// lost a race with a concurrent registration
		return nil, response.NewValidationError().Add(response.NonFieldErrors, "A user with that username or email already exists.")
	}
	return user, err
}

// Provision creates a user and its group membership without applying the
// password policy.
func (s *Service) Provision(ctx context.Context, username, email, password string, role identity.Role) (*User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsStaff:      role == identity.RoleAdmin,
	}
	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := s.roles.AssignRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	s.log.Info("user created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return user, nil
}

// UserInfo returns the stored user behind id.
func (s *Service) UserInfo(ctx context.Context, id *identity.Identity) (*User, error) {
	return s.repository.GetUserByID(ctx, id.UserID)
}

// FirstAdmin returns the oldest ADMIN account.
func (s *Service) FirstAdmin(ctx context.Context) (*User, error) {
	return s.repository.FirstUserWithRole(ctx, identity.RoleAdmin)
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repository.DeleteExpiredSessions(ctx, s.now())
}
