package auth

import (
	"time"

	"github.com/elskow/medtrack/internal/identity"
)

type User struct {
	ID                  uint          `gorm:"primaryKey"`
	Username            string        `gorm:"size:50;uniqueIndex;not null"`
	Email               string        `gorm:"size:254;uniqueIndex;not null"`
	PasswordHash        string        `gorm:"size:255;not null"`
	Role                identity.Role `gorm:"size:5;not null"`
	IsActive            bool          `gorm:"not null"`
	IsStaff             bool          `gorm:"not null"`
	FailedLoginAttempts int           `gorm:"not null"`
	IsLocked            bool          `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (User) TableName() string {
	return "users"
}

// Identity is the request-scoped view of u bound to sessionID.
func (u *User) Identity(sessionID string) *identity.Identity {
	return &identity.Identity{
		UserID:    u.ID,
		SessionID: sessionID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
	}
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:27"`
	UserID    uint      `gorm:"not null;index"`
	ClientIP  string    `gorm:"size:64;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
