package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"
)

var ErrInvalidSession = errors.New("invalid session")

// SessionClaims is the payload of the signed session cookie. The session row
// it names is the source of truth; the signature only stops forgery.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"uid"`
	jwt.RegisteredClaims
}

func newSessionID() string {
	return ksuid.New().String()
}

func (s *Service) signSession(session *Session) (string, error) {
	claims := &SessionClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SessionSecret))
}

func (s *Service) parseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(s.config.SessionSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

func (s *Service) sessionDuration() time.Duration {
	if s.config.SessionDuration <= 0 {
		return 2 * time.Hour
	}
	return s.config.SessionDuration
}
