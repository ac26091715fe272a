package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
)

type AuthMiddleware struct {
	service   *Service
	responder *response.Responder
	config    *config.AppConfig
	log       *zap.Logger
}

func NewAuthMiddleware(service *Service, responder *response.Responder, config *config.AppConfig, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service:   service,
		responder: responder,
		config:    config,
		log:       log,
	}
}

// Authenticate resolves the session cookie into an identity. Requests
// without the cookie pass through as anonymous; a cookie that does not
// resolve is rejected with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		id, err := m.service.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidSession) {
				m.clearSessionCookie(c)
				m.responder.Abort(c, http.StatusUnauthorized, response.Unauthorized)
				return
			}
			m.log.Error("failed to resolve session", zap.Error(err))
			m.responder.Abort(c, http.StatusInternalServerError, response.UnexpectedError)
			return
		}

		identity.Set(c, id)
		c.Next()
	}
}

// RequireSession rejects anonymous callers with 403.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.Get(c); !ok {
			m.responder.Abort(c, http.StatusForbidden, response.Forbidden)
			return
		}
		c.Next()
	}
}

// CSRF requires unsafe requests that carry a session cookie to echo the
// csrftoken cookie in the X-CSRFToken header.
func (m *AuthMiddleware) CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Security.CSRFEnabled || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		if _, err := c.Cookie(SessionCookie); err != nil {
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookie)
		header := c.GetHeader(CSRFHeader)
		if err != nil || cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			m.log.Warn("csrf check failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			m.responder.Abort(c, http.StatusForbidden, response.Forbidden)
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func (m *AuthMiddleware) setSessionCookie(c *gin.Context, result *LoginResult) {
	maxAge := int(result.Session.ExpiresAt.Sub(m.service.now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, result.Token, maxAge, "/", "", m.config.Auth.CookieSecure, true)
}

func (m *AuthMiddleware) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.config.Auth.CookieSecure, true)
}

// issueCSRFToken sets a fresh csrftoken cookie and returns its value. The
// cookie is readable by scripts so clients can copy it into the header.
func (m *AuthMiddleware) issueCSRFToken(c *gin.Context) string {
	token := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CSRFCookie, token, 365*24*60*60, "/", "", m.config.Auth.CookieSecure, false)
	return token
}
