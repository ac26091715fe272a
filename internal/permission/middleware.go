package permission

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

type Middleware struct {
	checker   *Checker
	responder *response.Responder
	log       *zap.Logger
}

func NewMiddleware(checker *Checker, responder *response.Responder, log *zap.Logger) *Middleware {
	return &Middleware{
		checker:   checker,
		responder: responder,
		log:       log,
	}
}

// Require guards resource with the action implied by the request method.
func (m *Middleware) Require(resource Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, ok := ActionForMethod(c.Request.Method)
		if !ok {
			m.responder.Abort(c, http.StatusForbidden, response.Forbidden)
			return
		}
		m.check(c, resource, action)
	}
}

// RequireAction guards resource with a fixed action.
func (m *Middleware) RequireAction(resource Resource, action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.check(c, resource, action)
	}
}

func (m *Middleware) check(c *gin.Context, resource Resource, action Action) {
	id, _ := identity.Get(c)

	allowed, err := m.checker.Allowed(c.Request.Context(), id, resource, action)
	if err != nil {
		m.log.Error("permission check failed",
			zap.Stringer("resource", resource),
			zap.Stringer("action", action),
			zap.Error(err))
		m.responder.Abort(c, http.StatusInternalServerError, response.UnexpectedError)
		return
	}

	if !allowed {
		m.responder.Abort(c, http.StatusForbidden, response.Forbidden)
		return
	}

	c.Next()
}
