package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/response"
)

type Middleware struct {
	limiter   *Limiter
	responder *response.Responder
	log       *zap.Logger
}

func NewMiddleware(limiter *Limiter, responder *response.Responder, log *zap.Logger) *Middleware {
	return &Middleware{
		limiter:   limiter,
		responder: responder,
		log:       log,
	}
}

// Limit applies p to every request keyed by client IP.
func (m *Middleware) Limit(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.apply(c, p)
	}
}

// ByMethod applies read to GET and HEAD and write to everything else.
func (m *Middleware) ByMethod(read, write Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			m.apply(c, read)
		default:
			m.apply(c, write)
		}
	}
}

func (m *Middleware) apply(c *gin.Context, p Policy) {
	ip := c.ClientIP()
	if m.limiter.Allow(p, ip) {
		c.Next()
		return
	}

	m.log.Warn("rate limit exceeded",
		zap.String("policy", p.Name),
		zap.String("client_ip", ip),
		zap.String("path", c.Request.URL.Path))
	m.responder.Abort(c, p.Status, response.TooManyRequests)
}
