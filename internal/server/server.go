package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elskow/medtrack/internal/api"
	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/database"
	"github.com/elskow/medtrack/internal/medication"
	"github.com/elskow/medtrack/internal/permission"
	"github.com/elskow/medtrack/internal/ratelimit"
	"github.com/elskow/medtrack/internal/refill"
	"github.com/elskow/medtrack/internal/response"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes holds the handlers and guards mounted on the engine.
type Routes struct {
	Auth        *auth.Handler
	Sessions    *auth.AuthMiddleware
	Permissions *permission.Middleware
	RateLimits  *ratelimit.Middleware
	Medications *medication.Handler
	Refills     *refill.Handler
}

type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	Responder      *response.Responder
	Database       *database.Manager
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.AuthMiddleware
	Permissions    *permission.Middleware
	RateLimits     *ratelimit.Middleware
	Medications    *medication.Handler
	Refills        *refill.Handler
}

func NewServer(p Params) *Server {
	return newServer(p.Config, p.Logger, p.Responder, p.Database, Routes{
		Auth:        p.AuthHandler,
		Sessions:    p.AuthMiddleware,
		Permissions: p.Permissions,
		RateLimits:  p.RateLimits,
		Medications: p.Medications,
		Refills:     p.Refills,
	})
}

func newServer(cfg *config.AppConfig, log *zap.Logger, responder *response.Responder, db Pinger, routes Routes) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()
	// Client IPs feed the rate limiter, so forwarded headers are not trusted.
	_ = engine.SetTrustedProxies(nil)

	engine.Use(
		accessLog(log),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			log.Error("panic while handling request",
				zap.Any("panic", recovered),
				zap.String("path", c.Request.URL.Path))
			responder.Abort(c, http.StatusInternalServerError, response.UnexpectedError)
		}),
		allowedHosts(cfg.Server.AllowedHosts),
	)
	if len(cfg.Server.CORSOrigins) > 0 {
		engine.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	}

	engine.NoRoute(func(c *gin.Context) {
		responder.Error(c, http.StatusNotFound, response.NotFound)
	})
	engine.GET(api.Health, healthz(db))

	registerRoutes(engine, routes)

	return &Server{
		config: cfg,
		log:    log,
		engine: engine,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = origins
	c.AllowCredentials = true
	c.AllowHeaders = append(c.AllowHeaders, auth.CSRFHeader)
	return c
}

// Handler exposes the engine for in-process requests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddString("mode", config.Server.Mode)
		enc.AddString("database_driver", config.Database.Driver)
		enc.AddBool("csrf_enabled", config.Security.CSRFEnabled)
		enc.AddBool("rate_limit_enabled", config.RateLimit.Enabled)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
