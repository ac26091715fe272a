package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/elskow/medtrack/internal/config"
)

// HealthServer serves grpc.health.v1.Health on its own port. The overall
// status ("") follows the database.
type HealthServer struct {
	config     *config.AppConfig
	log        *zap.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

func NewHealthServer(cfg *config.AppConfig, log *zap.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	if cfg.GRPC.EnableReflection {
		reflection.Register(grpcServer)
	}

	return &HealthServer{
		config:     cfg,
		log:        log,
		grpcServer: grpcServer,
		health:     hs,
	}
}

func (h *HealthServer) Enabled() bool {
	return h.config.GRPC.Enabled
}

func (h *HealthServer) Start() error {
	addr := net.JoinHostPort(h.config.Server.Host, h.config.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	h.log.Info("Starting gRPC health server",
		zap.String("address", addr),
		zap.Bool("reflection_enabled", h.config.GRPC.EnableReflection))

	if err := h.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// SetServing flips the overall status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
}

// Watch pings db every interval and updates the status until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, db Pinger, interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := db.Ping(pingCtx)
		if err != nil {
			h.log.Warn("database health check failed", zap.Error(err))
		}
		h.SetServing(err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}

func (h *HealthServer) Stop() {
	h.log.Info("shutting down gRPC health server")
	h.health.Shutdown()
	h.grpcServer.GracefulStop()
}
