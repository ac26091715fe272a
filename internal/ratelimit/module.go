package ratelimit

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/config"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger) *Limiter {
					return NewLimiter(&config.RateLimit, log)
				},
			),
			NewMiddleware,
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	config *config.AppConfig,
	limiter *Limiter,
	log *zap.Logger,
) {
	interval := config.RateLimit.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	idle := config.RateLimit.IdleTTL
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	done := make(chan struct{})

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !limiter.Enabled() {
				log.Info("Rate limiting disabled")
				return nil
			}
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if n := limiter.Sweep(idle); n > 0 {
							log.Debug("swept idle rate limiters", zap.Int("removed", n))
						}
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}
