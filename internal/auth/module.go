package auth

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/permission"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// Provide service
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, repo Repository, seeder *permission.Seeder) *Service {
					return NewService(&config.Auth, log, repo, seeder)
				},
			),
			NewAuthMiddleware,
			NewHandler,
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lifecycle fx.Lifecycle, svc *Service, log *zap.Logger) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n, err := svc.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Warn("failed to purge expired sessions", zap.Error(err))
				return nil
			}
			if n > 0 {
				log.Info("Purged expired sessions", zap.Int64("count", n))
			}
			return nil
		},
	})
}
