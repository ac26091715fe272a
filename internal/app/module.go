package app

import (
	"context"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/database"
	"github.com/elskow/medtrack/internal/medication"
	"github.com/elskow/medtrack/internal/migration"
	"github.com/elskow/medtrack/internal/permission"
	"github.com/elskow/medtrack/internal/ratelimit"
	"github.com/elskow/medtrack/internal/refill"
	"github.com/elskow/medtrack/internal/response"
	"github.com/elskow/medtrack/internal/server"
)

// Module combines all application modules. Invokes run in declaration
// order, so the schema is in place before groups are seeded.
func Module() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(server.LoadConfig),

		// Logger
		fx.Provide(newLogger),

		// Response envelope
		fx.Provide(newResponder),

		// Database and schema
		database.Module(),
		fx.Invoke(registerSchemaHook),

		// Domain modules
		permission.NewModule(),
		ratelimit.NewModule(),
		auth.NewModule(),
		medication.NewModule(),
		refill.NewModule(),

		// Servers
		fx.Provide(server.NewServer, server.NewHealthServer),

		// Start the servers
		fx.Invoke(registerHooks),
	)
}

// Models lists every gorm model, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&auth.User{},
		&auth.Session{},
		&permission.Group{},
		&permission.GroupPermission{},
		&permission.UserGroup{},
		&medication.Medication{},
		&refill.RefillRequest{},
	}
}

func newLogger(config *config.AppConfig) (*zap.Logger, error) {
	return server.NewLogger(os.Getenv("APP_ENV"), &config.Log)
}

func newResponder(config *config.AppConfig) (*response.Responder, error) {
	table, err := response.LoadTable(config.Response.CodesFile)
	if err != nil {
		return nil, err
	}
	return response.NewResponder(table), nil
}

// registerSchemaHook applies goose migrations on postgres and gorm
// auto-migration on sqlite when enabled.
func registerSchemaHook(
	lifecycle fx.Lifecycle,
	config *config.AppConfig,
	manager *database.Manager,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			switch {
			case config.Database.Driver == "postgres":
				migrator, err := migration.NewMigrator(&config.Database)
				if err != nil {
					return err
				}
				defer migrator.Close()
				return migration.Sync(migrator, log)
			case config.Database.AutoMigrate:
				return manager.AutoMigrate(Models()...)
			default:
				log.Warn("Schema management disabled",
					zap.String("driver", config.Database.Driver))
				return nil
			}
		},
	})
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	health *server.HealthServer,
	manager *database.Manager,
	log *zap.Logger,
) {
	watchCtx, stopWatch := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()

			if health.Enabled() {
				go func() {
					if err := health.Start(); err != nil {
						log.Error("failed to start health server", zap.Error(err))
					}
				}()
				go health.Watch(watchCtx, manager, 15*time.Second)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			stopWatch()
			if health.Enabled() {
				health.Stop()
			}
			return srv.Stop(ctx)
		},
	})
}
