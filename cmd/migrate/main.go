package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/migration"
	"github.com/elskow/medtrack/internal/server"
)

func main() {
	command := flag.String("command", "up", "migration command (up/down/status/version/sync/reset)")
	flag.Parse()

	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", server.EnvDevelopment)
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := server.NewLogger(os.Getenv("APP_ENV"), &cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Database.Driver != "postgres" {
		logger.Fatal("SQL migrations target postgres; use database.auto_migrate for this driver",
			zap.String("driver", cfg.Database.Driver))
	}

	migrator, err := migration.NewMigrator(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	switch *command {
	case "up":
		if err := migrator.Up(); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Successfully ran migrations")

	case "down":
		if err := migrator.Down(); err != nil {
			logger.Fatal("Failed to roll back migrations", zap.Error(err))
		}
		logger.Info("Successfully rolled back migrations")

	case "status":
		if err := migrator.Status(); err != nil {
			logger.Fatal("Failed to get migration status", zap.Error(err))
		}

	case "version":
		current, err := migrator.CurrentVersion()
		if err != nil {
			logger.Fatal("Failed to get migration version", zap.Error(err))
		}
		latest, err := migrator.LatestVersion()
		if err != nil {
			logger.Fatal("Failed to read migrations", zap.Error(err))
		}
		logger.Info("Migration version",
			zap.Int64("current_version", current),
			zap.Int64("latest_version", latest))

	case "sync":
		if err := migration.Sync(migrator, logger); err != nil {
			logger.Fatal("Failed to sync schema", zap.Error(err))
		}

	case "reset":
		if err := migrator.Reset(); err != nil {
			logger.Fatal("Failed to reset migrations", zap.Error(err))
		}
		logger.Info("Successfully reset migrations")

	default:
		logger.Fatal("Unknown command", zap.String("command", *command))
	}
}
