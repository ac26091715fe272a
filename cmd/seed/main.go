package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/app"
	"github.com/elskow/medtrack/internal/auth"
	"github.com/elskow/medtrack/internal/database"
	"github.com/elskow/medtrack/internal/medication"
	"github.com/elskow/medtrack/internal/permission"
	"github.com/elskow/medtrack/internal/seed"
	"github.com/elskow/medtrack/internal/server"
)

func main() {
	command := flag.String("command", seed.CommandAll, "seed command (groups/admin/users/medications/all)")
	count := flag.Int("count", 10, "number of random users for the users command")
	password := flag.String("password", seed.DefaultPassword, "password for random users")
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

	manager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer manager.Close()

	if cfg.Database.Driver == "sqlite" && cfg.Database.AutoMigrate {
		if err := manager.AutoMigrate(app.Models()...); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	grants, err := permission.NewGrants(cfg.Permissions)
	if err != nil {
		logger.Fatal("Invalid permission overrides", zap.Error(err))
	}
	groups := permission.NewSeeder(grants, permission.NewRepository(manager.DB()), logger)
	users := auth.NewService(&cfg.Auth, logger, auth.NewRepository(manager.DB()), groups)
	seeder := seed.New(groups, users, medication.NewRepository(manager.DB()), &cfg.Bootstrap, logger)

	if err := seeder.Run(context.Background(), *command, *count, *password); err != nil {
		logger.Fatal("Seeding failed", zap.String("command", *command), zap.Error(err))
	}
	logger.Info("Seeding completed successfully", zap.String("command", *command))
}
