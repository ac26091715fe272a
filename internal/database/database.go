package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elskow/medtrack/internal/config"
)

type Manager struct {
	db     *gorm.DB
	config *config.DatabaseConfig
	logger *zap.Logger
}

func NewManager(config *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	db, err := newDatabase(config)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if config.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxConns)
		sqlDB.SetMaxIdleConns(config.MaxConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Every connection to an in-memory sqlite database is a new, empty database.
	if config.Driver == "sqlite" && config.Path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	return &Manager{
		db:     db,
		config: config,
		logger: logger,
	}, nil
}

func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Ping verifies the database is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates the schema through gorm. It backs sqlite deployments and
// tests; postgres deployments use the goose migrations instead.
func (m *Manager) AutoMigrate(models ...interface{}) error {
	m.logger.Info("running gorm auto-migration",
		zap.String("driver", m.config.Driver),
		zap.Int("models", len(models)))
	return m.db.AutoMigrate(models...)
}

func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DSN returns the postgres connection string for config.
func DSN(config *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		config.Host,
		config.User,
		config.Password,
		config.Name,
		config.Port,
		config.SSLMode,
	)
}

func newDatabase(config *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogLevel(config.LogLevel),
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		),
	}

	var dialector gorm.Dialector
	switch config.Driver {
	case "sqlite":
		path := config.Path
		if path == "" {
			path = "medtrack.db"
		}
		// Foreign keys are off by default in sqlite; cascades depend on them.
		dialector = sqlite.Open(path + "?_foreign_keys=on")
	default:
		dialector = postgres.Open(DSN(config))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.Driver, err)
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
