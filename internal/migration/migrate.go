package migration

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/elskow/medtrack/internal/config"
	"github.com/elskow/medtrack/internal/database"
)

// Migrator applies the goose SQL migrations under migrations/ to postgres.
type Migrator struct {
	db  *sql.DB
	dir string
}

func NewMigrator(config *config.DatabaseConfig) (*Migrator, error) {
	if config.Driver != "postgres" {
		return nil, fmt.Errorf("goose migrations target postgres, got driver %q", config.Driver)
	}

	db, err := sql.Open("postgres", database.DSN(config))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Migrator{db: db}, nil
}

// prepare resolves the migrations directory once and pins the goose dialect.
func (m *Migrator) prepare() (string, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return "", fmt.Errorf("failed to set dialect: %w", err)
	}
	if m.dir != "" {
		return m.dir, nil
	}

	dir, err := getMigrationsDir()
	if err != nil {
		return "", fmt.Errorf("failed to get migrations directory: %w", err)
	}
	m.dir = dir
	return dir, nil
}

func (m *Migrator) Up() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}
	if err := goose.Up(m.db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Down() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}
	if err := goose.Down(m.db, dir); err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// DownTo migrates the database down to a specific version.
func (m *Migrator) DownTo(version int64) error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}
	if err := goose.DownTo(m.db, dir, version); err != nil {
		return fmt.Errorf("failed to migrate down to version %d: %w", version, err)
	}
	return nil
}

// CurrentVersion returns the version recorded in the goose table.
func (m *Migrator) CurrentVersion() (int64, error) {
	if _, err := m.prepare(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(m.db)
}

// LatestVersion returns the newest migration version found on disk.
func (m *Migrator) LatestVersion() (int64, error) {
	dir, err := m.prepare()
	if err != nil {
		return 0, err
	}

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}

	return migrations[len(migrations)-1].Version, nil
}

func (m *Migrator) Status() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}
	if err := goose.Status(m.db, dir); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

func (m *Migrator) Reset() error {
	dir, err := m.prepare()
	if err != nil {
		return err
	}
	if err := goose.Reset(m.db, dir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return goose.Up(m.db, dir)
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
