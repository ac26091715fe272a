package migration

import (
	"fmt"

	"go.uber.org/zap"
)

// Sync moves the schema to the newest migration on disk, rolling back when
// the database is ahead of this build.
func Sync(migrator *Migrator, logger *zap.Logger) error {
	current, err := migrator.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	latest, err := migrator.LatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest migration version: %w", err)
	}

	logger.Info("Database migration status",
		zap.Int64("current_version", current),
		zap.Int64("latest_version", latest))

	switch {
	case current > latest:
		logger.Info("Downgrading database schema",
			zap.Int64("from_version", current),
			zap.Int64("to_version", latest))
		if err := migrator.DownTo(latest); err != nil {
			return fmt.Errorf("failed to downgrade database: %w", err)
		}
	case current < latest:
		logger.Info("Upgrading database schema",
			zap.Int64("from_version", current),
			zap.Int64("to_version", latest))
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("failed to upgrade database: %w", err)
		}
	}

	return nil
}
