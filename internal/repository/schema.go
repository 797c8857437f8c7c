package repository

import (
	"context"
	"embed"
	"fmt"

	"weather-stats/pkg/database"
	"weather-stats/pkg/logging"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Migration directions.
const (
	Up   = "up"
	Down = "down"
)

// Schema returns the DDL for a driver and direction.
func Schema(driver, direction string) (string, error) {
	if direction != Up && direction != Down {
		return "", fmt.Errorf("invalid migration direction %q (allowed: up, down)", direction)
	}
	b, err := schemaFiles.ReadFile(fmt.Sprintf("schema/%s.%s.sql", driver, direction))
	if err != nil {
		return "", fmt.Errorf("no schema for driver %q: %w", driver, err)
	}
	return string(b), nil
}

// Migrate applies the report store schema.
func Migrate(ctx context.Context, db *database.DB, logger *logging.StructuredLogger, direction string) error {
	ddl, err := Schema(db.DriverName(), direction)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "migrate_"+direction, ddl); err != nil {
		return fmt.Errorf("failed to apply %s migration: %w", direction, err)
	}

	logger.Info(ctx, "[DB_MIGRATE] Schema migration applied", logging.Fields{
		"driver":    db.DriverName(),
		"direction": direction,
	})
	return nil
}
