package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// gooseLogger routes goose progress lines into the service logger.
type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info("db_migration_step", "detail", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error("db_migration_failed", "error_message", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// EnsureMigrated applies the embedded SQL migrations that goose has not
// yet recorded in its version table.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)
	log.Info("db_migration_check", "status", "starting")

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("db_migration_success", "status", "success",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
