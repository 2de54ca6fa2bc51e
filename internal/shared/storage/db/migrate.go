package db

import (
	"context"
	"database/sql"
	"embed"
	"strings"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Dialect maps a DATABASE_URL to the goose dialect.
func Dialect(databaseURL string) string {
	if driver, _ := DriverFor(databaseURL); driver == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// gooseLogger routes goose output through zap instead of the stdlib log package.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Infof(strings.TrimRight(format, "\n"), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatalf(strings.TrimRight(format, "\n"), v...)
}

func prepare(dialect string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	goose.SetLogger(gooseLogger{log: logger.Named("migrate").Sugar()})
	goose.SetBaseFS(migrationFiles)
	if dialect == "" {
		dialect = "postgres"
	}
	return goose.SetDialect(dialect)
}

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect string, logger *zap.Logger) error {
	if database == nil {
		return nil
	}
	if err := prepare(dialect, logger); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, "migrations")
}

// MigrationStatus logs applied and pending migrations.
func MigrationStatus(ctx context.Context, database *sql.DB, dialect string, logger *zap.Logger) error {
	if err := prepare(dialect, logger); err != nil {
		return err
	}
	return goose.StatusContext(ctx, database, "migrations")
}

// RollbackOne reverts the latest migration.
func RollbackOne(ctx context.Context, database *sql.DB, dialect string, logger *zap.Logger) error {
	if err := prepare(dialect, logger); err != nil {
		return err
	}
	return goose.DownContext(ctx, database, "migrations")
}
