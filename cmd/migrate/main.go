package main

// Run database migrations:
//   go run ./cmd/migrate [up|status|down]

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"docinsight-backend/internal/shared/config"
	"docinsight-backend/internal/shared/storage/db"
	"docinsight-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := telemetry.New(telemetry.Options{Env: cfg.Env, Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := run(context.Background(), cfg, logger, command); err != nil {
		logger.Error("migrate failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, command string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	opts.Logger = logger
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	dialect := db.Dialect(cfg.DatabaseURL)
	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB, dialect, logger)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB, dialect, logger)
	case "down":
		err = db.RollbackOne(ctx, sqlDB, dialect, logger)
	default:
		return fmt.Errorf("unknown command %q (want up, status or down)", command)
	}
	if err == nil {
		logger.Info("migrate done", zap.String("command", command), zap.String("dialect", dialect))
	}
	return err
}
