// Package main implements the entry point for the recur-api server,
// which manages recurring task definitions and materializes their
// concrete instances.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/workstreamhq/recur-api/internal/config"
	"github.com/workstreamhq/recur-api/internal/platform/logger"
	"github.com/workstreamhq/recur-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"run a migration command instead of the server: up, down, status or version",
	)
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("recur-api: %v", err)
	}
}

// run loads configuration, wires the application together and either runs
// migrations or starts the HTTP server.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("error closing database connection", "error", err)
			}
		}()
		return postgres.RunMigrations(db, migrateCmd, appLogger)
	}

	// Apply pending migrations before serving traffic.
	if err := postgres.RunMigrations(db, "up", appLogger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
