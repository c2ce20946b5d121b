// Package main implements the entry point for the CourseHub API server,
// which serves accounts, course authoring and the admin review workflow.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/platform/postgres"
	"github.com/coursehub/coursehub-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	configFile := flag.String("config", "", "optional configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *migrateCmd); err != nil {
		slog.Error("server exited with error", "error", redact.Error(err))
		stop()
		os.Exit(1)
	}
}

// run loads configuration and either applies a migration command or serves
// until ctx is canceled.
func run(ctx context.Context, configFile, migrateCmd string) error {
	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: configFile, EnvFile: ".env"})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := openDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDatabase(db, l)
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		closeDatabase(db, l)
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
