package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursehub/coursehub-api/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// openDatabase opens a pgx-backed pool and checks that the server is reachable.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", "max_open_conns", cfg.MaxOpenConns)
	return db, nil
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("error closing database connection", "error", err)
	}
}
