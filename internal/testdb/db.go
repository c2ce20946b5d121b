package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/coursehub/coursehub-api/internal/platform/postgres"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 30 * time.Second

var migrateOnce sync.Once

// DatabaseURL returns the integration database URL, preferring
// COURSEHUB_TEST_DATABASE_URL over DATABASE_URL. It is empty when neither is set.
func DatabaseURL() string {
	if url := os.Getenv("COURSEHUB_TEST_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// Open connects to the integration database and applies all migrations once per
// test binary. The test is skipped when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("no integration database configured")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping database")

	var migrateErr error
	migrateOnce.Do(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		migrateErr = postgres.Migrate(ctx, db, "up", logger)
	})
	require.NoError(t, migrateErr, "failed to apply migrations")

	return db
}

// WithTx runs fn in a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
