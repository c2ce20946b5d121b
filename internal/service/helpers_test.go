package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTxDB returns a sqlmock database that accepts any number of transactions
// in any order.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectCommit registers one transaction that commits.
func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

// expectRollback registers one transaction that rolls back.
func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func as(username string, role domain.Role) context.Context {
	return authz.WithPrincipal(context.Background(), authz.Principal{Username: username, Role: role})
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-secret-that-is-long-enough-for-testing-with-hs512-signatures",
		Issuer:               "localhost:8080",
		TokenLifetimeMinutes: 60,
	}
}
