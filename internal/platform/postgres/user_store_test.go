package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/postgres"
	"github.com/coursehub/coursehub-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "username", "email", "full_name", "hashed_password", "role", "balance", "created_at", "updated_at",
}

func newUser() *domain.User {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.User{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$hash",
		Role:           domain.RoleStudent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()
	insert := regexp.QuoteMeta("INSERT INTO users")

	t.Run("sets id", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())
		u := newUser()

		mock.ExpectQuery(insert).
			WithArgs(u.Username, u.Email, u.FullName, u.HashedPassword, "STUDENT", int64(0), u.CreatedAt, u.UpdatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		require.NoError(t, s.Create(context.Background(), u))
		assert.Equal(t, int64(42), u.ID)
	})

	t.Run("duplicate username from constraint", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(insert).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		err := s.Create(context.Background(), newUser())
		assert.ErrorIs(t, err, store.ErrUsernameExists)
	})

	t.Run("duplicate email from constraint", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(insert).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := s.Create(context.Background(), newUser())
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		t.Parallel()
		db, _ := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())
		u := newUser()
		u.Email = "bad"

		assert.ErrorIs(t, s.Create(context.Background(), u), domain.ErrValidation)
	})

	t.Run("connection error does not leak credentials", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(insert).WillReturnError(errors.New("connection refused"))

		err := s.Create(context.Background(), newUser())
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "$2a$10$hash")
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	t.Parallel()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("by username", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(2, "alice", "alice@example.com", "Alice", "hash", "TEACHER", 500, created, created))

		u, err := s.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), u.ID)
		assert.Equal(t, domain.RoleTeacher, u.Role)
		assert.Equal(t, int64(500), u.Balance)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := s.GetByID(context.Background(), 9)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("exists by email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)")).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := s.ExistsByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY id")).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(1, "root", "root@example.com", "", "hash", "ADMIN", 0, created, created).
				AddRow(2, "alice", "alice@example.com", "", "hash", "STUDENT", 0, created, created))

		users, err := s.List(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.True(t, users[0].IsAdmin())
	})
}

func TestPostgresUserStore_Mutations(t *testing.T) {
	t.Parallel()

	t.Run("update email collision", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())
		u := newUser()
		u.ID = 2

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		assert.ErrorIs(t, s.Update(context.Background(), u), store.ErrEmailExists)
	})

	t.Run("update role of missing user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $1")).
			WithArgs("TEACHER", sqlmock.AnyArg(), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.UpdateRole(context.Background(), 9, domain.RoleTeacher), store.ErrUserNotFound)
	})

	t.Run("update password by email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET hashed_password = $1")).
			WithArgs("newhash", sqlmock.AnyArg(), "alice@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdatePassword(context.Background(), "alice@example.com", "newhash"))
	})

	t.Run("delete missing user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := postgres.NewPostgresUserStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
			WithArgs(int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), 9), store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_WithTx(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := postgres.NewPostgresUserStore(db, discardLogger())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).Delete(ctx, 2)
	})
	require.NoError(t, err)
}

func TestNewPostgresUserStorePanicsWithoutDB(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { postgres.NewPostgresUserStore(nil, nil) })
}
