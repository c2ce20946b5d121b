package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/store"
)

const userColumns = `id, username, email, full_name, hashed_password, role, balance, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.HashedPassword,
		&role,
		&u.Balance,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// Create implements store.UserStore.Create
// The unique constraints on username and email decide duplicates; a violation
// is returned as store.ErrUsernameExists or store.ErrEmailExists.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("username", user.Username))
		return err
	}

	query := `
		INSERT INTO users (username, email, full_name, hashed_password, role, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.FullName,
		user.HashedPassword,
		string(user.Role),
		user.Balance,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("duplicate user rejected by constraint",
				slog.String("username", user.Username))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("error", redact.Error(err)),
			slog.String("username", user.Username))
		return fmt.Errorf("failed to create user: %w", mapped)
	}

	log.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)))
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("error", redact.Error(err)),
			slog.String("where", where))
		return nil, fmt.Errorf("failed to get user: %w", MapError(err))
	}
	return user, nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "username = $1", username)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email = $1", email)
}

func (s *PostgresUserStore) exists(ctx context.Context, column, value string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE ` + column + ` = $1)`
	if err := s.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check user existence",
			slog.String("error", redact.Error(err)),
			slog.String("column", column))
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}
	return exists, nil
}

// ExistsByUsername implements store.UserStore.ExistsByUsername
func (s *PostgresUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username", username)
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email", email)
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		log.Error("failed to list users", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}
	return users, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET email = $1, full_name = $2, hashed_password = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.FullName,
		user.HashedPassword,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		log.Error("failed to update user",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", user.ID))
		return fmt.Errorf("failed to update user: %w", mapped)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// UpdateRole implements store.UserStore.UpdateRole
func (s *PostgresUserStore) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
		string(role), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update user role",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", id))
		return fmt.Errorf("failed to update role: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// UpdatePassword implements store.UserStore.UpdatePassword
func (s *PostgresUserStore) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $1, updated_at = $2 WHERE email = $3`,
		hashedPassword, time.Now().UTC(), email)
	if err != nil {
		log.Error("failed to update password",
			slog.String("error", redact.Error(err)),
			slog.String("email", redact.Email(email)))
		return fmt.Errorf("failed to update password: %w", err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}
	log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
