package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/store"
)

// PostgresResetCodeStore implements store.ResetCodeStore. Only code hashes are stored.
type PostgresResetCodeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResetCodeStore creates a PostgresResetCodeStore. If logger is nil,
// a default logger will be used.
func NewPostgresResetCodeStore(db store.DBTX, logger *slog.Logger) *PostgresResetCodeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresResetCodeStore{
		db:     db,
		logger: logger.With(slog.String("component", "reset_code_store")),
	}
}

var _ store.ResetCodeStore = (*PostgresResetCodeStore)(nil)

// WithTx implements store.ResetCodeStore.WithTx
func (s *PostgresResetCodeStore) WithTx(tx *sql.Tx) store.ResetCodeStore {
	return &PostgresResetCodeStore{db: tx, logger: s.logger}
}

// Create implements store.ResetCodeStore.Create
func (s *PostgresResetCodeStore) Create(ctx context.Context, code *domain.ResetCode) error {
	query := `
		INSERT INTO password_reset_codes (email, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, code.Email, code.CodeHash, code.ExpiresAt, code.CreatedAt).
		Scan(&code.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store reset code",
			slog.String("error", redact.Error(err)),
			slog.String("email", redact.Email(code.Email)))
		return fmt.Errorf("failed to store reset code: %w", MapError(err))
	}
	return nil
}

// GetLatestUnused implements store.ResetCodeStore.GetLatestUnused
// The row is locked with FOR UPDATE so concurrent redemptions of the same code
// serialize and only one of them sees it unused.
func (s *PostgresResetCodeStore) GetLatestUnused(ctx context.Context, email string) (*domain.ResetCode, error) {
	query := `
		SELECT id, email, code_hash, expires_at, used_at, created_at, failed_attempts
		FROM password_reset_codes
		WHERE email = $1 AND used_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`
	var rc domain.ResetCode
	var usedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&rc.ID,
		&rc.Email,
		&rc.CodeHash,
		&rc.ExpiresAt,
		&usedAt,
		&rc.CreatedAt,
		&rc.FailedAttempts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrResetCodeNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load reset code",
			slog.String("error", redact.Error(err)),
			slog.String("email", redact.Email(email)))
		return nil, fmt.Errorf("failed to load reset code: %w", err)
	}
	if usedAt.Valid {
		rc.UsedAt = &usedAt.Time
	}
	return &rc, nil
}

// MarkUsed implements store.ResetCodeStore.MarkUsed
func (s *PostgresResetCodeStore) MarkUsed(ctx context.Context, code *domain.ResetCode) error {
	if code.UsedAt == nil {
		return domain.NewValidationError("used_at", "is required", nil)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE password_reset_codes SET used_at = $1 WHERE id = $2 AND used_at IS NULL`,
		*code.UsedAt, code.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark reset code used",
			slog.String("error", redact.Error(err)),
			slog.Int64("code_id", code.ID))
		return fmt.Errorf("failed to mark reset code used: %w", err)
	}
	return CheckRowsAffected(result, store.ErrResetCodeNotFound)
}

// RecordFailedAttempt implements store.ResetCodeStore.RecordFailedAttempt
func (s *PostgresResetCodeStore) RecordFailedAttempt(ctx context.Context, code *domain.ResetCode) error {
	err := s.db.QueryRowContext(ctx,
		`UPDATE password_reset_codes SET failed_attempts = failed_attempts + 1
		 WHERE id = $1 AND used_at IS NULL
		 RETURNING failed_attempts`,
		code.ID).Scan(&code.FailedAttempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrResetCodeNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to record reset code attempt",
			slog.String("error", redact.Error(err)),
			slog.Int64("code_id", code.ID))
		return fmt.Errorf("failed to record reset code attempt: %w", err)
	}
	return nil
}
