package store

import (
	"context"
	"database/sql"

	"github.com/coursehub/coursehub-api/internal/domain"
)

// ResetCodeStore persists password reset codes.
type ResetCodeStore interface {
	// Create saves a new code and sets code.ID.
	Create(ctx context.Context, code *domain.ResetCode) error

	// GetLatestUnused returns the newest unused code for email, locking the row when
	// called inside a transaction. Returns ErrResetCodeNotFound if there is none.
	GetLatestUnused(ctx context.Context, email string) (*domain.ResetCode, error)

	// MarkUsed records the redemption time. Returns ErrResetCodeNotFound if the code
	// does not exist or was already used.
	MarkUsed(ctx context.Context, code *domain.ResetCode) error

	// RecordFailedAttempt increments the failed attempt counter of an unused code
	// and stores the new count in code.FailedAttempts. Returns ErrResetCodeNotFound
	// if the code does not exist or was already used.
	RecordFailedAttempt(ctx context.Context, code *domain.ResetCode) error

	WithTx(tx *sql.Tx) ResetCodeStore
}
