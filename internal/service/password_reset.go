package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/events"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/service/auth"
	"github.com/coursehub/coursehub-api/internal/store"
)

// ResetCodeDigits is the length of a password reset code.
const ResetCodeDigits = 6

// DefaultResetCodeTTL is how long a reset code stays redeemable.
const DefaultResetCodeTTL = 15 * time.Minute

// PasswordResetService issues and redeems single-use password reset codes.
type PasswordResetService struct {
	users    store.UserStore
	codes    store.ResetCodeStore
	hasher   auth.PasswordHasher
	emitter  events.EventEmitter
	db       store.TxBeginner
	ttl      time.Duration
	timeFunc func() time.Time
	logger   *slog.Logger
}

// PasswordResetOption configures a PasswordResetService.
type PasswordResetOption func(*PasswordResetService)

// WithResetCodeTTL sets the code lifetime.
func WithResetCodeTTL(ttl time.Duration) PasswordResetOption {
	return func(s *PasswordResetService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithResetClock sets the time source.
func WithResetClock(now func() time.Time) PasswordResetOption {
	return func(s *PasswordResetService) {
		if now != nil {
			s.timeFunc = now
		}
	}
}

// NewPasswordResetService creates a PasswordResetService.
func NewPasswordResetService(
	users store.UserStore,
	codes store.ResetCodeStore,
	hasher auth.PasswordHasher,
	emitter events.EventEmitter,
	db store.TxBeginner,
	logger *slog.Logger,
	opts ...PasswordResetOption,
) (*PasswordResetService, error) {
	switch {
	case users == nil:
		return nil, domain.NewValidationError("users", "cannot be nil", nil)
	case codes == nil:
		return nil, domain.NewValidationError("codes", "cannot be nil", nil)
	case hasher == nil:
		return nil, domain.NewValidationError("hasher", "cannot be nil", nil)
	case emitter == nil:
		return nil, domain.NewValidationError("emitter", "cannot be nil", nil)
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", nil)
	}

	s := &PasswordResetService{
		users:    users,
		codes:    codes,
		hasher:   hasher,
		emitter:  emitter,
		db:       db,
		ttl:      DefaultResetCodeTTL,
		timeFunc: time.Now,
		logger:   logger.With("component", "password_reset_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestReset stores a new code for the account with email and emits a
// password_reset_requested event for delivery. Earlier unused codes remain
// valid until they expire; only the newest is redeemable.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	codeHash, err := s.hasher.Hash(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to hash reset code: %w", err)
	}

	now := s.timeFunc().UTC()
	rc := &domain.ResetCode{
		Email:     email,
		CodeHash:  codeHash,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.codes.Create(ctx, rc); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	event, err := events.NewPasswordResetRequested(email, code, rc.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create reset event: %w", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to dispatch reset code delivery",
			"email", redact.Email(email),
			"error", err)
		return fmt.Errorf("failed to dispatch reset code: %w", err)
	}

	s.logger.Info("password reset requested", "email", redact.Email(email), "expires_at", rc.ExpiresAt)
	return nil
}

// ResetPassword redeems code and sets a new password in one transaction. The
// newest unused code for email is locked, checked, marked used and the
// password replaced; any failure leaves both unchanged. A wrong guess is
// counted against the code, and after domain.MaxResetCodeAttempts wrong
// guesses the code is dead and a new one has to be requested.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var wrongCode *domain.ResetCode
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCodes := s.codes.WithTx(tx)

		rc, err := txCodes.GetLatestUnused(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrResetCodeNotFound) {
				return ErrInvalidResetCode
			}
			return err
		}

		now := s.timeFunc().UTC()
		if !rc.Usable(now) {
			return ErrInvalidResetCode
		}
		if !s.hasher.Verify(rc.CodeHash, strings.TrimSpace(code)) {
			// The counter must survive, so this transaction commits.
			if err := txCodes.RecordFailedAttempt(ctx, rc); err != nil {
				return err
			}
			wrongCode = rc
			return nil
		}

		rc.MarkUsed(now)
		if err := txCodes.MarkUsed(ctx, rc); err != nil {
			return err
		}
		return s.users.WithTx(tx).UpdatePassword(ctx, email, hashed)
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidResetCode) {
			s.logger.Error("failed to reset password", "email", redact.Email(email), "error", redact.Error(err))
		}
		return err
	}
	if wrongCode != nil {
		s.logger.Warn("wrong password reset code",
			"email", redact.Email(email),
			"failed_attempts", wrongCode.FailedAttempts)
		return ErrInvalidResetCode
	}

	s.logger.Info("password reset", "email", redact.Email(email))
	return nil
}

// generateResetCode returns a uniformly random zero-padded decimal code.
func generateResetCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < ResetCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", ResetCodeDigits, n.Int64()), nil
}
