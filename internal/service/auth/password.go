package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way hash of plaintext. It returns ctx.Err() if the
	// context ends before hashing completes.
	Hash(ctx context.Context, plaintext string) (string, error)

	// Compare returns nil when plaintext matches hashed, ErrPasswordMismatch when
	// it does not, and ErrMalformedHash when hashed cannot be parsed.
	Compare(hashed, plaintext string) error

	// Verify reports whether plaintext matches hashed. It fails closed.
	Verify(hashed, plaintext string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the given cost. Costs outside bcrypt's
// accepted range fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash implements PasswordHasher. bcrypt cannot be interrupted, so the hash runs
// in its own goroutine and an ended context abandons the result.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		hash []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		done <- result{hash: hash, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("failed to hash password: %w", r.err)
		}
		return string(r.hash), nil
	}
}

// Compare implements PasswordHasher.
func (h *BcryptHasher) Compare(hashed, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword),
		errors.Is(err, bcrypt.ErrPasswordTooLong):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// Verify implements PasswordHasher.
func (h *BcryptHasher) Verify(hashed, plaintext string) bool {
	return h.Compare(hashed, plaintext) == nil
}
