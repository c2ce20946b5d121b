package domain

import "time"

// MaxResetCodeAttempts is the number of wrong guesses after which a reset code
// can no longer be redeemed.
const MaxResetCodeAttempts = 5

// ResetCode is a single-use, time-bounded password reset code bound to an email.
// Only the hash of the code is kept.
type ResetCode struct {
	ID        int64
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time

	FailedAttempts int
}

// Usable reports whether the code is unused, not expired at now and has not
// run out of attempts.
func (c *ResetCode) Usable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt) && c.FailedAttempts < MaxResetCodeAttempts
}


// MarkUsed records that the code was redeemed at now.
func (c *ResetCode) MarkUsed(now time.Time) {
	c.UsedAt = &now
}
