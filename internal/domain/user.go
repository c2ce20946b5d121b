package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Role is the authorization role of a user. It is also the "scope" claim of issued tokens.
type Role string

// Known roles.
const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Password and username length limits. 72 bytes is bcrypt's input limit.
const (
	MinUsernameLength = 3
	MinPasswordLength = 3
	MaxPasswordLength = 72
)

var fieldValidator = validator.New()

// ParseRole converts a role name to a Role. Surrounding whitespace and quotes are
// ignored and matching is case-insensitive. Unknown names return ErrRoleNotExisted.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.Trim(strings.TrimSpace(s), `"`)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrRoleNotExisted, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// Assignable reports whether r may be granted through role assignment.
// ADMIN is only ever provisioned directly in the store.
func (r Role) Assignable() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User is a registered identity of the marketplace.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Password       string    `json:"-"` // plaintext, only set transiently before hashing
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	Balance        int64     `json:"balance"` // minor currency units
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a STUDENT with zero balance. The plaintext password is validated
// here and must be hashed by the caller before the user is stored.
func NewUser(username, email, fullName, password string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		FullName:  strings.TrimSpace(fullName),
		Password:  password,
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the user's fields.
func (u *User) Validate() error {
	if len(u.Username) < MinUsernameLength {
		return NewValidationError("username",
			fmt.Sprintf("must be at least %d characters", MinUsernameLength), nil)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrRoleNotExisted, u.Role)
	}
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "is required", nil)
	}
	return nil
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required", nil)
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		return NewValidationError("email", "has invalid format", nil)
	}
	return nil
}

// ValidatePassword checks the plaintext password length limits.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return NewValidationError("password",
			fmt.Sprintf("must be at least %d characters", MinPasswordLength), nil)
	case len(password) > MaxPasswordLength:
		return NewValidationError("password",
			fmt.Sprintf("must be at most %d characters", MaxPasswordLength), nil)
	}
	return nil
}
