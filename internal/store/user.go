package store

import (
	"context"
	"database/sql"

	"github.com/coursehub/coursehub-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user and sets user.ID.
	// Returns ErrUsernameExists or ErrEmailExists when a unique constraint is violated.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username. Returns ErrUserNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns all users ordered by ID.
	List(ctx context.Context) ([]*domain.User, error)

	// Update saves email, full name and hashed password of an existing user.
	// Returns ErrUserNotFound if the user does not exist and ErrEmailExists on collision.
	Update(ctx context.Context, user *domain.User) error

	// UpdateRole changes a user's role. Returns ErrUserNotFound if absent.
	UpdateRole(ctx context.Context, id int64, role domain.Role) error

	// UpdatePassword replaces the hashed password of the user with the given email.
	// Returns ErrUserNotFound if absent.
	UpdatePassword(ctx context.Context, email, hashedPassword string) error

	// Delete removes a user. Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
