package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/service/auth"
	"github.com/coursehub/coursehub-api/internal/store"
)

// UserService provides registration and account management.
type UserService interface {
	// Register creates a STUDENT account. It is the only unauthenticated operation.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// GetUser returns a user. Allowed for admins and the user themself.
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// GetMyInfo returns the caller's own account.
	GetMyInfo(ctx context.Context) (*domain.User, error)

	// ListUsers returns every user. Admin only.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser changes email, full name or password. Allowed for admins and the user themself.
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error)

	// DeleteUser removes a user. Allowed for admins and the user themself.
	DeleteUser(ctx context.Context, id int64) error

	// AssignRole grants TEACHER or STUDENT. Allowed for admins and the user themself.
	AssignRole(ctx context.Context, id int64, roleName string) (*domain.User, error)

	// EmailExists reports whether an account uses email.
	EmailExists(ctx context.Context, email string) (bool, error)
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// UpdateUserInput holds optional changes; nil fields are left unchanged.
type UpdateUserInput struct {
	Email    *string
	FullName *string
	Password *string
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	db     store.TxBeginner
	logger *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	db store.TxBeginner,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", nil)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", nil)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", nil)
	}
	return &UserServiceImpl{
		users:  users,
		hasher: hasher,
		db:     db,
		logger: logger.With("component", "user_service"),
	}, nil
}

// Register validates the input, checks uniqueness and stores the new account.
// The pre-checks give early answers; the store's unique constraint still
// decides concurrent registrations.
func (s *UserServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Username, in.Email, in.FullName, in.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, store.ErrUsernameExists
	}
	exists, err = s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, store.ErrEmailExists
	}

	hashed, err := s.hasher.Hash(ctx, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("registration lost a uniqueness race", "username", user.Username)
		} else {
			s.logger.Error("failed to create user", "error", redact.Error(err))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser returns the user with id.
func (s *UserServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if _, err := authz.Enforce(ctx, authz.AdminOrSelf(usernameOf(s.users), id)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// GetMyInfo returns the account of the authenticated caller.
func (s *UserServiceImpl) GetMyInfo(ctx context.Context) (*domain.User, error) {
	p, err := authz.Enforce(ctx, authz.Authenticated())
	if err != nil {
		return nil, err
	}
	return s.users.GetByUsername(ctx, p.Username)
}

// ListUsers returns all users.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if _, err := authz.Enforce(ctx, authz.AdminOnly()); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// UpdateUser applies in to the user with id. A new password is hashed before
// the transaction starts.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	if _, err := authz.Enforce(ctx, authz.AdminOrSelf(usernameOf(s.users), id)); err != nil {
		return nil, err
	}

	var hashed string
	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		h, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hashed = h
	}

	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.users.WithTx(tx)

		user, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			if err := domain.ValidateEmail(email); err != nil {
				return err
			}
			user.Email = email
		}
		if in.FullName != nil {
			user.FullName = strings.TrimSpace(*in.FullName)
		}
		if hashed != "" {
			user.HashedPassword = hashed
		}
		user.UpdatedAt = time.Now().UTC()

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) && !store.IsDuplicateError(err) && !errors.Is(err, domain.ErrValidation) {
			s.logger.Error("failed to update user", "error", redact.Error(err), "user_id", id)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", id, "password_changed", hashed != "")
	return updated, nil
}

// DeleteUser removes the user with id.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if _, err := authz.Enforce(ctx, authz.AdminOrSelf(usernameOf(s.users), id)); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// AssignRole sets the role of the user with id. Only TEACHER and STUDENT can be
// assigned; any other name is ErrRoleNotExisted.
func (s *UserServiceImpl) AssignRole(ctx context.Context, id int64, roleName string) (*domain.User, error) {
	p, err := authz.Enforce(ctx, authz.AdminOrSelf(usernameOf(s.users), id))
	if err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, err
	}
	if !role.Assignable() {
		return nil, fmt.Errorf("%w: %s cannot be assigned", domain.ErrRoleNotExisted, role)
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	s.logger.Info("role assigned", "user_id", id, "role", role, "assigned_by", p.Username)
	return s.users.GetByID(ctx, id)
}

// EmailExists reports whether any account uses email.
func (s *UserServiceImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, strings.TrimSpace(email))
}
