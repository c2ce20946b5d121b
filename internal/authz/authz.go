package authz

import (
	"context"
	"errors"

	"github.com/coursehub/coursehub-api/internal/domain"
)

var (
	// ErrUnauthenticated is returned when no principal is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the principal fails the policy.
	ErrForbidden = errors.New("permission denied")
)

// Principal is the authenticated caller, taken from a verified token.
type Principal struct {
	Username string
	Role     domain.Role
}

// IsAdmin reports whether the principal has the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.Username == "" {
		return Principal{}, false
	}
	return p, true
}

// Policy decides whether p may proceed. It returns nil to allow.
type Policy func(ctx context.Context, p Principal) error

// Enforce evaluates policy against the principal in ctx and returns the principal
// when allowed.
func Enforce(ctx context.Context, policy Policy) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	if policy == nil {
		return p, nil
	}
	if err := policy(ctx, p); err != nil {
		return Principal{}, err
	}
	return p, nil
}

// Authenticated allows any principal.
func Authenticated() Policy {
	return func(context.Context, Principal) error { return nil }
}

// AdminOnly allows only ADMIN.
func AdminOnly() Policy {
	return func(_ context.Context, p Principal) error {
		if p.IsAdmin() {
			return nil
		}
		return ErrForbidden
	}
}

// UsernameLookup returns the username of the user with the given id.
type UsernameLookup func(ctx context.Context, id int64) (string, error)

// AdminOrSelf allows ADMIN, or the user whose id is targetID. The target is
// only looked up for non-admins; a failed lookup is returned as is.
func AdminOrSelf(usernameOf UsernameLookup, targetID int64) Policy {
	return func(ctx context.Context, p Principal) error {
		if p.IsAdmin() {
			return nil
		}
		username, err := usernameOf(ctx, targetID)
		if err != nil {
			return err
		}
		if username == p.Username {
			return nil
		}
		return ErrForbidden
	}
}

// OwnerLookup returns the user id owning a resource.
type OwnerLookup func(ctx context.Context) (int64, error)

// ActorLookup resolves the user id of the principal.
type ActorLookup func(ctx context.Context, p Principal) (int64, error)

// AdminOrOwner allows ADMIN or the owner of a resource. The owner is loaded
// first for every principal, so a missing resource is reported even to admins.
func AdminOrOwner(loadOwner OwnerLookup, actorID ActorLookup) Policy {
	return func(ctx context.Context, p Principal) error {
		ownerID, err := loadOwner(ctx)
		if err != nil {
			return err
		}
		if p.IsAdmin() {
			return nil
		}
		id, err := actorID(ctx, p)
		if err != nil {
			return err
		}
		if id == ownerID {
			return nil
		}
		return ErrForbidden
	}
}

// HasRole allows principals holding one of roles.
func HasRole(roles ...domain.Role) Policy {
	return func(_ context.Context, p Principal) error {
		for _, r := range roles {
			if p.Role == r {
				return nil
			}
		}
		return ErrForbidden
	}
}
