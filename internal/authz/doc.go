// Package authz decides whether the authenticated principal may perform an
// operation. Policies are plain functions evaluated before the operation runs:
// role checks (AdminOnly) and ownership checks (AdminOrSelf, AdminOrOwner) that
// resolve the target's owner through a caller-supplied lookup.
//
// A missing principal is ErrUnauthenticated; a present principal that fails a
// policy is ErrForbidden. Lookup errors such as not-found are returned unchanged
// so callers can report a missing resource rather than a denial.
package authz
