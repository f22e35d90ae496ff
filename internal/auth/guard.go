package auth

import (
	"context"

	"dealdesk.org/internal/rbac"
)

// The guard is the single choke point for protected routes. Handlers call
// one of these before touching any store; the authn middleware is expected
// to have resolved the identity into the request context already.

// RequireAuth returns the resolved identity or ErrUnauthenticated.
func RequireAuth(ctx context.Context) (UserContext, error) {
	uc, ok := UserFromContext(ctx)
	if !ok {
		return UserContext{}, ErrUnauthenticated
	}
	return uc, nil
}

// RequirePermission returns the identity iff its role holds perm. Absence of
// an explicit grant is a deny; there is no default allow and no role
// hierarchy to fall back to.
func RequirePermission(ctx context.Context, perm rbac.Permission) (UserContext, error) {
	uc, err := RequireAuth(ctx)
	if err != nil {
		return UserContext{}, err
	}
	if !rbac.Has(uc.Role, perm) {
		return UserContext{}, ErrPermissionDenied
	}
	return uc, nil
}

// RequireAdmin returns the identity iff its profile carries the admin flag.
func RequireAdmin(ctx context.Context) (UserContext, error) {
	uc, err := RequireAuth(ctx)
	if err != nil {
		return UserContext{}, err
	}
	if !uc.IsAdmin {
		return UserContext{}, ErrAdminRequired
	}
	return uc, nil
}
