package auth

import (
	"context"
	"errors"
	"fmt"

	"dealdesk.org/internal/ids"
)

// ScopeValidator enforces the tenant boundary: a request may only touch
// resources owned by its own organization unless the caller is an admin.
// Every id-parameterized route runs this after the permission check and
// before any mutation.
type ScopeValidator struct {
	store ScopeStore
}

// NewScopeValidator constructs a validator over the given store.
func NewScopeValidator(store ScopeStore) (*ScopeValidator, error) {
	if store == nil {
		return nil, errors.New("auth: scope store is required")
	}
	return &ScopeValidator{store: store}, nil
}

// AssertResourceInOrganization confirms the resource in table belongs to the
// caller's organization. A row owned by another tenant and a row that does
// not exist are equally terminal here; the HTTP layer collapses both so
// responses never reveal whether a foreign resource exists.
func (v *ScopeValidator) AssertResourceInOrganization(ctx context.Context, resourceID, table string, uc UserContext) error {
	if !ids.IsValid(resourceID) {
		return ErrNotFound
	}
	owner, err := v.store.ResourceOrganization(ctx, table, resourceID)
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("%w: resolve resource owner: %v", ErrUnavailable, err)
	}
	if owner != uc.OrganizationID && !uc.IsAdmin {
		return ErrAccessDenied
	}
	return nil
}
