package auth

import (
	"context"
	"errors"
	"fmt"
)

// Resolver turns a bearer credential into a UserContext by verifying the
// token and loading the subject's profile row. It holds no per-request state
// and performs no caching.
type Resolver struct {
	profiles ProfileStore
}

// NewResolver constructs a Resolver over the given profile store.
func NewResolver(profiles ProfileStore) (*Resolver, error) {
	if profiles == nil {
		return nil, errors.New("auth: profile store is required")
	}
	return &Resolver{profiles: profiles}, nil
}

// Resolve verifies the credential and assembles the request identity.
// A valid token whose subject has no profile row is treated as not fully
// provisioned and therefore unauthenticated, never as an empty identity.
func (r *Resolver) Resolve(ctx context.Context, token string) (UserContext, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return UserContext{}, err
	}

	profile, err := r.profiles.FindProfile(ctx, claims.Subject)
	switch {
	case errors.Is(err, ErrNotFound):
		return UserContext{}, ErrUnauthenticated
	case err != nil:
		return UserContext{}, fmt.Errorf("%w: load profile: %v", ErrUnavailable, err)
	}
	if profile.Status != ProfileStatusActive {
		return UserContext{}, ErrUnauthenticated
	}
	return profile.Context(), nil
}
