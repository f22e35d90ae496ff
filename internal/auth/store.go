package auth

import "context"

// ProfileStore is the identity half of the external store. Implementations
// return ErrNotFound for missing rows and may wrap transport failures; the
// resolver translates both into the pipeline's error kinds.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	FindProfile(ctx context.Context, userID string) (Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (Profile, error)
	ListProfiles(ctx context.Context, organizationID string) ([]Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (Profile, error)
	DeleteProfile(ctx context.Context, userID string) error
}

// ScopeStore answers which organization owns a resource row in a named
// table. It is the single query behind multi-tenant isolation.
type ScopeStore interface {
	ResourceOrganization(ctx context.Context, table, resourceID string) (string, error)
}
