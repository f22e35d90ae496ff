package auth

import (
	"time"

	"dealdesk.org/internal/rbac"
)

const (
	ProfileStatusActive   = "active"
	ProfileStatusDisabled = "disabled"
)

// UserContext is the per-request identity every authorization decision runs
// against. It is rebuilt from the store on each request and never cached
// across requests; a stale role or organization is a privilege-escalation
// hazard.
type UserContext struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Role           rbac.Role `json:"role"`
	IsAdmin        bool      `json:"is_admin"`
}

// Profile is the stored identity row backing a UserContext. Role and IsAdmin
// are mutated only through admin-gated flows.
type Profile struct {
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	Role           rbac.Role `json:"role"`
	IsAdmin        bool      `json:"is_admin"`
	PasswordHash   string    `json:"-"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Context converts the stored row into the ephemeral request identity.
func (p Profile) Context() UserContext {
	return UserContext{
		UserID:         p.UserID,
		OrganizationID: p.OrganizationID,
		Role:           p.Role,
		IsAdmin:        p.IsAdmin,
	}
}

// ProfileUpdate carries optional field changes; nil means leave unchanged.
type ProfileUpdate struct {
	Email    *string
	Role     *rbac.Role
	IsAdmin  *bool
	Status   *string
	Password *string
}
