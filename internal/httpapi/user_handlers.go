package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/rbac"
)

type createUserRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsAdmin  *bool   `json:"is_admin"`
	Status   *string `json:"status"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id == "me" {
		a.whoAmI(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, id)
	case http.MethodPatch:
		a.updateUser(w, r, id)
	case http.MethodDelete:
		a.deleteUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// whoAmI reflects the resolved identity plus its effective permissions.
func (a *API) whoAmI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	uc, err := auth.RequireAuth(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        uc,
		"permissions": rbac.RolePermissions(uc.Role),
	})
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermUsersView)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	organizationID := uc.OrganizationID
	if uc.IsAdmin {
		organizationID = strings.TrimSpace(r.URL.Query().Get("organization_id"))
	}
	profiles, err := a.profiles.ListProfiles(r.Context(), organizationID)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": profiles})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.RequireAdmin(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || strings.TrimSpace(req.OrganizationID) == "" {
		writeError(w, r, http.StatusBadRequest, "email, password and organization_id are required")
		return
	}
	role := rbac.Role(strings.TrimSpace(req.Role))
	if role == "" {
		role = rbac.RoleVisitor
	}
	if !rbac.Assignable(role) {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile := auth.Profile{
		OrganizationID: strings.TrimSpace(req.OrganizationID),
		Email:          email,
		Role:           role,
		PasswordHash:   hash,
		Status:         auth.ProfileStatusActive,
	}
	if err := a.profiles.CreateProfile(r.Context(), &profile); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	a.trail.Record(r.Context(), uc, "user.create", "profile", profile.UserID, map[string]any{
		"role":            string(role),
		"organization_id": profile.OrganizationID,
	})

	w.Header().Set("Location", "/v1/users/"+profile.UserID)
	writeJSON(w, http.StatusCreated, profile)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermUsersView)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	profile, err := a.loadScopedProfile(w, r, id, uc)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermUsersUpdate)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if _, err := a.loadScopedProfile(w, r, id, uc); err != nil {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Privilege-bearing fields are admin-gated regardless of users:update.
	if req.Role != nil || req.IsAdmin != nil || req.Status != nil {
		if _, err := auth.RequireAdmin(r.Context()); err != nil {
			handleAuthError(w, r, err)
			return
		}
	}

	upd := auth.ProfileUpdate{IsAdmin: req.IsAdmin, Status: req.Status}
	changed := []string{}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			writeError(w, r, http.StatusBadRequest, "email must not be empty")
			return
		}
		upd.Email = &email
		changed = append(changed, "email")
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		upd.Password = &hash
		changed = append(changed, "password")
	}
	if req.Role != nil {
		role := rbac.Role(strings.TrimSpace(*req.Role))
		if !rbac.Assignable(role) {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
		upd.Role = &role
		changed = append(changed, "role")
	}
	if req.IsAdmin != nil {
		changed = append(changed, "is_admin")
	}
	if req.Status != nil {
		if *req.Status != auth.ProfileStatusActive && *req.Status != auth.ProfileStatusDisabled {
			writeError(w, r, http.StatusBadRequest, "unknown status")
			return
		}
		changed = append(changed, "status")
	}

	profile, err := a.profiles.UpdateProfile(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	a.trail.Record(r.Context(), uc, "user.update", "profile", id, map[string]any{
		"changed": changed,
	})

	writeJSON(w, http.StatusOK, profile)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermUsersDelete)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if id == uc.UserID {
		writeError(w, r, http.StatusConflict, "cannot delete your own profile")
		return
	}
	if _, err := a.loadScopedProfile(w, r, id, uc); err != nil {
		return
	}

	if err := a.profiles.DeleteProfile(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	a.trail.Record(r.Context(), uc, "user.delete", "profile", id, nil)

	w.WriteHeader(http.StatusNoContent)
}

// loadScopedProfile fetches the target profile and enforces the tenant
// boundary: non-admins only see profiles in their own organization, and a
// foreign profile answers exactly like a missing one. On error the response
// has already been written.
func (a *API) loadScopedProfile(w http.ResponseWriter, r *http.Request, id string, uc auth.UserContext) (auth.Profile, error) {
	profile, err := a.profiles.FindProfile(r.Context(), id)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
		return auth.Profile{}, err
	case err != nil:
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return auth.Profile{}, err
	}
	if profile.OrganizationID != uc.OrganizationID && !uc.IsAdmin {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return auth.Profile{}, auth.ErrAccessDenied
	}
	return profile, nil
}
