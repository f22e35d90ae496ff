package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dealdesk.org/internal/auth"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const tokenTTL = 1 * time.Hour

// handleToken exchanges email+password for a bearer token. Invalid email and
// invalid password answer identically so the endpoint cannot be used to probe
// which accounts exist.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	profile, err := a.profiles.FindProfileByEmail(r.Context(), email)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	if profile.Status != auth.ProfileStatusActive || auth.VerifyPassword(profile.PasswordHash, req.Password) != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(profile.UserID, tokenTTL)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), profile.Context(), "auth.token.issued", "profile", profile.UserID, nil)

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(tokenTTL),
	})
}
