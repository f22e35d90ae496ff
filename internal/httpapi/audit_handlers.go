package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/rbac"
)

// handleAuditLog serves the trail to holders of audit:view. Admins may pass
// organization_id to filter or omit it to see everything; in the current
// matrix only admins hold the permission.
func (a *API) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	uc, err := auth.RequirePermission(r.Context(), rbac.PermAuditView)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 500 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = v
	}

	organizationID := strings.TrimSpace(r.URL.Query().Get("organization_id"))
	if !uc.IsAdmin {
		organizationID = uc.OrganizationID
	}

	entries, err := a.trail.List(r.Context(), organizationID, limit)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": entries})
}
