package httpapi

import (
	"net/http"
	"strings"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/market"
	"dealdesk.org/internal/rbac"
)

type createNDARequest struct {
	DealID string `json:"deal_id"`
}

func (a *API) handleNDAsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createNDA(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handleNDAResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/ndas/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if strings.HasSuffix(path, "/sign") {
		id := strings.TrimSuffix(strings.TrimSuffix(path, "/sign"), "/")
		if id == "" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.signNDA(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getNDA(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) createNDA(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermNDAsCreate)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req createNDARequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	nda := market.NDA{
		OrganizationID: uc.OrganizationID,
		DealID:         strings.TrimSpace(req.DealID),
	}
	if err := a.market.CreateNDA(r.Context(), &nda); err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "nda.create", "nda", nda.ID, map[string]any{
		"deal_id": nda.DealID,
	})

	w.Header().Set("Location", "/v1/ndas/"+nda.ID)
	writeJSON(w, http.StatusCreated, nda)
}

func (a *API) getNDA(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermNDAsView)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "ndas", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	nda, err := a.market.GetNDA(r.Context(), id)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nda)
}

func (a *API) signNDA(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermNDAsSign)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "ndas", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	nda, err := a.market.SignNDA(r.Context(), id, uc.UserID)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "nda.sign", "nda", id, map[string]any{
		"deal_id": nda.DealID,
	})

	writeJSON(w, http.StatusOK, nda)
}
