package httpapi

import (
	"net/http"
	"strings"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/market"
	"dealdesk.org/internal/rbac"
)

type createDealRequest struct {
	CompanyID string `json:"company_id"`
	Stage     string `json:"stage"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type updateDealRequest struct {
	Stage    *string `json:"stage"`
	Amount   *int64  `json:"amount"`
	Currency *string `json:"currency"`
}

func (a *API) handleDealsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createDeal(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handleDealResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/deals/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getDeal(w, r, id)
	case http.MethodPatch:
		a.updateDeal(w, r, id)
	case http.MethodDelete:
		a.deleteDeal(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createDeal(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermDealsCreate)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req createDealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// A deal may reference a company from another tenant (buy-side interest
	// in a foreign listing), so the reference is only checked for existence,
	// not scope.
	deal := market.Deal{
		OrganizationID: uc.OrganizationID,
		CompanyID:      strings.TrimSpace(req.CompanyID),
		Stage:          strings.TrimSpace(req.Stage),
		Amount:         req.Amount,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
	}
	if err := a.market.CreateDeal(r.Context(), &deal); err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "deal.create", "deal", deal.ID, map[string]any{
		"company_id": deal.CompanyID,
		"stage":      deal.Stage,
	})

	w.Header().Set("Location", "/v1/deals/"+deal.ID)
	writeJSON(w, http.StatusCreated, deal)
}

func (a *API) getDeal(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermDealsView)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "deals", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	deal, err := a.market.GetDeal(r.Context(), id)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (a *API) updateDeal(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermDealsUpdate)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "deals", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req updateDealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	deal, err := a.market.UpdateDeal(r.Context(), id, market.DealUpdate{
		Stage:    req.Stage,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	changed := []string{}
	if req.Stage != nil {
		changed = append(changed, "stage")
	}
	if req.Amount != nil {
		changed = append(changed, "amount")
	}
	if req.Currency != nil {
		changed = append(changed, "currency")
	}
	a.trail.Record(r.Context(), uc, "deal.update", "deal", id, map[string]any{
		"changed": changed,
	})

	writeJSON(w, http.StatusOK, deal)
}

func (a *API) deleteDeal(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermDealsDelete)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "deals", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	if err := a.market.DeleteDeal(r.Context(), id); err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "deal.delete", "deal", id, nil)

	w.WriteHeader(http.StatusNoContent)
}
