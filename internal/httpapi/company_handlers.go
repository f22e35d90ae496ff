package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/market"
	"dealdesk.org/internal/rbac"
)

type createCompanyRequest struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Region      string `json:"region"`
	Revenue     int64  `json:"revenue"`
	Description string `json:"description"`
}

type updateCompanyRequest struct {
	Name        *string `json:"name"`
	Sector      *string `json:"sector"`
	Region      *string `json:"region"`
	Revenue     *int64  `json:"revenue"`
	Description *string `json:"description"`
}

func (a *API) handleCompaniesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createCompany(w, r)
	case http.MethodGet:
		a.searchCompanies(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCompanyResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/companies/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getCompany(w, r, id)
	case http.MethodPatch:
		a.updateCompany(w, r, id)
	case http.MethodDelete:
		a.deleteCompany(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createCompany(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermCompaniesCreate)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req createCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	company := market.Company{
		OrganizationID: uc.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Sector:         strings.TrimSpace(req.Sector),
		Region:         strings.TrimSpace(req.Region),
		Revenue:        req.Revenue,
		Description:    req.Description,
	}
	if err := a.market.CreateCompany(r.Context(), &company); err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "company.create", "company", company.ID, map[string]any{
		"name": company.Name,
	})

	w.Header().Set("Location", "/v1/companies/"+company.ID)
	writeJSON(w, http.StatusCreated, company)
}

func (a *API) getCompany(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermCompaniesView)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "companies", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	company, err := a.market.GetCompany(r.Context(), id)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (a *API) updateCompany(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermCompaniesUpdate)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "companies", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	var req updateCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	upd := market.CompanyUpdate{
		Name:        req.Name,
		Sector:      req.Sector,
		Region:      req.Region,
		Revenue:     req.Revenue,
		Description: req.Description,
	}
	company, err := a.market.UpdateCompany(r.Context(), id, upd)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "company.update", "company", id, map[string]any{
		"changed": changedCompanyFields(req),
	})

	writeJSON(w, http.StatusOK, company)
}

func (a *API) deleteCompany(w http.ResponseWriter, r *http.Request, id string) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermCompaniesDelete)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if err := a.scope.AssertResourceInOrganization(r.Context(), id, "companies", uc); err != nil {
		handleAuthError(w, r, err)
		return
	}

	if err := a.market.DeleteCompany(r.Context(), id); err != nil {
		handleMarketError(w, r, err)
		return
	}

	a.trail.Record(r.Context(), uc, "company.delete", "company", id, nil)

	w.WriteHeader(http.StatusNoContent)
}

// searchCompanies is tenant-scoped for everyone except admins, who see the
// whole marketplace.
func (a *API) searchCompanies(w http.ResponseWriter, r *http.Request) {
	uc, err := auth.RequirePermission(r.Context(), rbac.PermCompaniesSearch)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	limit := 25
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = v
	}

	organizationID := uc.OrganizationID
	if uc.IsAdmin {
		organizationID = ""
	}
	items, err := a.market.SearchCompanies(r.Context(), organizationID, r.URL.Query().Get("q"), limit)
	if err != nil {
		handleMarketError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func changedCompanyFields(req updateCompanyRequest) []string {
	var out []string
	if req.Name != nil {
		out = append(out, "name")
	}
	if req.Sector != nil {
		out = append(out, "sector")
	}
	if req.Region != nil {
		out = append(out, "region")
	}
	if req.Revenue != nil {
		out = append(out, "revenue")
	}
	if req.Description != nil {
		out = append(out, "description")
	}
	return out
}
