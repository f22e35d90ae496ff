// Package httpapi is the HTTP surface of the service. Every protected route
// runs the same pipeline: authn middleware resolves the caller, the handler
// asks the guard for the needed permission, id-parameterized routes validate
// tenant scope, and successful mutations land in the audit trail.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"dealdesk.org/internal/audit"
	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/market"
	"dealdesk.org/internal/obs"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the collaborators the API needs.
type Config struct {
	Version  string
	Ready    ReadyProbe
	Resolver *auth.Resolver
	Profiles auth.ProfileStore
	Scope    *auth.ScopeValidator
	Market   market.Service
	Trail    *audit.Recorder
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	resolver *auth.Resolver
	profiles auth.ProfileStore
	scope    *auth.ScopeValidator
	market   market.Service
	trail    *audit.Recorder

	rateBurst  int
	ratePerSec int
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.Ready,
		version:    cfg.Version,
		resolver:   cfg.Resolver,
		profiles:   cfg.Profiles,
		scope:      cfg.Scope,
		market:     cfg.Market,
		trail:      cfg.Trail,
		rateBurst:  50,
		ratePerSec: 25,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleToken)

	a.mux.HandleFunc("/v1/companies", a.handleCompaniesCollection)
	a.mux.HandleFunc("/v1/companies/", a.handleCompanyResource)
	a.mux.HandleFunc("/v1/deals", a.handleDealsCollection)
	a.mux.HandleFunc("/v1/deals/", a.handleDealResource)
	a.mux.HandleFunc("/v1/ndas", a.handleNDAsCollection)
	a.mux.HandleFunc("/v1/ndas/", a.handleNDAResource)
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/audit", a.handleAuditLog)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RequestID(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "dealdesk-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "dealdesk-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
