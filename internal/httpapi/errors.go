package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"dealdesk.org/internal/auth"
	"dealdesk.org/internal/market"
	"dealdesk.org/internal/obs"
)

// handleAuthError maps the pipeline's error kinds onto HTTP statuses. The
// mapping is by kind, never by message text. ErrAccessDenied and ErrNotFound
// collapse into the same 404 so a response never reveals whether a foreign
// tenant's resource exists.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		obs.AuthDenied("unauthenticated")
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrPermissionDenied):
		obs.AuthDenied("permission_denied")
		writeError(w, r, http.StatusForbidden, "permission denied")
	case errors.Is(err, auth.ErrAdminRequired):
		obs.AuthDenied("admin_required")
		writeError(w, r, http.StatusForbidden, "admin privileges required")
	case errors.Is(err, auth.ErrAccessDenied), errors.Is(err, auth.ErrNotFound):
		obs.AuthDenied("scope")
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, auth.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handleMarketError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, market.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, market.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
