package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/services"
	"tally/internal/store"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldError, err.Error())
	}
}

// writeError maps domain errors onto HTTP status codes. Validation failures
// carry the per-field messages so clients can render them inline.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields core.FieldErrors
	switch {
	case errors.As(err, &fields):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: fields,
		})
	case errors.Is(err, services.ErrBuiltinCategory):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, store.ErrPermissionDenied):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
	case errors.Is(err, store.ErrUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// parseKind reads the kind query parameter, defaulting to expense.
func parseKind(r *http.Request) (core.Kind, bool) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return core.Expense, true
	}
	kind := core.Kind(raw)
	return kind, kind.Valid()
}

// parseWindow reads window selection parameters: window=month (default,
// with offset counting months back from the current one), window=today, or
// window=all.
func parseWindow(r *http.Request, now time.Time) (core.Window, bool) {
	q := r.URL.Query()
	switch q.Get("window") {
	case "", "month":
		offset := 0
		if raw := q.Get("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n > 0 {
				return core.Window{}, false
			}
			offset = n
		}
		return core.MonthRange(now, offset), true
	case "today":
		return core.TodayRange(now), true
	case "all":
		return core.AllTimeRange(now), true
	}
	return core.Window{}, false
}

// pathID extracts the trailing id of a /api/<collection>/{id} path.
func pathID(r *http.Request, prefix string) string {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
