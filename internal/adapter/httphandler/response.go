package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

// writeError maps core errors to response statuses.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		validationErr   *domain.ValidationError
		httpErr         *domain.HTTPError
		connectivityErr *domain.ConnectivityError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, log, http.StatusUnprocessableEntity,
			ValidationErrors{Errors: validationErr.Fields})
		log.Info("validation failed", "err", err)
	case errors.As(err, &httpErr):
		http.Error(w, httpErr.Body, http.StatusBadGateway)
		log.Warn("backend rejected request", "err", err)
	case errors.As(err, &connectivityErr):
		http.Error(w, connectivityErr.Error(), http.StatusServiceUnavailable)
		log.Error("backend is unreachable", "err", err)
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrNoFormOpen),
		errors.Is(err, domain.ErrNoPendingDelete),
		errors.Is(err, domain.ErrUnavailable),
		errors.Is(err, domain.ErrDeleteBlocked):
		http.Error(w, err.Error(), http.StatusConflict)
		log.Info("conflict", "err", err)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		log.Info("not found", "err", err)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		log.Error("unexpected error", "err", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
