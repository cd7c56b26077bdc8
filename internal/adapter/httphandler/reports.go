package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

// GET v1/reports/changes/{kind}/{id} (200 OK, 400, 404, 503)

type ReportsHandler struct {
	changes port.MenuChangesReader
}

// RegisterReports serves change reports. A nil reader answers 503, the
// broker is optional.
func RegisterReports(mux *http.ServeMux, changes port.MenuChangesReader) {
	h := ReportsHandler{changes}
	mux.HandleFunc("GET /v1/reports/changes/{kind}/{id}", h.GetLastChange)
}

func (h ReportsHandler) GetLastChange(w http.ResponseWriter, r *http.Request) {
	const op = "ReportsHandler.GetLastChange"
	log := slog.With("op", op)

	if h.changes == nil {
		http.Error(w, "change reports are disabled", http.StatusServiceUnavailable)
		return
	}

	kind := domain.EntityKind(r.PathValue("kind"))
	if kind != domain.KindItem && kind != domain.KindCategory {
		http.Error(w, "unknown entity kind", http.StatusBadRequest)
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	change, err := h.changes.LastChange(kind, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toMenuChange(change))
}
