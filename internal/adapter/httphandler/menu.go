package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

// GET v1/menu (200 OK)
// PUT v1/menu/filter JSON {"search" string, "category" string} (200 OK, 400 Bad request)
// POST v1/menu/reload (200 OK, 502, 503)

type MenuHandler struct {
	admin port.MenuAdmin
}

func RegisterMenu(mux *http.ServeMux, admin port.MenuAdmin) {
	h := MenuHandler{admin}
	mux.HandleFunc("GET /v1/menu", h.GetMenu)
	mux.HandleFunc("PUT /v1/menu/filter", h.PutFilter)
	mux.HandleFunc("POST /v1/menu/reload", h.PostReload)
}

func (h MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	const op = "MenuHandler.GetMenu"
	log := slog.With("op", op)

	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
}

func (h MenuHandler) PutFilter(w http.ResponseWriter, r *http.Request) {
	const op = "MenuHandler.PutFilter"
	log := slog.With("op", op)

	var f Filter
	if err := decodeJSON(r, &f); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	h.admin.SetFilter(domain.Filter{Search: f.Search, CategoryID: f.Category})
	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
}

func (h MenuHandler) PostReload(w http.ResponseWriter, r *http.Request) {
	const op = "MenuHandler.PostReload"
	log := slog.With("op", op)

	if err := h.admin.Reload(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}
	menu := h.admin.Snapshot()
	writeJSON(w, log, http.StatusOK, toMenu(menu))
	log.Info("reloaded", "nItems", menu.Total)
}
