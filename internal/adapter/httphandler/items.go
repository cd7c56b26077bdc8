package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/menu-admin/internal/core/port"
)

// POST v1/items/form JSON {"id" int|null} (200 OK, 404, 409)
// DELETE v1/items/form (204 No content, 409)
// POST v1/items/form/submit JSON or multipart (200 OK, 400, 409, 422, 502, 503)
// PATCH v1/items/{id}/availability (200 OK, 404, 409, 502, 503)
// POST v1/items/{id}/delete (204 No content, 404, 409)
// POST v1/items/delete/confirm (200 OK, 409, 502, 503)
// DELETE v1/items/delete (204 No content)

type ItemsHandler struct {
	admin         port.MenuAdmin
	maxImageBytes int64
}

func RegisterItems(
	mux *http.ServeMux, admin port.MenuAdmin, maxImageBytes int64,
) {
	h := ItemsHandler{admin, maxImageBytes}
	mux.HandleFunc("POST /v1/items/form", h.PostForm)
	mux.HandleFunc("DELETE /v1/items/form", h.DeleteForm)
	mux.HandleFunc("POST /v1/items/form/submit", h.PostSubmit)
	mux.HandleFunc("PATCH /v1/items/{id}/availability", h.PatchAvailability)
	mux.HandleFunc("POST /v1/items/{id}/delete", h.PostDelete)
	mux.HandleFunc("POST /v1/items/delete/confirm", h.PostConfirmDelete)
	mux.HandleFunc("DELETE /v1/items/delete", h.DeleteCancelDelete)
}

func (h ItemsHandler) PostForm(w http.ResponseWriter, r *http.Request) {
	const op = "ItemsHandler.PostForm"
	log := slog.With("op", op)

	var req OpenForm
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	form, err := h.admin.OpenItemForm(req.ID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromItemForm(form))
}

func (h ItemsHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	const op = "ItemsHandler.DeleteForm"
	log := slog.With("op", op)

	if err := h.admin.CloseItemForm(); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ItemsHandler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "ItemsHandler.PostSubmit"
	log := slog.With("op", op)

	var jsonForm ItemForm
	s, err := readSubmission(w, r, h.maxImageBytes, &jsonForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Warn("failed to read form", "err", err)
		return
	}

	if err := h.admin.SubmitItemForm(r.Context(), s.itemForm(jsonForm)); err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
	log.Info("item form submitted")
}

func (h ItemsHandler) PatchAvailability(w http.ResponseWriter, r *http.Request) {
	const op = "ItemsHandler.PatchAvailability"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.admin.ToggleItemAvailability(r.Context(), id); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
}

func (h ItemsHandler) PostDelete(w http.ResponseWriter, r *http.Request) {
	const op = "ItemsHandler.PostDelete"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.admin.RequestItemDelete(id); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ItemsHandler) PostConfirmDelete(w http.ResponseWriter, r *http.Request) {
	const op = "ItemsHandler.PostConfirmDelete"
	log := slog.With("op", op)

	if err := h.admin.ConfirmItemDelete(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
}

func (h ItemsHandler) DeleteCancelDelete(w http.ResponseWriter, r *http.Request) {
	h.admin.CancelItemDelete()
	w.WriteHeader(http.StatusNoContent)
}
