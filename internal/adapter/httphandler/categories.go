package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/menu-admin/internal/core/port"
)

// Same shape as items. A blocked delete answers 409 with the guard
// reason in JSON.

type CategoriesHandler struct {
	admin         port.MenuAdmin
	maxImageBytes int64
}

func RegisterCategories(
	mux *http.ServeMux, admin port.MenuAdmin, maxImageBytes int64,
) {
	h := CategoriesHandler{admin, maxImageBytes}
	mux.HandleFunc("POST /v1/categories/form", h.PostForm)
	mux.HandleFunc("DELETE /v1/categories/form", h.DeleteForm)
	mux.HandleFunc("POST /v1/categories/form/submit", h.PostSubmit)
	mux.HandleFunc("POST /v1/categories/{id}/delete", h.PostDelete)
	mux.HandleFunc("POST /v1/categories/delete/confirm", h.PostConfirmDelete)
	mux.HandleFunc("DELETE /v1/categories/delete", h.DeleteCancelDelete)
}

func (h CategoriesHandler) PostForm(w http.ResponseWriter, r *http.Request) {
	const op = "CategoriesHandler.PostForm"
	log := slog.With("op", op)

	var req OpenForm
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	form, err := h.admin.OpenCategoryForm(req.ID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromCategoryForm(form))
}

func (h CategoriesHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	const op = "CategoriesHandler.DeleteForm"
	log := slog.With("op", op)

	if err := h.admin.CloseCategoryForm(); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CategoriesHandler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "CategoriesHandler.PostSubmit"
	log := slog.With("op", op)

	var jsonForm CategoryForm
	s, err := readSubmission(w, r, h.maxImageBytes, &jsonForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Warn("failed to read form", "err", err)
		return
	}

	err = h.admin.SubmitCategoryForm(r.Context(), s.categoryForm(jsonForm))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
	log.Info("category form submitted")
}

func (h CategoriesHandler) PostDelete(w http.ResponseWriter, r *http.Request) {
	const op = "CategoriesHandler.PostDelete"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	res, err := h.admin.RequestCategoryDelete(id)
	if err != nil {
		writeError(w, log, err)
		return
	}

	status := http.StatusOK
	if !res.Allowed {
		status = http.StatusConflict
	}
	writeJSON(w, log, status, Guard{Allowed: res.Allowed, Reason: res.Reason})
}

func (h CategoriesHandler) PostConfirmDelete(w http.ResponseWriter, r *http.Request) {
	const op = "CategoriesHandler.PostConfirmDelete"
	log := slog.With("op", op)

	if err := h.admin.ConfirmCategoryDelete(r.Context()); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toMenu(h.admin.Snapshot()))
}

func (h CategoriesHandler) DeleteCancelDelete(w http.ResponseWriter, r *http.Request) {
	h.admin.CancelCategoryDelete()
	w.WriteHeader(http.StatusNoContent)
}
