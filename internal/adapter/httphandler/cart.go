package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/menu-admin/internal/core/port"
)

// GET v1/cart (200 OK)
// POST v1/cart/items JSON {"id" int} (200 OK, 400, 404, 409)
// DELETE v1/cart/items/{id} (200 OK, 400)
// DELETE v1/cart (204 No content)

type CartHandler struct {
	cart port.CartKeeper
}

func RegisterCart(mux *http.ServeMux, cart port.CartKeeper) {
	h := CartHandler{cart}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.PostItem)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.DeleteItem)
	mux.HandleFunc("DELETE /v1/cart", h.DeleteCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	log := slog.With("op", op)

	writeJSON(w, log, http.StatusOK, toCart(h.cart.Cart()))
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req CartAdd
	if err := decodeJSON(r, &req); err != nil || req.ID == 0 {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.cart.Add(req.ID); err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toCart(h.cart.Cart()))
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	h.cart.Remove(id)
	writeJSON(w, log, http.StatusOK, toCart(h.cart.Cart()))
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}
