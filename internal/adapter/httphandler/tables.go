package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/menu-admin/internal/core/port"
)

// GET v1/tables?search=term (200 OK)

type TablesHandler struct {
	board port.TableBoard
}

func RegisterTables(mux *http.ServeMux, board port.TableBoard) {
	h := TablesHandler{board}
	mux.HandleFunc("GET /v1/tables", h.GetTables)
}

func (h TablesHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	const op = "TablesHandler.GetTables"
	log := slog.With("op", op)

	tables := h.board.Search(r.URL.Query().Get("search"))
	stats := h.board.Stats()

	res := TableBoard{
		Tables: make([]Table, 0, len(tables)),
		Stats: TableStats{
			Total:       stats.Total,
			Available:   stats.Available,
			Occupied:    stats.Occupied,
			Reserved:    stats.Reserved,
			Maintenance: stats.Maintenance,
		},
	}
	for _, t := range tables {
		res.Tables = append(res.Tables, toTable(t))
	}
	writeJSON(w, log, http.StatusOK, res)
}
