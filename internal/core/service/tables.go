package service

import (
	"slices"
	"strings"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

var _ port.TableBoard = TableBoard{}

// TableBoard serves the restaurant floor tables loaded at startup.
type TableBoard struct {
	tables []domain.Table
}

func NewTableBoard(tables []domain.Table) TableBoard {
	return TableBoard{slices.Clone(tables)}
}

// Search matches the term against table number, name and location,
// ignoring case. An empty term returns every table.
func (b TableBoard) Search(term string) []domain.Table {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(b.tables)
	}

	var res []domain.Table
	for _, t := range b.tables {
		if strings.Contains(strings.ToLower(t.Number), term) ||
			strings.Contains(strings.ToLower(t.Name), term) ||
			strings.Contains(strings.ToLower(t.Location), term) {
			res = append(res, t)
		}
	}
	return res
}

func (b TableBoard) Stats() domain.TableStats {
	s := domain.TableStats{Total: len(b.tables)}
	for _, t := range b.tables {
		switch t.Status {
		case domain.TableAvailable:
			s.Available++
		case domain.TableOccupied:
			s.Occupied++
		case domain.TableReserved:
			s.Reserved++
		case domain.TableMaintenance:
			s.Maintenance++
		}
	}
	return s
}
