package config

import "github.com/niksmo/menu-admin/internal/core/domain"

// DomainTables converts the configured floor tables.
func (c Config) DomainTables() []domain.Table {
	res := make([]domain.Table, 0, len(c.Tables))
	for _, t := range c.Tables {
		res = append(res, domain.Table{
			ID:             t.ID,
			Number:         t.Number,
			Name:           t.Name,
			Capacity:       t.Capacity,
			Location:       t.Location,
			Status:         domain.TableStatus(t.Status),
			QRCode:         t.QRCode,
			Description:    t.Description,
			CreatedAt:      t.CreatedAt,
			CurrentOrderID: t.CurrentOrderID,
		})
	}
	return res
}
