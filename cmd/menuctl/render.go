package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func renderItems(menu domain.Menu) string {
	labels := make(map[int64]string, len(menu.Categories))
	for _, c := range menu.Categories {
		labels[c.ID] = c.Label
	}

	t := newTable("ID", "Name", "Category", "Price", "Discount", "Final", "Available")
	for _, i := range menu.View {
		t.Row(
			strconv.FormatInt(i.ID, 10),
			i.Name,
			labels[i.CategoryID],
			i.Price.StringFixed(2),
			i.Discount.StringFixed(2),
			i.FinalPrice().StringFixed(2),
			yesNo(i.Available),
		)
	}
	footer := mutedStyle.Render(
		fmt.Sprintf("showing %d of %d items", len(menu.View), menu.Total),
	)
	return t.String() + "\n" + footer
}

func renderCategories(menu domain.Menu) string {
	t := newTable("ID", "Label", "Items", "Image")
	for _, c := range menu.Categories {
		t.Row(
			strconv.FormatInt(c.ID, 10),
			c.Label,
			strconv.Itoa(c.ItemCount),
			c.Image.URL,
		)
	}
	return t.String()
}

func renderTables(tables []domain.Table, stats domain.TableStats) string {
	t := newTable("Number", "Name", "Capacity", "Location", "Status")
	for _, v := range tables {
		t.Row(
			v.Number,
			v.Name,
			strconv.Itoa(v.Capacity),
			v.Location,
			string(v.Status),
		)
	}
	footer := mutedStyle.Render(fmt.Sprintf(
		"total %d, available %d, occupied %d, reserved %d, maintenance %d",
		stats.Total, stats.Available, stats.Occupied,
		stats.Reserved, stats.Maintenance,
	))
	return t.String() + "\n" + footer
}
