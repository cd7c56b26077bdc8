package catalog_test

import (
	"testing"

	"github.com/niksmo/menu-admin/internal/core/catalog"
	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestGuardCategoryDelete(t *testing.T) {
	s := catalog.NewStore()
	items, cats := friesFixture()
	cats = append(cats, domain.Category{ID: 5, Label: "Desserts"})
	items = append(items, domain.MenuItem{ID: 2, Name: "Onion rings", CategoryID: 3})
	s.Replace(items, cats)

	t.Run("Referenced", func(t *testing.T) {
		res := catalog.GuardCategoryDelete(s, 3)
		assert.False(t, res.Allowed)
		assert.Contains(t, res.Reason, "Sides")
		assert.Contains(t, res.Reason, "2 menu item(s)")
	})

	t.Run("Unreferenced", func(t *testing.T) {
		res := catalog.GuardCategoryDelete(s, 5)
		assert.True(t, res.Allowed)
		assert.Empty(t, res.Reason)
	})

	t.Run("Unknown", func(t *testing.T) {
		res := catalog.GuardCategoryDelete(s, 77)
		assert.False(t, res.Allowed)
		assert.Contains(t, res.Reason, "not found")
	})
}
