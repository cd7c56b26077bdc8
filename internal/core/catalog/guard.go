package catalog

import (
	"fmt"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

// GuardCategoryDelete allows deletion only when no item references the
// category. The backend remains the authority, the check only saves a
// doomed request.
func GuardCategoryDelete(s *Store, categoryID int64) domain.GuardResult {
	c, ok := s.Category(categoryID)
	if !ok {
		return domain.GuardResult{
			Reason: fmt.Sprintf("category %d not found", categoryID),
		}
	}

	n := s.CountByCategory(categoryID)
	if n > 0 {
		return domain.GuardResult{
			Reason: fmt.Sprintf(
				"cannot delete category %q: %d menu item(s) still reference it",
				c.Label, n,
			),
		}
	}
	return domain.GuardResult{Allowed: true}
}
