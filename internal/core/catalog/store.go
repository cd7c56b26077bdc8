package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

// A Store holds the canonical items and categories of the last reload
// together with the filter state and the derived view.
//
// The view is recomputed inside every mutator, so it always reflects
// the current items and filter.
type Store struct {
	mu         sync.RWMutex
	items      []domain.MenuItem
	categories []domain.Category
	filter     domain.Filter
	view       []domain.MenuItem
}

func NewStore() *Store {
	return &Store{filter: domain.DefaultFilter()}
}

// Replace swaps both collections wholesale. Duplicated ids keep the
// first occurrence. The filter state is left untouched.
func (s *Store) Replace(items []domain.MenuItem, categories []domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = uniqueItems(items)
	s.categories = uniqueCategories(categories)
	s.recompute()
}

func (s *Store) SetFilter(f domain.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.CategoryID == "" {
		f.CategoryID = domain.AllCategories
	}
	s.filter = f
	s.recompute()
}

func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Search = term
	s.recompute()
}

func (s *Store) SetCategory(categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if categoryID == "" {
		categoryID = domain.AllCategories
	}
	s.filter.CategoryID = categoryID
	s.recompute()
}

func (s *Store) Filter() domain.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Store) View() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.view)
}

func (s *Store) Items() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) Item(id int64) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.items, func(v domain.MenuItem) bool {
		return v.ID == id
	})
	if i < 0 {
		return domain.MenuItem{}, false
	}
	return s.items[i], true
}

func (s *Store) Category(id int64) (domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.categories, func(v domain.Category) bool {
		return v.ID == id
	})
	if i < 0 {
		return domain.Category{}, false
	}
	return s.categories[i], true
}

// CountByCategory returns the number of items referencing the category.
func (s *Store) CountByCategory(categoryID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, v := range s.items {
		if v.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (s *Store) recompute() {
	view := make([]domain.MenuItem, 0, len(s.items))
	for _, v := range s.items {
		if MatchesSearch(v, s.filter.Search) &&
			MatchesCategory(v, s.filter.CategoryID) {
			view = append(view, v)
		}
	}
	s.view = view
}

// MatchesSearch reports whether name or description contains the term,
// ignoring case. An empty term matches everything.
func MatchesSearch(v domain.MenuItem, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(v.Name), term) ||
		strings.Contains(strings.ToLower(v.Description), term)
}

func MatchesCategory(v domain.MenuItem, categoryID string) bool {
	if categoryID == domain.AllCategories || categoryID == "" {
		return true
	}
	return v.CategoryValue() == categoryID
}

func uniqueItems(vs []domain.MenuItem) []domain.MenuItem {
	seen := make(map[int64]struct{}, len(vs))
	out := make([]domain.MenuItem, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}

func uniqueCategories(vs []domain.Category) []domain.Category {
	seen := make(map[int64]struct{}, len(vs))
	out := make([]domain.Category, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}
