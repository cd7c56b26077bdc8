package port

import (
	"context"
	"sync"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

type ItemsRemote interface {
	ListItems(context.Context) ([]domain.MenuItem, error)
	CreateItem(context.Context, domain.ItemDraft) (domain.MenuItem, error)
	UpdateItem(context.Context, int64, domain.ItemDraft) (domain.MenuItem, error)
	DeleteItem(context.Context, int64) error
	SetItemAvailability(context.Context, int64, bool) (domain.MenuItem, error)
}

type CategoriesRemote interface {
	ListCategories(context.Context) ([]domain.Category, error)
	CreateCategory(context.Context, domain.CategoryDraft) (domain.Category, error)
	UpdateCategory(context.Context, int64, domain.CategoryDraft) (domain.Category, error)
	DeleteCategory(context.Context, int64) error
}

// CatalogRemote is the backend holding the authoritative menu.
type CatalogRemote interface {
	ItemsRemote
	CategoriesRemote
}

type MenuChangesProducer interface {
	ProduceChange(context.Context, domain.MenuChange) error
}

type MenuChangesReader interface {
	LastChange(kind domain.EntityKind, id int64) (domain.MenuChange, error)
}

type MenuChangesProcessor interface {
	runnerContextWg
	closer
}

type CatalogMirror interface {
	StoreCatalog(context.Context, []domain.Category, []domain.MenuItem) error
}

// MenuAdmin drives the admin screen: filters, forms and deletions of
// menu items and categories.
type MenuAdmin interface {
	Reload(context.Context) error
	SetFilter(domain.Filter)
	Snapshot() domain.Menu

	OpenItemForm(id *int64) (domain.ItemForm, error)
	SubmitItemForm(context.Context, domain.ItemForm) error
	CloseItemForm() error
	ToggleItemAvailability(ctx context.Context, id int64) error
	RequestItemDelete(id int64) error
	ConfirmItemDelete(context.Context) error
	CancelItemDelete()

	OpenCategoryForm(id *int64) (domain.CategoryForm, error)
	SubmitCategoryForm(context.Context, domain.CategoryForm) error
	CloseCategoryForm() error
	RequestCategoryDelete(id int64) (domain.GuardResult, error)
	ConfirmCategoryDelete(context.Context) error
	CancelCategoryDelete()
}

type TableBoard interface {
	Search(term string) []domain.Table
	Stats() domain.TableStats
}

type CartKeeper interface {
	Add(itemID int64) error
	Remove(itemID int64)
	Cart() domain.Cart
	Clear()
}
