package httphandler

import (
	"time"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

type (
	Item struct {
		ID          int64      `json:"id"`
		Name        string     `json:"name"`
		CategoryID  int64      `json:"category_id"`
		Price       string     `json:"price"`
		Discount    string     `json:"discount"`
		FinalPrice  string     `json:"final_price"`
		Description string     `json:"description"`
		ImageURL    string     `json:"image_url,omitempty"`
		Available   bool       `json:"available"`
		CreatedAt   *time.Time `json:"created_at,omitempty"`
	}

	Category struct {
		ID        int64      `json:"id"`
		Label     string     `json:"label"`
		Value     string     `json:"value"`
		ImageURL  string     `json:"image_url,omitempty"`
		ItemCount int        `json:"item_count"`
		CreatedAt *time.Time `json:"created_at,omitempty"`
	}

	Filter struct {
		Search   string `json:"search"`
		Category string `json:"category"`
	}

	FlowState struct {
		Form         string `json:"form"`
		EditingID    *int64 `json:"editing_id,omitempty"`
		Delete       string `json:"delete"`
		DeleteTarget *int64 `json:"delete_target,omitempty"`
	}

	State struct {
		Items      FlowState `json:"items"`
		Categories FlowState `json:"categories"`
		InFlight   bool      `json:"in_flight"`
	}

	Menu struct {
		Items      []Item     `json:"items"`
		Shown      int        `json:"shown"`
		Total      int        `json:"total"`
		Categories []Category `json:"categories"`
		Filter     Filter     `json:"filter"`
		State      State      `json:"state"`
	}
)

type (
	OpenForm struct {
		ID *int64 `json:"id"`
	}

	ItemForm struct {
		Name        string `json:"name"`
		CategoryID  string `json:"category_id"`
		Price       string `json:"price"`
		Discount    string `json:"discount"`
		Description string `json:"description"`
		Available   bool   `json:"available"`
		ImageMode   string `json:"image_mode"`
		ImageURL    string `json:"image_url"`
	}

	CategoryForm struct {
		Label     string `json:"label"`
		ImageMode string `json:"image_mode"`
		ImageURL  string `json:"image_url"`
	}

	Guard struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason,omitempty"`
	}

	ValidationErrors struct {
		Errors map[string]string `json:"errors"`
	}
)

type (
	Table struct {
		ID             int64      `json:"id"`
		Number         string     `json:"number"`
		Name           string     `json:"name"`
		Capacity       int        `json:"capacity"`
		Location       string     `json:"location"`
		Status         string     `json:"status"`
		QRCode         string     `json:"qr_code,omitempty"`
		Description    string     `json:"description,omitempty"`
		CreatedAt      *time.Time `json:"created_at,omitempty"`
		CurrentOrderID *int64     `json:"current_order_id,omitempty"`
	}

	TableStats struct {
		Total       int `json:"total"`
		Available   int `json:"available"`
		Occupied    int `json:"occupied"`
		Reserved    int `json:"reserved"`
		Maintenance int `json:"maintenance"`
	}

	TableBoard struct {
		Tables []Table    `json:"tables"`
		Stats  TableStats `json:"stats"`
	}

	CartAdd struct {
		ID int64 `json:"id"`
	}

	CartLine struct {
		Item     Item `json:"item"`
		Quantity int  `json:"quantity"`
	}

	Cart struct {
		Lines []CartLine `json:"lines"`
		Total string     `json:"total"`
	}

	MenuChange struct {
		Kind       string    `json:"kind"`
		Action     string    `json:"action"`
		EntityID   int64     `json:"entity_id"`
		Name       string    `json:"name"`
		OccurredAt time.Time `json:"occurred_at"`
	}
)

func toItem(v domain.MenuItem) Item {
	i := Item{
		ID:          v.ID,
		Name:        v.Name,
		CategoryID:  v.CategoryID,
		Price:       v.Price.StringFixed(2),
		Discount:    v.Discount.StringFixed(2),
		FinalPrice:  v.FinalPrice().StringFixed(2),
		Description: v.Description,
		Available:   v.Available,
		CreatedAt:   timePtr(v.CreatedAt),
	}
	if v.Image.Kind == domain.ImageURL {
		i.ImageURL = v.Image.URL
	}
	return i
}

func toItems(vs []domain.MenuItem) []Item {
	items := make([]Item, 0, len(vs))
	for _, v := range vs {
		items = append(items, toItem(v))
	}
	return items
}

func toCategory(v domain.CategoryRow) Category {
	c := Category{
		ID:        v.ID,
		Label:     v.Label,
		Value:     v.Value(),
		ItemCount: v.ItemCount,
		CreatedAt: timePtr(v.CreatedAt),
	}
	if v.Image.Kind == domain.ImageURL {
		c.ImageURL = v.Image.URL
	}
	return c
}

func toFlowState(v domain.FlowState) FlowState {
	return FlowState{
		Form:         string(v.Form),
		EditingID:    v.EditingID,
		Delete:       string(v.Delete),
		DeleteTarget: v.DeleteTarget,
	}
}

func toMenu(v domain.Menu) Menu {
	m := Menu{
		Items:      toItems(v.View),
		Shown:      len(v.View),
		Total:      v.Total,
		Categories: make([]Category, 0, len(v.Categories)),
		Filter: Filter{
			Search:   v.Filter.Search,
			Category: v.Filter.CategoryID,
		},
		State: State{
			Items:      toFlowState(v.State.Items),
			Categories: toFlowState(v.State.Categories),
			InFlight:   v.State.InFlight,
		},
	}
	for _, c := range v.Categories {
		m.Categories = append(m.Categories, toCategory(c))
	}
	return m
}

func fromItemForm(f domain.ItemForm) ItemForm {
	return ItemForm{
		Name:        f.Name,
		CategoryID:  f.CategoryID,
		Price:       f.Price,
		Discount:    f.Discount,
		Description: f.Description,
		Available:   f.Available,
		ImageMode:   string(f.ImageMode),
		ImageURL:    f.ImageURL,
	}
}

func (f ItemForm) toDomain(file *domain.UploadFile) domain.ItemForm {
	v := domain.ItemForm{
		Name:        f.Name,
		CategoryID:  f.CategoryID,
		Price:       f.Price,
		Discount:    f.Discount,
		Description: f.Description,
		Available:   f.Available,
		ImageURL:    f.ImageURL,
	}
	v.SetImageMode(imageMode(f.ImageMode, file))
	if v.ImageMode == domain.ImageModeFile {
		v.ImageFile = file
	}
	return v
}

func fromCategoryForm(f domain.CategoryForm) CategoryForm {
	return CategoryForm{
		Label:     f.Label,
		ImageMode: string(f.ImageMode),
		ImageURL:  f.ImageURL,
	}
}

func (f CategoryForm) toDomain(file *domain.UploadFile) domain.CategoryForm {
	v := domain.CategoryForm{Label: f.Label, ImageURL: f.ImageURL}
	v.SetImageMode(imageMode(f.ImageMode, file))
	if v.ImageMode == domain.ImageModeFile {
		v.ImageFile = file
	}
	return v
}

// imageMode defaults to file mode when a file was uploaded.
func imageMode(mode string, file *domain.UploadFile) domain.ImageMode {
	switch domain.ImageMode(mode) {
	case domain.ImageModeFile, domain.ImageModeURL:
		return domain.ImageMode(mode)
	}
	if file != nil {
		return domain.ImageModeFile
	}
	return domain.ImageModeURL
}

func toTable(v domain.Table) Table {
	return Table{
		ID:             v.ID,
		Number:         v.Number,
		Name:           v.Name,
		Capacity:       v.Capacity,
		Location:       v.Location,
		Status:         string(v.Status),
		QRCode:         v.QRCode,
		Description:    v.Description,
		CreatedAt:      timePtr(v.CreatedAt),
		CurrentOrderID: v.CurrentOrderID,
	}
}

func toCart(v domain.Cart) Cart {
	c := Cart{
		Lines: make([]CartLine, 0, len(v.Lines)),
		Total: v.Total.StringFixed(2),
	}
	for _, l := range v.Lines {
		c.Lines = append(c.Lines, CartLine{Item: toItem(l.Item), Quantity: l.Quantity})
	}
	return c
}

func toMenuChange(v domain.MenuChange) MenuChange {
	return MenuChange{
		Kind:       string(v.Kind),
		Action:     string(v.Action),
		EntityID:   v.EntityID,
		Name:       v.Name,
		OccurredAt: v.OccurredAt,
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
