package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

var _ port.CatalogRemote = (*Catalog)(nil)

// A Catalog is the typed menu backend built on top of [Client].
type Catalog struct {
	client Client
}

func NewCatalog(client Client) Catalog {
	return Catalog{client}
}

func (c Catalog) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	const op = "Catalog.ListItems"

	raws, err := c.client.List(ctx, Products)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]domain.MenuItem, 0, len(raws))
	for _, data := range raws {
		var raw RawItem
		if err := decode(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		v, err := NormalizeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, v)
	}
	return items, nil
}

func (c Catalog) CreateItem(
	ctx context.Context, d domain.ItemDraft,
) (domain.MenuItem, error) {
	const op = "Catalog.CreateItem"

	data, err := c.client.Create(ctx, Products, itemFields(d), imageFile(d.Image))
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return c.itemFromResponse(op, data, d), nil
}

func (c Catalog) UpdateItem(
	ctx context.Context, id int64, d domain.ItemDraft,
) (domain.MenuItem, error) {
	const op = "Catalog.UpdateItem"

	data, err := c.client.Update(
		ctx, Products, id, itemFields(d), imageFile(d.Image),
	)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%s: %w", op, err)
	}
	v := c.itemFromResponse(op, data, d)
	if v.ID == 0 {
		v.ID = id
	}
	return v, nil
}

func (c Catalog) DeleteItem(ctx context.Context, id int64) error {
	const op = "Catalog.DeleteItem"

	if err := c.client.Delete(ctx, Products, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c Catalog) SetItemAvailability(
	ctx context.Context, id int64, available bool,
) (domain.MenuItem, error) {
	const op = "Catalog.SetItemAvailability"

	fields := Fields{"status": availabilityStatus(available)}
	data, err := c.client.Patch(ctx, Products, id, fields)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%s: %w", op, err)
	}

	v := c.itemFromResponse(op, data, domain.ItemDraft{Available: available})
	if v.ID == 0 {
		v.ID = id
	}
	return v, nil
}

func (c Catalog) ListCategories(
	ctx context.Context,
) ([]domain.Category, error) {
	const op = "Catalog.ListCategories"

	raws, err := c.client.List(ctx, Categories)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	categories := make([]domain.Category, 0, len(raws))
	for _, data := range raws {
		var raw RawCategory
		if err := decode(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		v, err := NormalizeCategory(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		categories = append(categories, v)
	}
	return categories, nil
}

func (c Catalog) CreateCategory(
	ctx context.Context, d domain.CategoryDraft,
) (domain.Category, error) {
	const op = "Catalog.CreateCategory"

	data, err := c.client.Create(
		ctx, Categories, categoryFields(d), imageFile(d.Image),
	)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return c.categoryFromResponse(op, data, d), nil
}

func (c Catalog) UpdateCategory(
	ctx context.Context, id int64, d domain.CategoryDraft,
) (domain.Category, error) {
	const op = "Catalog.UpdateCategory"

	data, err := c.client.Update(
		ctx, Categories, id, categoryFields(d), imageFile(d.Image),
	)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	v := c.categoryFromResponse(op, data, d)
	if v.ID == 0 {
		v.ID = id
	}
	return v, nil
}

func (c Catalog) DeleteCategory(ctx context.Context, id int64) error {
	const op = "Catalog.DeleteCategory"

	if err := c.client.Delete(ctx, Categories, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// itemFromResponse normalizes the echoed entity. Backends that answer
// with an empty or unexpected body still count as success, the
// following reload is the source of truth.
func (c Catalog) itemFromResponse(
	op string, data []byte, d domain.ItemDraft,
) domain.MenuItem {
	fallback := domain.MenuItem{
		Name:        d.Name,
		CategoryID:  d.CategoryID,
		Price:       d.Price,
		Discount:    d.Discount,
		Description: d.Description,
		Available:   d.Available,
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fallback
	}

	var raw RawItem
	if err := decode(data, &raw); err != nil {
		slog.Warn("unexpected item response", "op", op, "err", err)
		return fallback
	}
	v, err := NormalizeItem(raw)
	if err != nil {
		slog.Warn("unexpected item response", "op", op, "err", err)
		return fallback
	}
	return v
}

func (c Catalog) categoryFromResponse(
	op string, data []byte, d domain.CategoryDraft,
) domain.Category {
	fallback := domain.Category{Label: d.Label}
	if len(bytes.TrimSpace(data)) == 0 {
		return fallback
	}

	var raw RawCategory
	if err := decode(data, &raw); err != nil {
		slog.Warn("unexpected category response", "op", op, "err", err)
		return fallback
	}
	v, err := NormalizeCategory(raw)
	if err != nil {
		slog.Warn("unexpected category response", "op", op, "err", err)
		return fallback
	}
	return v
}

func itemFields(d domain.ItemDraft) Fields {
	f := Fields{
		"name":        d.Name,
		"category_id": d.CategoryID,
		"price":       d.Price.String(),
		"description": d.Description,
		"status":      availabilityStatus(d.Available),
	}
	if !d.Discount.IsZero() {
		f["discount"] = d.Discount.String()
	}
	if d.Image.Kind == domain.ImageURL {
		f["image_url"] = d.Image.URL
	}
	return f
}

func categoryFields(d domain.CategoryDraft) Fields {
	f := Fields{"name": d.Label}
	if d.Image.Kind == domain.ImageURL {
		f["image_url"] = d.Image.URL
	}
	return f
}

func imageFile(img domain.Image) *domain.UploadFile {
	if img.Kind != domain.ImageFile {
		return nil
	}
	return img.File
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
