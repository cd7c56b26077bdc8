package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/niksmo/menu-admin/internal/core/port"
)

var _ port.CatalogMirror = (*CatalogRepository)(nil)

const (
	deleteItemsQuery      = `DELETE FROM menu_items;`
	deleteCategoriesQuery = `DELETE FROM menu_categories;`

	insertCategoryQuery = `
		INSERT INTO menu_categories (
			id, label, image_url, created_at, updated_at, mirrored_at
		)
		VALUES ($1, $2, $3, $4, $5, $6);`

	insertItemQuery = `
		INSERT INTO menu_items (
			id, name, category_id, price, discount, description,
			image_url, available, created_at, mirrored_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
)

// A CatalogRepository mirrors the last loaded menu into postgres.
type CatalogRepository struct {
	db  TxBeginner
	now func() time.Time
}

func NewCatalogRepository(db TxBeginner) CatalogRepository {
	return CatalogRepository{db: db, now: time.Now}
}

// StoreCatalog replaces the mirrored catalog in one transaction.
func (r CatalogRepository) StoreCatalog(
	ctx context.Context, cs []domain.Category, is []domain.MenuItem,
) (storeErr error) {
	const op = "CatalogRepository.StoreCatalog"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	for _, q := range []string{deleteItemsQuery, deleteCategoriesQuery} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%s: failed to clear: %w", op, err)
		}
	}

	mirroredAt := r.now().UTC()
	for _, c := range cs {
		_, err := tx.ExecContext(ctx, insertCategoryQuery,
			c.ID, c.Label, imageURL(c.Image),
			nullTime(c.CreatedAt), nullTime(c.UpdatedAt), mirroredAt,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to insert category %d: %w", op, c.ID, err)
		}
	}

	for _, i := range is {
		_, err := tx.ExecContext(ctx, insertItemQuery,
			i.ID, i.Name, i.CategoryID, i.Price, i.Discount, i.Description,
			imageURL(i.Image), i.Available, nullTime(i.CreatedAt), mirroredAt,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to insert item %d: %w", op, i.ID, err)
		}
	}

	log.Debug("catalog mirrored", "nCategories", len(cs), "nItems", len(is))
	return nil
}

func imageURL(img domain.Image) sql.NullString {
	if img.Kind != domain.ImageURL {
		return sql.NullString{}
	}
	return sql.NullString{String: img.URL, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
