package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

var ErrInvalidID = errors.New("invalid entity id")

var timeLayouts = []string{time.RFC3339Nano, time.DateTime}

func NormalizeItem(raw RawItem) (domain.MenuItem, error) {
	const op = "NormalizeItem"

	id, err := toID(raw.ID)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%s: %w", op, err)
	}

	categoryRef := raw.CategoryID
	if categoryRef == nil {
		categoryRef = raw.Category
	}
	categoryID, _ := toID(categoryRef)

	return domain.MenuItem{
		ID:          id,
		Name:        raw.Name,
		CategoryID:  categoryID,
		Price:       parseDecimal(raw.Price),
		Discount:    parseDecimal(raw.Discount),
		Description: raw.Description,
		Image:       firstImage(raw.ImagePath, raw.ImageURL, raw.Image),
		Available:   raw.Status == statusAvailable || toBool(raw.Available),
		CreatedAt:   parseTime(raw.CreatedAt, raw.CreatedAtAlt),
	}, nil
}

func NormalizeCategory(raw RawCategory) (domain.Category, error) {
	const op = "NormalizeCategory"

	id, err := toID(raw.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	label := raw.Name
	if label == "" {
		label = raw.Label
	}

	return domain.Category{
		ID:        id,
		Label:     label,
		Image:     firstImage(raw.ImagePath, raw.ImageURL, raw.Image),
		CreatedAt: parseTime(raw.CreatedAt, raw.CreatedAtAlt),
		UpdatedAt: parseTime(raw.UpdatedAt, raw.UpdatedAtAlt),
	}, nil
}

// RawFromItem renders a canonical item in the backend field naming.
func RawFromItem(v domain.MenuItem) RawItem {
	raw := RawItem{
		ID:          v.ID,
		Name:        v.Name,
		CategoryID:  v.CategoryID,
		Price:       v.Price.String(),
		Description: v.Description,
		Status:      availabilityStatus(v.Available),
		CreatedAt:   formatTime(v.CreatedAt),
	}
	if !v.Discount.IsZero() {
		raw.Discount = v.Discount.String()
	}
	if v.Image.Kind == domain.ImageURL {
		raw.ImageURL = v.Image.URL
	}
	return raw
}

func RawFromCategory(v domain.Category) RawCategory {
	raw := RawCategory{
		ID:        v.ID,
		Name:      v.Label,
		CreatedAt: formatTime(v.CreatedAt),
		UpdatedAt: formatTime(v.UpdatedAt),
	}
	if v.Image.Kind == domain.ImageURL {
		raw.ImageURL = v.Image.URL
	}
	return raw
}

func availabilityStatus(available bool) string {
	if available {
		return statusAvailable
	}
	return statusUnavailable
}

func toID(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, ErrInvalidID
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidID, t)
		}
		return id, nil
	case json.Number:
		return toID(t.String())
	case map[string]any:
		// embedded relation, e.g. "category": {"id": 3, ...}
		return toID(t["id"])
	}

	id, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, v)
	}
	return id, nil
}

func toBool(v any) bool {
	if n, ok := v.(json.Number); ok {
		return n.String() != "0"
	}
	return cast.ToBool(v)
}

func parseDecimal(v any) decimal.Decimal {
	var s string
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(t)
	case json.Number:
		s = t.String()
	case decimal.Decimal:
		return t
	default:
		var err error
		s, err = cast.ToStringE(v)
		if err != nil {
			return decimal.Zero
		}
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstImage(candidates ...any) domain.Image {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		return domain.URLImage(strings.TrimSpace(cast.ToString(c)))
	}
	return domain.NoImage()
}

func parseTime(candidates ...string) time.Time {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		for _, layout := range timeLayouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				return t.UTC()
			}
		}
		return time.Time{}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
