package service

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

const (
	DefaultMaxImageBytes int64 = 5 << 20

	maxNameLen        = 50
	maxDescriptionLen = 200
	maxLabelLen       = 50
)

// Form field names reported in validation errors.
const (
	FieldName        = "name"
	FieldCategory    = "category_id"
	FieldPrice       = "price"
	FieldDiscount    = "discount"
	FieldDescription = "description"
	FieldLabel       = "label"
	FieldImage       = "image"
)

type fieldErrors map[string]string

func (fe fieldErrors) set(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fe}
}

// ValidateItemForm checks the item form against the known categories
// and turns it into a draft ready for the backend.
func ValidateItemForm(
	f domain.ItemForm, categories []domain.Category, maxImageBytes int64,
) (domain.ItemDraft, error) {
	fe := make(fieldErrors)

	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		fe.set(FieldName, "Item name is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		fe.set(FieldName, "Item name must be at most 50 characters")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil || !price.IsPositive() {
		fe.set(FieldPrice, "Valid price is required")
	}

	discount := decimal.Zero
	if d := strings.TrimSpace(f.Discount); d != "" {
		discount, err = decimal.NewFromString(d)
		if err != nil || discount.IsNegative() {
			fe.set(FieldDiscount, "Discount must be a non-negative number")
		}
	}

	description := strings.TrimSpace(f.Description)
	switch {
	case description == "":
		fe.set(FieldDescription, "Description is required")
	case utf8.RuneCountInString(description) > maxDescriptionLen:
		fe.set(FieldDescription, "Description must be at most 200 characters")
	}

	categoryID, ok := lookupCategory(f.CategoryID, categories)
	if !ok {
		fe.set(FieldCategory, "Please select a category")
	}

	img, msg := validateImage(f.ImageMode, f.ImageURL, f.ImageFile, maxImageBytes)
	if msg != "" {
		fe.set(FieldImage, msg)
	}

	if err := fe.err(); err != nil {
		return domain.ItemDraft{}, err
	}

	return domain.ItemDraft{
		Name:        name,
		CategoryID:  categoryID,
		Price:       price,
		Discount:    discount,
		Description: description,
		Available:   f.Available,
		Image:       img,
	}, nil
}

// ValidateCategoryForm checks the category form. editingID is the id of
// the category being edited or zero when adding.
func ValidateCategoryForm(
	f domain.CategoryForm,
	categories []domain.Category,
	editingID int64,
	maxImageBytes int64,
) (domain.CategoryDraft, error) {
	fe := make(fieldErrors)

	label := strings.TrimSpace(f.Label)
	switch {
	case label == "":
		fe.set(FieldLabel, "Category name is required")
	case utf8.RuneCountInString(label) > maxLabelLen:
		fe.set(FieldLabel, "Category name must be at most 50 characters")
	case labelTaken(label, categories, editingID):
		fe.set(FieldLabel, "Category name already exists")
	}

	img, msg := validateImage(f.ImageMode, f.ImageURL, f.ImageFile, maxImageBytes)
	if msg != "" {
		fe.set(FieldImage, msg)
	}

	if err := fe.err(); err != nil {
		return domain.CategoryDraft{}, err
	}
	return domain.CategoryDraft{Label: label, Image: img}, nil
}

func lookupCategory(value string, categories []domain.Category) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, false
	}
	for _, c := range categories {
		if c.ID == id {
			return id, true
		}
	}
	return 0, false
}

func labelTaken(label string, categories []domain.Category, editingID int64) bool {
	for _, c := range categories {
		if c.ID != editingID && c.Label == label {
			return true
		}
	}
	return false
}

func validateImage(
	mode domain.ImageMode, rawURL string, file *domain.UploadFile, maxBytes int64,
) (domain.Image, string) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}

	if mode == domain.ImageModeFile {
		if file == nil || file.Size() == 0 {
			return domain.NoImage(), "Please select a valid image file"
		}
		ct := file.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(file.Data)
		}
		if !strings.HasPrefix(ct, "image/") {
			return domain.NoImage(), "Please select a valid image file"
		}
		if file.Size() > maxBytes {
			return domain.NoImage(), "Image size must be less than " +
				formatMiB(maxBytes)
		}
		f := *file
		f.ContentType = ct
		return domain.FileImage(f), ""
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return domain.NoImage(), ""
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NoImage(), "Image URL must be a valid http(s) URL"
	}
	return domain.URLImage(rawURL), ""
}

func formatMiB(n int64) string {
	if n%(1<<20) == 0 {
		return strconv.FormatInt(n>>20, 10) + "MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
