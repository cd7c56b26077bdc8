package domain

import "github.com/shopspring/decimal"

type ImageMode string

const (
	ImageModeURL  ImageMode = "url"
	ImageModeFile ImageMode = "file"
)

// An ItemForm is the raw user input of the menu item form.
type ItemForm struct {
	Name        string
	CategoryID  string
	Price       string
	Discount    string
	Description string
	Available   bool
	ImageMode   ImageMode
	ImageURL    string
	ImageFile   *UploadFile
}

// SetImageMode switches the image input and drops the value of the
// other mode.
func (f *ItemForm) SetImageMode(m ImageMode) {
	f.ImageMode = m
	switch m {
	case ImageModeFile:
		f.ImageURL = ""
	default:
		f.ImageMode = ImageModeURL
		f.ImageFile = nil
	}
}

type CategoryForm struct {
	Label     string
	ImageMode ImageMode
	ImageURL  string
	ImageFile *UploadFile
}

func (f *CategoryForm) SetImageMode(m ImageMode) {
	f.ImageMode = m
	switch m {
	case ImageModeFile:
		f.ImageURL = ""
	default:
		f.ImageMode = ImageModeURL
		f.ImageFile = nil
	}
}

func NewItemForm(categoryID string) ItemForm {
	return ItemForm{
		CategoryID: categoryID,
		Available:  true,
		ImageMode:  ImageModeURL,
	}
}

// ItemFormFrom pre-populates the form with an existing item.
func ItemFormFrom(i MenuItem) ItemForm {
	f := ItemForm{
		Name:        i.Name,
		CategoryID:  i.CategoryValue(),
		Price:       i.Price.StringFixed(2),
		Description: i.Description,
		Available:   i.Available,
		ImageMode:   ImageModeURL,
	}
	if !i.Discount.IsZero() {
		f.Discount = i.Discount.StringFixed(2)
	}
	if i.Image.Kind == ImageURL {
		f.ImageURL = i.Image.URL
	}
	return f
}

func NewCategoryForm() CategoryForm {
	return CategoryForm{ImageMode: ImageModeURL}
}

func CategoryFormFrom(c Category) CategoryForm {
	f := CategoryForm{Label: c.Label, ImageMode: ImageModeURL}
	if c.Image.Kind == ImageURL {
		f.ImageURL = c.Image.URL
	}
	return f
}

type (
	// An ItemDraft is a validated item ready to be sent to the backend.
	ItemDraft struct {
		Name        string
		CategoryID  int64
		Price       decimal.Decimal
		Discount    decimal.Decimal
		Description string
		Available   bool
		Image       Image
	}

	CategoryDraft struct {
		Label string
		Image Image
	}
)
