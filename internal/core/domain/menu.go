package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type (
	MenuItem struct {
		ID          int64
		Name        string
		CategoryID  int64
		Price       decimal.Decimal
		Discount    decimal.Decimal
		Description string
		Image       Image
		Available   bool
		CreatedAt   time.Time
	}

	Category struct {
		ID        int64
		Label     string
		Image     Image
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

// Value returns the category id in the form used by the filter state
// and select options.
func (c Category) Value() string {
	return strconv.FormatInt(c.ID, 10)
}

// CategoryValue returns the referenced category id as a filter key.
func (i MenuItem) CategoryValue() string {
	return strconv.FormatInt(i.CategoryID, 10)
}

// FinalPrice is the price after discount, never below zero.
func (i MenuItem) FinalPrice() decimal.Decimal {
	p := i.Price.Sub(i.Discount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageURL
	ImageFile
)

func (k ImageKind) String() string {
	switch k {
	case ImageURL:
		return "url"
	case ImageFile:
		return "file"
	default:
		return "none"
	}
}

// An Image is either absent, an external URL or an uploaded file.
type Image struct {
	Kind ImageKind
	URL  string
	File *UploadFile
}

type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f UploadFile) Size() int64 {
	return int64(len(f.Data))
}

func NoImage() Image {
	return Image{}
}

func URLImage(url string) Image {
	if url == "" {
		return Image{}
	}
	return Image{Kind: ImageURL, URL: url}
}

func FileImage(f UploadFile) Image {
	return Image{Kind: ImageFile, File: &f}
}
