package httphandler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/niksmo/menu-admin/internal/core/domain"
)

const (
	multipartMediaType = "multipart/form-data"
	imageFormField     = "image"
	formOverhead       = 1 << 20
)

var errBadForm = errors.New("invalid form data")

// A submission is a decoded form submit request.
type submission struct {
	values    func(string) string
	multipart bool
	file      *domain.UploadFile
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == multipartMediaType
}

// readSubmission decodes either a JSON body into jsonDst or a multipart
// form with an optional image file part.
func readSubmission(
	w http.ResponseWriter, r *http.Request, maxImageBytes int64, jsonDst any,
) (submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxImageBytes+formOverhead)

	if !isMultipart(r) {
		if err := decodeJSON(r, jsonDst); err != nil {
			return submission{}, fmt.Errorf("%w: %w", errBadForm, err)
		}
		return submission{}, nil
	}

	if err := r.ParseMultipartForm(formOverhead); err != nil {
		return submission{}, fmt.Errorf("%w: %w", errBadForm, err)
	}
	// r may be a copy made by a wrapping handler, which hides the parsed
	// form from the server's own cleanup.
	defer r.MultipartForm.RemoveAll()

	s := submission{values: r.FormValue, multipart: true}
	f, header, err := r.FormFile(imageFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return s, nil
	case err != nil:
		return submission{}, fmt.Errorf("%w: %w", errBadForm, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return submission{}, fmt.Errorf("%w: %w", errBadForm, err)
	}
	s.file = &domain.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return s, nil
}

func (s submission) itemForm(jsonForm ItemForm) domain.ItemForm {
	if !s.multipart {
		return jsonForm.toDomain(nil)
	}
	f := ItemForm{
		Name:        s.values("name"),
		CategoryID:  s.values("category_id"),
		Price:       s.values("price"),
		Discount:    s.values("discount"),
		Description: s.values("description"),
		Available:   formBool(s.values("available")),
		ImageMode:   s.values("image_mode"),
		ImageURL:    s.values("image_url"),
	}
	return f.toDomain(s.file)
}

func (s submission) categoryForm(jsonForm CategoryForm) domain.CategoryForm {
	if !s.multipart {
		return jsonForm.toDomain(nil)
	}
	f := CategoryForm{
		Label:     s.values("label"),
		ImageMode: s.values("image_mode"),
		ImageURL:  s.values("image_url"),
	}
	return f.toDomain(s.file)
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
