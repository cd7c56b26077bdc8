package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/menu-admin/internal/core/domain"
	"github.com/spf13/cast"
)

const (
	defaultTimeout = 15 * time.Second

	fileField     = "image_path"
	methodField   = "_method"
	maxErrBodyLen = 64 << 10
)

type Resource string

const (
	Products   Resource = "products"
	Categories Resource = "categories"
)

// Fields is a request payload. Nil values are omitted from multipart
// bodies.
type Fields map[string]any

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Opt func(*clientOpts) error

type clientOpts struct {
	timeout time.Duration
	doer    httpDoer
}

func TimeoutOpt(d time.Duration) Opt {
	return func(o *clientOpts) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		o.timeout = d
		return nil
	}
}

func HTTPClientOpt(d httpDoer) Opt {
	return func(o *clientOpts) error {
		if d == nil {
			return errors.New("http client is nil")
		}
		o.doer = d
		return nil
	}
}

// A Client translates CRUD intents into REST calls against the menu
// backend.
type Client struct {
	baseURL string
	doer    httpDoer
}

func NewClient(baseURL string, opts ...Opt) (Client, error) {
	const op = "NewClient"

	if baseURL == "" {
		return Client{}, fmt.Errorf("%s: base url is empty", op)
	}

	options := clientOpts{timeout: defaultTimeout}
	for _, o := range opts {
		if err := o(&options); err != nil {
			return Client{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if options.doer == nil {
		options.doer = &http.Client{Timeout: options.timeout}
	}

	return Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    options.doer,
	}, nil
}

func (c Client) BaseURL() string {
	return c.baseURL
}

func (c Client) List(
	ctx context.Context, res Resource,
) ([]json.RawMessage, error) {
	const op = "Client.List"

	data, err := c.send(ctx, http.MethodGet, c.collectionPath(res), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var vs []json.RawMessage
	if len(data) == 0 {
		return vs, nil
	}
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("%s: expected array of %s: %w", op, res, err)
	}
	return vs, nil
}

func (c Client) Create(
	ctx context.Context, res Resource, fields Fields, file *domain.UploadFile,
) (json.RawMessage, error) {
	const op = "Client.Create"

	r, err := c.newBody(http.MethodPost, c.collectionPath(res), fields, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := c.send(ctx, r.method, r.path, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// Update sends PUT for JSON bodies. The backend accepts file uploads
// only through POST, so a multipart update is POST with _method=PUT.
func (c Client) Update(
	ctx context.Context,
	res Resource,
	id int64,
	fields Fields,
	file *domain.UploadFile,
) (json.RawMessage, error) {
	const op = "Client.Update"

	path := c.entityPath(res, id)
	method := http.MethodPut
	if file != nil {
		method = http.MethodPost
		fields = withMethodOverride(fields, http.MethodPut)
	}

	r, err := c.newBody(method, path, fields, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := c.send(ctx, r.method, r.path, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (c Client) Delete(ctx context.Context, res Resource, id int64) error {
	const op = "Client.Delete"

	_, err := c.send(ctx, http.MethodDelete, c.entityPath(res, id), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c Client) Patch(
	ctx context.Context, res Resource, id int64, fields Fields,
) (json.RawMessage, error) {
	const op = "Client.Patch"

	path := c.entityPath(res, id)
	r, err := c.newBody(http.MethodPatch, path, fields, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := c.send(ctx, r.method, r.path, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (c Client) collectionPath(res Resource) string {
	return "/" + string(res)
}

func (c Client) entityPath(res Resource, id int64) string {
	return "/" + string(res) + "/" + strconv.FormatInt(id, 10)
}

type requestBody struct {
	method      string
	path        string
	contentType string
	payload     []byte
}

func (c Client) newBody(
	method, path string, fields Fields, file *domain.UploadFile,
) (*requestBody, error) {
	if file == nil {
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		return &requestBody{
			method:      method,
			path:        path,
			contentType: "application/json",
			payload:     b,
		}, nil
	}

	payload, contentType, err := encodeMultipart(fields, file)
	if err != nil {
		return nil, err
	}
	return &requestBody{
		method:      method,
		path:        path,
		contentType: contentType,
		payload:     payload,
	}, nil
}

// send performs the request and returns the unwrapped response data.
func (c Client) send(
	ctx context.Context, method, path string, body *requestBody,
) ([]byte, error) {
	const op = "Client.send"
	log := slog.With("op", op, "method", method, "path", path)

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body.payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("backend unreachable", "err", err)
		return nil, &domain.ConnectivityError{BaseURL: c.baseURL, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error("failed to close response body", "err", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ConnectivityError{BaseURL: c.baseURL, Err: err}
	}

	log.Debug("response", "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrBodyLen {
			data = data[:maxErrBodyLen]
		}
		return nil, &domain.HTTPError{
			Status: resp.StatusCode,
			Body:   string(data),
		}
	}

	return unwrapEnvelope(data)
}

// unwrapEnvelope returns the "data" member of an enveloped response or
// the response itself.
func unwrapEnvelope(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return data, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	inner, ok := envelope["data"]
	if !ok || string(inner) == "null" {
		return data, nil
	}
	return inner, nil
}

func withMethodOverride(fields Fields, method string) Fields {
	out := make(Fields, len(fields)+1)
	maps.Copy(out, fields)
	out[methodField] = method
	return out
}

func encodeMultipart(
	fields Fields, file *domain.UploadFile,
) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range slices.Sorted(maps.Keys(fields)) {
		v := fields[k]
		if v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, "", fmt.Errorf("field %q: %w", k, err)
		}
		if err := w.WriteField(k, s); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name=%q; filename=%q`, fileField, file.Name,
	))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
