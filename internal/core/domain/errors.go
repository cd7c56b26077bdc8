package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrBusy            = errors.New("operation already in progress")
	ErrNoFormOpen      = errors.New("no form is open")
	ErrNoPendingDelete = errors.New("no delete is awaiting confirmation")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("item is not available")
	ErrDeleteBlocked   = errors.New("delete is blocked")
)

// A ValidationError holds field level messages produced before any
// network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// A HTTPError is returned when the backend answered with non-2xx status.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// A ConnectivityError is returned when the backend could not be reached.
type ConnectivityError struct {
	BaseURL string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf(
		"cannot connect to server at %s: %v", e.BaseURL, e.Err,
	)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
