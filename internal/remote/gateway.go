// Package remote talks to the API-management service's resource API.
package remote

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// Gateway lists, puts and deletes JSON resources addressed by paths relative
// to the service, e.g. "/backends/b1".
type Gateway interface {
	// List lazily yields the members of a collection, following pagination.
	List(ctx context.Context, uri string) iter.Seq2[map[string]any, error]

	// Put creates or replaces the resource at uri.
	Put(ctx context.Context, uri string, doc map[string]any) error

	// Delete removes the resource at uri. A missing resource is reported as
	// an error matching errors.ErrNotFound.
	Delete(ctx context.Context, uri string) error
}

// StatusError is a non-success response.
type StatusError struct {
	Method     string
	URI        string
	StatusCode int

	// Code and Message come from the service's error body, when present.
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URI, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap maps the status onto the sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return oerrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return oerrors.ErrPermission
	default:
		return nil
	}
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Method string
	URI    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URI, e.Err)
}

// Unwrap matches both the cause and errors.ErrConnectivity.
func (e *TransportError) Unwrap() []error {
	return []error{e.Err, oerrors.ErrConnectivity}
}

// Collect drains a listing into a slice, stopping at the first error.
func Collect(seq iter.Seq2[map[string]any, error]) ([]map[string]any, error) {
	var items []map[string]any
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
