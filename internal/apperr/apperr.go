// Package apperr defines the domain error variants surfaced by the HTTP API
// and their mapping to status codes and response bodies.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/library-api/internal/model"
)

// Kind identifies a domain error variant.
type Kind int

// Error kinds.
const (
	KindValidation Kind = iota + 1
	KindDuplicate
	KindNotFound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a domain error carrying the body returned to the client.
type Error struct {
	Kind   Kind
	Fields map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Fields)
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validation wraps field violations.
func Validation(fields model.ValidationErrors) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// DuplicateISBN reports that another record already uses the ISBN.
func DuplicateISBN() *Error {
	return &Error{
		Kind:   KindDuplicate,
		Fields: map[string]string{model.FieldISBN: model.MsgDuplicateISBN},
	}
}

// NotFound reports a missing book.
func NotFound(id int64) *Error {
	return &Error{
		Kind:   KindNotFound,
		Fields: model.ErrorBody(model.NotFoundMessage(id)),
	}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
