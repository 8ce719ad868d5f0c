package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/vyrodovalexey/library-api/internal/model"
)

func TestError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation(model.ValidationErrors{"title": "Title cannot be empty"}), http.StatusBadRequest},
		{"duplicate", DuplicateISBN(), http.StatusBadRequest},
		{"not found", NotFound(1), http.StatusNotFound},
		{"unknown kind", &Error{}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDuplicateISBN_Body(t *testing.T) {
	err := DuplicateISBN()

	if got := err.Fields["isbn"]; got != "A book with this ISBN already exists" {
		t.Errorf("Fields[isbn] = %q", got)
	}
	if len(err.Fields) != 1 {
		t.Errorf("Fields = %v, want single entry", err.Fields)
	}
}

func TestNotFound_Body(t *testing.T) {
	err := NotFound(999)

	if got := err.Fields["error"]; got != "Book with id 999 not found" {
		t.Errorf("Fields[error] = %q", got)
	}
}

func TestAs(t *testing.T) {
	// Arrange
	wrapped := fmt.Errorf("update book: %w", NotFound(3))

	// Act
	got, ok := As(wrapped)

	// Assert
	if !ok {
		t.Fatal("As() = false, want true")
	}
	if got.Kind != KindNotFound {
		t.Errorf("Kind = %s, want %s", got.Kind, KindNotFound)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("As() on a plain error = true, want false")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindValidation: "validation",
		KindDuplicate:  "duplicate",
		KindNotFound:   "not_found",
		Kind(0):        "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
