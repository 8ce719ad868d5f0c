// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/library-api/internal/model"
)

// Store errors.
var (
	ErrNotFound      = errors.New("book not found")
	ErrDuplicateISBN = errors.New("book with this isbn already exists")
	ErrNilBook       = errors.New("book cannot be nil")
)

// SearchFilter narrows a search. A nil field places no constraint; a set
// field matches as a case-insensitive substring.
type SearchFilter struct {
	Title  *string
	Author *string
}

// Empty reports whether no filter field is set.
func (f SearchFilter) Empty() bool {
	return f.Title == nil && f.Author == nil
}

// Store defines the interface for book storage operations.
//
// Implementations enforce ISBN uniqueness themselves: a Create or Update that
// would give two records the same ISBN fails with ErrDuplicateISBN.
type Store interface {
	// List returns all books ordered by ID.
	List(ctx context.Context) ([]model.Book, error)

	// Get retrieves a book by its ID.
	Get(ctx context.Context, id int64) (*model.Book, error)

	// ExistsByISBN reports whether a book with exactly this ISBN exists.
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)

	// Create adds a new book and returns it with the assigned ID.
	Create(ctx context.Context, book *model.Book) (*model.Book, error)

	// Update overwrites every mutable field of an existing book.
	Update(ctx context.Context, id int64, book *model.Book) (*model.Book, error)

	// Delete removes a book by its ID.
	Delete(ctx context.Context, id int64) error

	// Search returns the books matching every set field of the filter,
	// ordered by ID.
	Search(ctx context.Context, filter SearchFilter) ([]model.Book, error)

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the resources held by the store.
	Close() error
}
