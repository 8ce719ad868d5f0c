// Package service implements the book catalog operations on top of a Store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vyrodovalexey/library-api/internal/metrics"
	"github.com/vyrodovalexey/library-api/internal/model"
	"github.com/vyrodovalexey/library-api/internal/store"
)

// BookService provides CRUD and search over the book catalog.
//
// It performs no validation and no uniqueness pre-checks of its own; callers
// validate input, and the store rejects colliding ISBNs with
// store.ErrDuplicateISBN.
type BookService struct {
	store store.Store
}

// NewBookService creates a new BookService backed by s.
func NewBookService(s store.Store) *BookService {
	return &BookService{store: s}
}

// Create persists a new book. The store assigns the ID.
func (s *BookService) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	created, err := s.store.Create(ctx, book)
	record(metrics.OpCreate, err)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return created, nil
}

// ExistsByISBN reports whether a book with exactly this ISBN exists.
func (s *BookService) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	exists, err := s.store.ExistsByISBN(ctx, isbn)
	record(metrics.OpExists, err)
	if err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return exists, nil
}

// GetAll returns every book ordered by ID.
func (s *BookService) GetAll(ctx context.Context) ([]model.Book, error) {
	books, err := s.store.List(ctx)
	record(metrics.OpList, err)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetByID returns the book with the given ID or store.ErrNotFound.
func (s *BookService) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.store.Get(ctx, id)
	record(metrics.OpGet, err)
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, nil
}

// Update overwrites title, author, isbn, publication year and description of
// an existing book.
func (s *BookService) Update(ctx context.Context, id int64, fields *model.Book) (*model.Book, error) {
	updated, err := s.store.Update(ctx, id, fields)
	record(metrics.OpUpdate, err)
	if err != nil {
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes the book with the given ID. A missing ID is reported as
// store.ErrNotFound.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	record(metrics.OpDelete, err)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

// Search returns books whose title and/or author contain the given values,
// ignoring case. A nil argument places no constraint; with both nil every
// book is returned.
func (s *BookService) Search(ctx context.Context, title, author *string) ([]model.Book, error) {
	filter := store.SearchFilter{Title: title, Author: author}

	var (
		books []model.Book
		err   error
	)
	if filter.Empty() {
		books, err = s.store.List(ctx)
	} else {
		books, err = s.store.Search(ctx, filter)
	}

	record(metrics.OpSearch, err)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// Ping checks that the backing store is reachable.
func (s *BookService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func record(operation string, err error) {
	metrics.RecordOperation(operation, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, store.ErrDuplicateISBN):
		return metrics.OutcomeDuplicate
	default:
		return metrics.OutcomeError
	}
}
