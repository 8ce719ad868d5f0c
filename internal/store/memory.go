package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vyrodovalexey/library-api/internal/model"
)

// MemoryStore implements Store interface with in-memory storage.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]model.Book
	isbns  map[string]int64
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		books:  make(map[int64]model.Book),
		isbns:  make(map[string]int64),
	}
}

// List returns all books ordered by ID.
func (s *MemoryStore) List(ctx context.Context) ([]model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(model.Book) bool { return true }), nil
}

// Get retrieves a book by its ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	book, exists := s.books[id]
	if !exists {
		return nil, ErrNotFound
	}

	return copyBook(book), nil
}

// ExistsByISBN reports whether a book with exactly this ISBN exists.
func (s *MemoryStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("exists by isbn: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.isbns[isbn]
	return exists, nil
}

// Create adds a new book and returns it with the assigned ID. The ISBN check
// and the insert happen under one lock.
func (s *MemoryStore) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if book == nil {
		return nil, fmt.Errorf("create book: %w", ErrNilBook)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.isbns[book.ISBN]; taken {
		return nil, ErrDuplicateISBN
	}

	stored := *copyBook(*book)
	stored.ID = s.nextID
	s.nextID++

	s.books[stored.ID] = stored
	s.isbns[stored.ISBN] = stored.ID

	return copyBook(stored), nil
}

// Update overwrites every mutable field of an existing book.
func (s *MemoryStore) Update(ctx context.Context, id int64, book *model.Book) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if book == nil {
		return nil, fmt.Errorf("update book: %w", ErrNilBook)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.books[id]
	if !exists {
		return nil, ErrNotFound
	}

	if owner, taken := s.isbns[book.ISBN]; taken && owner != id {
		return nil, ErrDuplicateISBN
	}

	updated := *copyBook(*book)
	updated.ID = id

	delete(s.isbns, existing.ISBN)
	s.books[id] = updated
	s.isbns[updated.ISBN] = id

	return copyBook(updated), nil
}

// Delete removes a book by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.books[id]
	if !exists {
		return ErrNotFound
	}

	delete(s.isbns, existing.ISBN)
	delete(s.books, id)

	return nil
}

// Search returns the books matching every set field of the filter.
func (s *MemoryStore) Search(ctx context.Context, filter SearchFilter) ([]model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(b model.Book) bool {
		if filter.Title != nil && !containsFold(b.Title, *filter.Title) {
			return false
		}
		if filter.Author != nil && !containsFold(b.Author, *filter.Author) {
			return false
		}
		return true
	}), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// collect returns matching books sorted by ID. Callers hold the read lock.
func (s *MemoryStore) collect(match func(model.Book) bool) []model.Book {
	books := make([]model.Book, 0, len(s.books))
	for _, b := range s.books {
		if match(b) {
			books = append(books, *copyBook(b))
		}
	}

	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })

	return books
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// copyBook detaches the publication year pointer from the stored value.
func copyBook(b model.Book) *model.Book {
	if b.PublicationYear != nil {
		year := *b.PublicationYear
		b.PublicationYear = &year
	}
	return &b
}
