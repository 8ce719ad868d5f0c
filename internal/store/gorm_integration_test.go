//go:build integration

package store

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Environment variables for the database integration tests.
const (
	EnvIntegrationDriver = "INTEGRATION_DATABASE_DRIVER"
	EnvIntegrationDSN    = "INTEGRATION_DATABASE_DSN"
)

// newIntegrationStore connects to the configured database and empties the
// books table. The test is skipped when no DSN is configured.
func newIntegrationStore(t *testing.T) *GormStore {
	t.Helper()

	dsn := os.Getenv(EnvIntegrationDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvIntegrationDSN)
	}

	driver := os.Getenv(EnvIntegrationDriver)
	if driver == "" {
		driver = DriverPostgres
	}

	db, err := OpenDB(DBOptions{Driver: driver, DSN: dsn, MaxOpenConns: 10})
	require.NoError(t, err)

	s, err := NewGormStore(db)
	require.NoError(t, err)
	require.NoError(t, db.Exec("DELETE FROM books").Error)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestGormStore_CRUD(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, newBook("The Hobbit", "J. R. R. Tolkien", "9780261103283"))
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	exists, err := s.ExistsByISBN(ctx, "9780261103283")
	require.NoError(t, err)
	assert.True(t, exists)

	input := newBook("The Hobbit (Updated)", "J. R. R. Tolkien", "9780261103283")
	input.Description = ""
	updated, err := s.Update(ctx, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit (Updated)", updated.Title)
	assert.Empty(t, updated.Description)

	_, err = s.Update(ctx, created.ID+1000, input)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)
}

func TestGormStore_DuplicateISBN(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, newBook("The Hobbit", "Tolkien", "9780261103283"))
	require.NoError(t, err)
	other, err := s.Create(ctx, newBook("Silmarillion", "Tolkien", "9780261102736"))
	require.NoError(t, err)

	_, err = s.Create(ctx, newBook("Copy", "Someone", "9780261103283"))
	assert.ErrorIs(t, err, ErrDuplicateISBN)

	_, err = s.Update(ctx, other.ID, newBook("Silmarillion", "Tolkien", "9780261103283"))
	assert.ErrorIs(t, err, ErrDuplicateISBN)

	books, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestGormStore_ConcurrentCreateSameISBN(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	const workers = 10
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, newBook("Race", "Racer", "9780261103283"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateISBN)
	}
	assert.Equal(t, 1, succeeded)
}

func TestGormStore_Search(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, newBook("The Hobbit", "J. R. R. Tolkien", "9780261103283"))
	require.NoError(t, err)
	_, err = s.Create(ctx, newBook("100% Dune", "Frank Herbert", "9780441013593"))
	require.NoError(t, err)

	books, err := s.Search(ctx, SearchFilter{Title: strPtr("HOBBIT")})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)

	books, err = s.Search(ctx, SearchFilter{Title: strPtr("hobbit"), Author: strPtr("herbert")})
	require.NoError(t, err)
	assert.Empty(t, books)

	books, err = s.Search(ctx, SearchFilter{Title: strPtr("0%")})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "100% Dune", books[0].Title)

	books, err = s.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	require.NoError(t, s.Ping(ctx))
}
