package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/library-api/internal/model"
)

// DefaultCacheTTL is the lifetime of a cached book when none is configured.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "library:book:"

// CachedStore wraps a Store with a redis read-through cache for Get.
// Update and Delete drop the cached entry after the backing write succeeds.
// Redis failures are logged and never fail the request.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore creates a CachedStore in front of next.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		Store:  next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached book when present, otherwise loads it from the
// backing store and caches it.
func (s *CachedStore) Get(ctx context.Context, id int64) (*model.Book, error) {
	key := cacheKey(id)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var book model.Book
		if jsonErr := json.Unmarshal(data, &book); jsonErr == nil {
			return &book, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	book, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.set(ctx, book)

	return book, nil
}

// Update writes through to the backing store and invalidates the entry.
func (s *CachedStore) Update(ctx context.Context, id int64, book *model.Book) (*model.Book, error) {
	updated, err := s.Store.Update(ctx, id, book)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	return updated, nil
}

// Delete removes the book from the backing store and invalidates the entry.
func (s *CachedStore) Delete(ctx context.Context, id int64) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)

	return nil
}

// Ping checks both the backing store and redis.
func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.Store.Ping(ctx); err != nil {
		return err
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close closes the backing store and the redis client.
func (s *CachedStore) Close() error {
	return errors.Join(s.Store.Close(), s.client.Close())
}

func (s *CachedStore) set(ctx context.Context, book *model.Book) {
	data, err := json.Marshal(book)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.Int64("book_id", book.ID), zap.Error(err))
		return
	}

	if err := s.client.Set(ctx, cacheKey(book.ID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.Int64("book_id", book.ID), zap.Error(err))
	}
}

func (s *CachedStore) invalidate(ctx context.Context, id int64) {
	if err := s.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Int64("book_id", id), zap.Error(err))
	}
}

func cacheKey(id int64) string {
	return cacheKeyPrefix + strconv.FormatInt(id, 10)
}
