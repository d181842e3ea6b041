package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/storefront/pkg/kvstore"
)

// Store implements kvstore.Store on a redis client. Every key is prefixed so
// several installations can share one database.
type Store struct {
	db     redis.UniversalClient
	prefix string
}

var _ kvstore.Store = (*Store)(nil)

// NewStore wraps client. prefix is prepended to every key.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{db: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get returns kvstore.ErrNotFound when key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, kvstore.ErrInvalidKey
	}
	val, err := s.db.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kvstore.ErrNotFound
	}
	return val, err
}

// Set stores value without expiration; token lifetime is enforced by the API.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return kvstore.ErrInvalidKey
	}
	return s.db.Set(ctx, s.key(key), value, 0).Err()
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kvstore.ErrInvalidKey
	}
	return s.db.Del(ctx, s.key(key)).Err()
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return Healthcheck(s.db)(ctx)
}

// Close terminates the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
