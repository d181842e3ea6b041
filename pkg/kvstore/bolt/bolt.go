// Package bolt provides a bbolt-backed kvstore.Store.
package bolt

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/dmitrymomot/storefront/pkg/kvstore"
)

// DefaultBucket holds every key when no bucket is given.
const DefaultBucket = "storefront"

// Store implements kvstore.Store on top of a single bbolt bucket.
type Store struct {
	db     *bbolt.DB
	bucket []byte
	owned  bool
}

var _ kvstore.Store = (*Store)(nil)

// New wraps an open database. The bucket is created if it does not exist.
// The caller keeps ownership of db.
func New(db *bbolt.DB, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	s := &Store{db: db, bucket: []byte(bucket)}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket %q: %w", bucket, err)
	}
	return s, nil
}

// Open opens (or creates) the database file at path and returns a Store that
// closes it on Close. A short lock timeout keeps a second process from
// hanging forever on the file lock.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := New(db, DefaultBucket)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Close closes the database if the Store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, kvstore.ErrInvalidKey
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return kvstore.ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return kvstore.ErrInvalidKey
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
}

func (s *Store) Delete(_ context.Context, key string) error {
	if key == "" {
		return kvstore.ErrInvalidKey
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}
