package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Store persists opaque values by key.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Driver names accepted by Config.Driver.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
)

// Config selects and locates the durable store.
type Config struct {
	Driver  string `env:"STOREFRONT_STORE_DRIVER" envDefault:"bolt"`
	DataDir string `env:"STOREFRONT_DATA_DIR" envDefault:".storefront"`
}

// GetJSON decodes the value under key into v.
// Returns ErrNotFound for absent keys and ErrDecode for malformed values.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
