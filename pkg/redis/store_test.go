package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/kvstore"
	"github.com/dmitrymomot/storefront/pkg/kvstore/storetest"
	"github.com/dmitrymomot/storefront/pkg/redis"
)

func testConfig(t *testing.T) redis.Config {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	return redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		RetryInterval:  100 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	}
}

func TestStore(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	client, err := redis.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storetest.Run(t, func(t *testing.T) kvstore.Store {
		// A fresh prefix per subtest gives every run an empty namespace.
		return redis.NewStore(client, "storefront-test:"+uuid.NewString()+":")
	})

	require.NoError(t, redis.NewStore(client, "").Ping(context.Background()))
}

func TestStore_PingUnreachable(t *testing.T) {
	t.Parallel()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	err := redis.NewStore(client, "").Ping(context.Background())
	assert.ErrorIs(t, err, redis.ErrUnhealthy)
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()
	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "not-a-url://"})
	assert.ErrorIs(t, err, redis.ErrInvalidURL)
}

func TestConnect_EmptyURL(t *testing.T) {
	t.Parallel()
	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyURL)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()
	_, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrNotReady)
}
