// Package storetest provides a conformance suite for kvstore.Store backends.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/kvstore"
)

// Run exercises the kvstore.Store contract against the store returned by newStore.
// newStore is called once per subtest and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "tokens")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "tokens", []byte(`{"a":1}`)))

		got, err := s.Get(ctx, "tokens")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "cart", []byte("one")))
		require.NoError(t, s.Set(ctx, "cart", []byte("two")))

		got, err := s.Get(ctx, "cart")
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "tokens", []byte("t")))
		require.NoError(t, s.Set(ctx, "cart", []byte("c")))
		require.NoError(t, s.Delete(ctx, "cart"))

		got, err := s.Get(ctx, "tokens")
		require.NoError(t, err)
		assert.Equal(t, "t", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "cart", []byte("c")))
		require.NoError(t, s.Delete(ctx, "cart"))

		_, err := s.Get(ctx, "cart")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("delete missing key", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Delete(ctx, "nothing"))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		s := newStore(t)
		value := []byte("abc")
		require.NoError(t, s.Set(ctx, "k", value))
		value[0] = 'z'

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))

		got[1] = 'z'
		again, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("empty key", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Set(ctx, "", []byte("x")), kvstore.ErrInvalidKey)
		_, err := s.Get(ctx, "")
		assert.ErrorIs(t, err, kvstore.ErrInvalidKey)
	})

	t.Run("json helpers", func(t *testing.T) {
		s := newStore(t)
		type pair struct {
			Access  string `json:"access_token"`
			Refresh string `json:"refresh_token"`
		}
		require.NoError(t, kvstore.SetJSON(ctx, s, "tokens", pair{Access: "a", Refresh: "r"}))

		var got pair
		require.NoError(t, kvstore.GetJSON(ctx, s, "tokens", &got))
		assert.Equal(t, pair{Access: "a", Refresh: "r"}, got)

		require.NoError(t, s.Set(ctx, "tokens", []byte("{not json")))
		assert.ErrorIs(t, kvstore.GetJSON(ctx, s, "tokens", &got), kvstore.ErrDecode)
	})
}
