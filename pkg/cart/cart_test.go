package cart_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/cart"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/kvstore"
)

var ctx = context.Background()

func product(id int64, price string) catalog.Product {
	return catalog.Product{ID: id, Name: "product", Slug: "p", Price: decimal.RequireFromString(price)}
}

func newCart(t *testing.T, store kvstore.Store) *cart.Manager {
	t.Helper()
	m := cart.New(ctx, store)
	t.Cleanup(m.Close)
	return m
}

// assertDerived checks total and item count against the item list.
func assertDerived(t *testing.T, m *cart.Manager) {
	t.Helper()
	st := m.State()
	total := decimal.Zero
	count := 0
	seen := map[int64]bool{}
	for _, it := range st.Items {
		assert.Positive(t, it.Quantity)
		assert.False(t, seen[it.Product.ID], "duplicate product %d", it.Product.ID)
		seen[it.Product.ID] = true
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	assert.True(t, total.Equal(st.Total), "total %s != %s", st.Total, total)
	assert.Equal(t, count, st.ItemCount)
	assert.True(t, m.Total().Equal(st.Total))
	assert.Equal(t, st.ItemCount, m.ItemCount())
}

func assertSameItems(t *testing.T, want, got []cart.Item) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Product.ID, got[i].Product.ID)
		assert.Equal(t, want[i].Product.Name, got[i].Product.Name)
		assert.True(t, want[i].Product.Price.Equal(got[i].Product.Price))
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
	}
}

func TestAdd_Merges(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())
	p := product(1, "9.99")

	require.NoError(t, m.Add(ctx, p, 2))
	require.NoError(t, m.Add(ctx, p, 3))

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, m.ItemCount())
	assert.True(t, m.Total().Equal(decimal.RequireFromString("49.95")))
}

func TestAdd_KeepsOrder(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())
	require.NoError(t, m.Add(ctx, product(3, "1"), 1))
	require.NoError(t, m.Add(ctx, product(1, "1"), 1))
	require.NoError(t, m.Add(ctx, product(2, "1"), 1))
	require.NoError(t, m.Add(ctx, product(1, "1"), 1))

	var ids []int64
	for _, it := range m.Items() {
		ids = append(ids, it.Product.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestAdd_InvalidInput(t *testing.T) {
	t.Parallel()
	store := kvstore.NewMemoryStore()
	m := newCart(t, store)

	assert.ErrorIs(t, m.Add(ctx, product(1, "1"), 0), cart.ErrInvalidQuantity)
	assert.ErrorIs(t, m.Add(ctx, product(1, "1"), -2), cart.ErrInvalidQuantity)
	assert.ErrorIs(t, m.Add(ctx, catalog.Product{}, 1), cart.ErrInvalidProduct)
	assert.Empty(t, m.Items())
	assert.Equal(t, 0, store.Len())
}

func TestExactTotals(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())
	require.NoError(t, m.Add(ctx, product(1, "0.1"), 1))
	require.NoError(t, m.Add(ctx, product(2, "0.2"), 1))
	assert.Equal(t, "0.3", m.Total().String())
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())
	require.NoError(t, m.Add(ctx, product(1, "2.50"), 1))
	require.NoError(t, m.Add(ctx, product(2, "1.00"), 1))

	m.SetQuantity(ctx, 1, 4)
	assert.Equal(t, 5, m.ItemCount())
	assert.True(t, m.Total().Equal(decimal.RequireFromString("11")))

	m.SetQuantity(ctx, 1, 0)
	require.Len(t, m.Items(), 1)
	assert.Equal(t, int64(2), m.Items()[0].Product.ID)

	m.SetQuantity(ctx, 2, -1)
	assert.Empty(t, m.Items())

	m.SetQuantity(ctx, 42, 3)
	assert.Empty(t, m.Items())
}

func TestRemove(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())
	require.NoError(t, m.Add(ctx, product(1, "3"), 2))

	m.Remove(ctx, 99)
	assert.Len(t, m.Items(), 1)

	m.Remove(ctx, 1)
	assert.Empty(t, m.Items())
	assert.True(t, m.Total().IsZero())
	assert.Equal(t, 0, m.ItemCount())
}

func TestClear(t *testing.T) {
	t.Parallel()
	store := kvstore.NewMemoryStore()
	m := newCart(t, store)
	require.NoError(t, m.Add(ctx, product(1, "3"), 2))
	require.Equal(t, 1, store.Len())

	m.Clear(ctx)
	assert.Empty(t, m.Items())
	assert.True(t, m.Total().IsZero())
	assert.Equal(t, 0, store.Len())
}

func TestInvariantsUnderRandomOps(t *testing.T) {
	t.Parallel()
	store := kvstore.NewMemoryStore()
	m := newCart(t, store)
	rng := rand.New(rand.NewPCG(1, 2))
	prices := []string{"0.01", "0.99", "9.99", "19.95", "100", "0"}

	for step := range 500 {
		id := int64(rng.IntN(8) + 1)
		switch rng.IntN(4) {
		case 0, 1:
			require.NoError(t, m.Add(ctx, product(id, prices[int(id)%len(prices)]), rng.IntN(5)+1))
		case 2:
			m.Remove(ctx, id)
		case 3:
			m.SetQuantity(ctx, id, rng.IntN(6)-1)
		}
		assertDerived(t, m)

		if step%50 == 0 {
			reloaded := cart.New(ctx, store)
			assertSameItems(t, m.Items(), reloaded.Items())
			assert.True(t, m.Total().Equal(reloaded.Total()))
			reloaded.Close()
		}
	}
}

func TestPersistReload(t *testing.T) {
	t.Parallel()
	store, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	m := newCart(t, store)
	require.NoError(t, m.Add(ctx, product(5, "12.34"), 1))
	require.NoError(t, m.Add(ctx, product(2, "0.66"), 3))
	m.SetQuantity(ctx, 5, 2)

	reloaded := newCart(t, store)
	assertSameItems(t, m.Items(), reloaded.Items())
	assert.True(t, reloaded.Total().Equal(decimal.RequireFromString("26.66")))
	assert.Equal(t, 5, reloaded.ItemCount())

	m.Remove(ctx, 5)
	m.Remove(ctx, 2)
	empty := newCart(t, store)
	assert.Empty(t, empty.Items())
}

func TestLoad_UnreadableOrInvalid(t *testing.T) {
	t.Parallel()
	t.Run("garbage", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, cart.KeyCart, []byte("not json")))
		m := newCart(t, store)
		assert.Empty(t, m.Items())
		assert.True(t, m.Total().IsZero())
	})

	t.Run("sanitized", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		raw := `[{"product":{"id":1,"price":"2"},"quantity":1},
			{"product":{"id":2,"price":"5"},"quantity":0},
			{"product":{"id":1,"price":"2"},"quantity":2},
			{"product":{"id":3,"price":1.5},"quantity":2}]`
		require.NoError(t, store.Set(ctx, cart.KeyCart, []byte(raw)))
		m := newCart(t, store)

		items := m.Items()
		require.Len(t, items, 2)
		assert.Equal(t, int64(1), items[0].Product.ID)
		assert.Equal(t, 3, items[0].Quantity)
		assert.Equal(t, int64(3), items[1].Product.ID)
		assertDerived(t, m)
		assert.True(t, m.Total().Equal(decimal.RequireFromString("9")))
	})
}

type failingStore struct{}

func (*failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("io error") }
func (*failingStore) Set(context.Context, string, []byte) error   { return errors.New("io error") }
func (*failingStore) Delete(context.Context, string) error        { return errors.New("io error") }

func TestStorageErrorsAreSwallowed(t *testing.T) {
	t.Parallel()
	m := newCart(t, &failingStore{})
	require.NoError(t, m.Add(ctx, product(1, "1"), 1))
	m.SetQuantity(ctx, 1, 2)
	m.Remove(ctx, 1)
	m.Clear(ctx)
	assert.Empty(t, m.Items())
}

func TestEvents(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())
	sub := m.Subscribe(ctx)
	defer sub.Close()

	require.NoError(t, m.Add(ctx, product(1, "4"), 2))
	ev := <-sub.C()
	assert.Equal(t, cart.OpAdd, ev.Op)
	assert.Equal(t, 2, ev.State.ItemCount)
	assert.True(t, ev.State.Total.Equal(decimal.NewFromInt(8)))

	m.Clear(ctx)
	ev = <-sub.C()
	assert.Equal(t, cart.OpClear, ev.Op)
	assert.Empty(t, ev.State.Items)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	t.Parallel()
	m := newCart(t, kvstore.NewMemoryStore())

	p := product(1, "10.00")
	orig := decimal.RequireFromString("15.00")
	p.OriginalPrice = &orig
	p.Category = &catalog.Category{ID: 2, Name: "Books"}
	require.NoError(t, m.Add(ctx, p, 1))

	// The caller's product, a returned item and a state snapshot are all
	// independent of the stored line.
	p.Category.Name = "changed by caller"
	*p.OriginalPrice = decimal.Zero

	items := m.Items()
	items[0].Product.Category.Name = "changed via Items"

	st := m.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "Books", st.Items[0].Product.Category.Name)
	assert.Equal(t, "15", st.Items[0].Product.OriginalPrice.String())

	st.Items[0].Product.Category.Name = "changed via State"
	assert.Equal(t, "Books", m.Items()[0].Product.Category.Name)
}
