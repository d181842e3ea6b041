package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/storefront/pkg/cache"
)

func TestLRU_GetPut(t *testing.T) {
	t.Parallel()
	c := cache.NewLRU[int, string](2, 0)

	c.Put(1, "one")
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	_, ok = c.Get(2)
	assert.False(t, ok)

	c.Put(1, "uno")
	v, _ = c.Get(1)
	assert.Equal(t, "uno", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()
	c := cache.NewLRU[int, string](2, 0)
	c.Put(1, "one")
	c.Put(2, "two")

	// Touch 1 so 2 becomes the eviction candidate.
	_, _ = c.Get(1)
	c.Put(3, "three")

	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_TTL(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := cache.NewLRU[string, int](4, time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Put("a", 1)
	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_RemoveAndClear(t *testing.T) {
	t.Parallel()
	c := cache.NewLRU[int, int](3, 0)
	c.Put(1, 1)
	c.Put(2, 2)

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(2)
	assert.False(t, ok)
}

func TestLRU_InvalidCapacity(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { cache.NewLRU[int, int](0, 0) })
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()
	c := cache.NewLRU[int, int](16, 0)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := range 100 {
				c.Put(base*100+j, j)
				_, _ = c.Get(base*100 + j)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
