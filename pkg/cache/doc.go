// Package cache provides a generic, concurrency-safe LRU cache with an
// optional time-to-live per entry.
//
// The catalog client keeps recently fetched product snapshots here so that a
// product detail view followed by "add to cart" does not hit the API twice.
//
//	c := cache.NewLRU[int64, catalog.Product](256, 5*time.Minute)
//	c.Put(p.ID, p)
//	if p, ok := c.Get(id); ok {
//	    ...
//	}
//
// A zero TTL disables expiry. Expired entries are dropped lazily on access.
package cache
