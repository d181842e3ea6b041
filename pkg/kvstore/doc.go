// Package kvstore is the durable local state used by the storefront SDK: a
// small string-keyed byte store that plays the role a browser's localStorage
// plays for a web client.
//
// Two partitions live in it, each owned by exactly one component:
//
//	tokens -> JSON token pair     (session.Manager)
//	cart   -> JSON line items     (cart.Manager)
//
// Backends:
//
//   - MemoryStore: process-local, used by tests and short-lived tools.
//   - FileStore: one JSON file per key inside a directory, written atomically.
//   - kvstore/bolt: a single bbolt database file.
//   - pkg/redis: a shared redis instance, keys namespaced by prefix.
//
// Get returns ErrNotFound for absent keys; Delete of an absent key succeeds.
// GetJSON and SetJSON wrap the byte API with encoding/json.
package kvstore
