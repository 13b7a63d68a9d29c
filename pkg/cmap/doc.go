// Package cmap provides a sharded concurrent map.
//
// Each shard has its own RWMutex. Keys are spread over shards with
// hash/maphash; string keys take a fast path without formatting.
//
//	m := cmap.New[string, entry]()
//	m.Set("products", e)
//	e, ok := m.Get("products")
//
// Range and the snapshot helpers lock one shard at a time, so they do not
// observe a single point in time across shards. Callers that need that
// serialize their writers.
package cmap
