package cache

import (
	"context"

	"github.com/IvanBrykalov/zonecache/segmented"
)

// Cache is a sharded, concurrency-safe front for segmented caches.
// All methods are safe for concurrent use by multiple goroutines.
//
// Every access is fetch-or-create: there is no separate insert, peek or
// delete. Entries leave only through eviction.
type Cache[K comparable, V any] interface {
	// Fetch returns a copy of the value under k, creating it with
	// Options.Factory (or the zero value) on a miss.
	Fetch(k K) V

	// Update runs fn on the value under k while the shard lock is held,
	// creating the entry first on a miss. fn must not call the cache.
	Update(k K, fn func(v *V))

	// GetOrLoad returns the value under k, loading it via Options.Loader on a
	// miss. Concurrent loads for the same key are coalesced. A failed load
	// inserts nothing. Without a Loader it returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Stats sums the counters of all shards.
	Stats() segmented.Stats

	// Zones returns the zone layout of every shard, in shard order.
	Zones() []segmented.Zones[K]

	// Close marks the cache closed. Later calls return zero values or ErrClosed.
	Close() error
}
