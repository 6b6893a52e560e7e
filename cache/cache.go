package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/zonecache/internal/singleflight"
	"github.com/IvanBrykalov/zonecache/internal/util"
	"github.com/IvanBrykalov/zonecache/segmented"
)

// MinShardCapacity is the smallest per-shard capacity the automatic shard
// count will go down to.
const MinShardCapacity = 64

var (
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")
	// ErrClosed is returned by GetOrLoad after Close.
	ErrClosed = errors.New("cache: closed")

	// errAbsent short-circuits segmented.Load into a lookup that never inserts.
	errAbsent = errors.New("cache: absent")
)

// cache shards keys over independent segmented caches.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool

	opt    Options[K, V]
	logger log.Logger

	// sf coalesces concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]

	// testHookFlight runs in GetOrLoad between the first lookup and the
	// flight. Tests only.
	testHookFlight func(k K)
}

// New constructs a cache with the provided Options.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - nil Logger   -> no logging
//   - nil Hash     -> util.Hash (strings, integers, fmt.Stringer)
//   - Shards <= 0  -> auto, rounded up to the next power of two
//
// Capacity is split across shards so that the shard capacities sum to it
// exactly (the first Capacity%shards shards get one extra entry). Zone limits
// are scaled per shard and must still satisfy the segmented limit ordering.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("cache: %w", segmented.ErrInvalidCapacity)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}
	if opt.Hash == nil {
		opt.Hash = util.Hash[K]
	}

	n := util.ShardCount(opt.Shards, opt.Capacity, MinShardCapacity)
	base, extra := opt.Capacity/n, opt.Capacity%n
	onEvict := func(k K, v V) {
		opt.Metrics.Evict()
		if opt.OnEvict != nil {
			opt.OnEvict(k, v)
		}
	}

	c := &cache[K, V]{
		shards: make([]*shard[K, V], n),
		hash:   opt.Hash,
		opt:    opt,
		logger: opt.Logger,
	}
	for i := range c.shards {
		shardCap := base
		if i < extra {
			shardCap++
		}
		s, err := newShard(segmented.Options[K, V]{
			Capacity:       shardCap,
			NominatedLimit: scale(opt.NominatedLimit, shardCap, opt.Capacity),
			AddedLimit:     scale(opt.AddedLimit, shardCap, opt.Capacity),
			Factory:        opt.Factory,
			OnEvict:        onEvict,
		})
		if err != nil {
			return nil, fmt.Errorf("cache: shard %d of %d with %d entries: %w", i, n, shardCap, err)
		}
		c.shards[i] = s
	}

	lim := c.shards[0].seg.Limits()
	level.Info(c.logger).Log("msg", "cache created", "capacity", opt.Capacity, "shards", n,
		"shard_capacity", lim.Capacity, "shard_nominated", lim.Nominated, "shard_added", lim.Added)
	return c, nil
}

// scale converts a global zone limit to a per-shard one (ceil). 0 stays 0 so
// the segmented defaults apply.
func scale(limit, shardCap, capacity int) int {
	if limit <= 0 {
		return limit
	}
	return (limit*shardCap + capacity - 1) / capacity
}

// ---- Cache[K,V] implementation ----

// Fetch returns a copy of the value under k, creating it on a miss.
func (c *cache[K, V]) Fetch(k K) V {
	var out V
	c.Update(k, func(v *V) { out = *v })
	return out
}

// Update runs fn on the value under k under the shard lock.
func (c *cache[K, V]) Update(k K, fn func(v *V)) {
	if c.closed.Load() {
		return
	}
	c.record(c.getShard(k).fetch(k, fn))
}

// GetOrLoad returns the value for k; on a miss it loads via Options.Loader,
// coalescing concurrent loads for the same key. The loaded value is stored
// only if k is still absent; otherwise the resident value wins.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}

	s := c.getShard(k)
	if v, o, err := s.load(k, absent[K, V]); err == nil {
		c.record(o)
		return v, nil
	}
	// Every call reports exactly one Hit or Miss; from here on it is a Miss.
	c.opt.Metrics.Miss()
	if c.testHookFlight != nil {
		c.testHookFlight(k)
	}

	leader := false
	v, err, shared := c.sf.Do(ctx, k, func() (V, error) {
		leader = true
		// double-check after winning the flight
		if v, o, err := s.load(k, absent[K, V]); err == nil {
			c.recordStore(o)
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err != nil {
			level.Debug(c.logger).Log("msg", "load failed", "key", k, "err", err)
			return v, err
		}
		v, o, _ := s.load(k, func(K) (V, error) { return v, nil })
		c.recordStore(o)
		return v, nil
	})
	if shared && !leader {
		c.opt.Metrics.Coalesced()
	}
	return v, err
}

// Len returns the total number of resident entries across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += int(s.size.Load())
	}
	return total
}

// Stats sums the counters of all shards.
func (c *cache[K, V]) Stats() segmented.Stats {
	var sum segmented.Stats
	for _, s := range c.shards {
		st := s.stats()
		sum.Hits += st.Hits
		sum.Misses += st.Misses
		sum.Promotions += st.Promotions
		sum.Evictions += st.Evictions
	}
	return sum
}

// Zones returns the zone layout of every shard.
func (c *cache[K, V]) Zones() []segmented.Zones[K] {
	out := make([]segmented.Zones[K], len(c.shards))
	for i, s := range c.shards {
		out[i] = s.zones()
	}
	return out
}

// Close marks the cache as closed. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	level.Debug(c.logger).Log("msg", "cache closed", "entries", c.Len())
	return nil
}

// ---- helpers ----

// getShard picks a shard by hashing the key and masking with len-1.
// len(c.shards) is guaranteed to be a power of two.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}

// record reports one fetch-or-create access.
func (c *cache[K, V]) record(o outcome) {
	if o.hit {
		c.opt.Metrics.Hit()
	} else {
		c.opt.Metrics.Miss()
	}
	c.recordStore(o)
}

// recordStore reports the side effects of an access whose hit/miss was
// already counted.
func (c *cache[K, V]) recordStore(o outcome) {
	if o.promoted {
		c.opt.Metrics.Promote()
	}
	if o.grew {
		c.opt.Metrics.Size(c.Len())
	}
}

func absent[K comparable, V any](K) (V, error) {
	var zero V
	return zero, errAbsent
}
