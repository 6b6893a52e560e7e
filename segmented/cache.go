package segmented

// Stats are cumulative counters of a Cache.
type Stats struct {
	Hits       uint64 // lookups that found the key
	Misses     uint64 // lookups that created a new entry
	Promotions uint64 // hits that moved a nominated entry to the head
	Evictions  uint64 // entries removed to make room
}

// Cache is a fixed-capacity segmented cache. See the package documentation
// for the zone layout. The zero value is not usable; construct with New.
type Cache[K comparable, V any] struct {
	// nodes[0] is the sentinel; nodes[1..used] hold live entries.
	nodes []node[K, V]
	index map[K]int
	used  int

	// Zone markers: nomination is the first Added node, inlet the first
	// Reused node. Either equals sentinel when the zones toward the head
	// are empty, and nomination == inlet when the Added zone is empty.
	nomination int
	inlet      int

	// zone[st] is the number of nodes tagged st (zone[stateDetached] unused).
	zone [4]int

	lim     Limits
	factory func(K) V
	onEvict func(K, V)

	// busy guards against callbacks re-entering the cache.
	busy  bool
	stats Stats
}

// New validates opt and builds an empty Cache. The arena for Capacity
// entries is allocated up front.
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	lim, err := opt.limits()
	if err != nil {
		return nil, err
	}
	c := &Cache[K, V]{
		nodes:      make([]node[K, V], lim.Capacity+1),
		index:      make(map[K]int, lim.Capacity),
		nomination: sentinel,
		inlet:      sentinel,
		lim:        lim,
		factory:    opt.Factory,
		onEvict:    opt.OnEvict,
	}
	for i := range c.nodes {
		c.makeDetached(i)
	}
	return c, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	c, err := New(opt)
	if err != nil {
		panic(err)
	}
	return c
}

// Fetch returns a pointer to the value stored under k, creating the entry on
// a miss. A hit on a nominated entry promotes it to the hot zone; a miss on a
// full cache evicts the coldest entry first.
//
// The pointer stays valid until the entry is evicted; after that the slot is
// reused for another key, so callers must not retain it across Fetch calls
// that may miss.
func (c *Cache[K, V]) Fetch(k K) *V {
	c.enter()
	defer c.leave()

	if i, ok := c.index[k]; ok {
		c.hit(i)
		return &c.nodes[i].val
	}
	var v V
	if c.factory != nil {
		v = c.factory(k)
	}
	return &c.nodes[c.insert(k, v)].val
}

// Load is Fetch with a fallible, per-call factory. On a hit fn is not called.
// On a miss fn builds the value; if it fails nothing is inserted or evicted
// and the error is returned unchanged. fn must not call back into the cache.
func (c *Cache[K, V]) Load(k K, fn func(k K) (V, error)) (*V, error) {
	c.enter()
	defer c.leave()

	if i, ok := c.index[k]; ok {
		c.hit(i)
		return &c.nodes[i].val, nil
	}
	v, err := fn(k)
	if err != nil {
		return nil, err
	}
	return &c.nodes[c.insert(k, v)].val, nil
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	return c.zone[stateNominated] + c.zone[stateAdded] + c.zone[stateReused]
}

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.lim.Capacity }

// Limits returns the effective zone sizing (defaults applied).
func (c *Cache[K, V]) Limits() Limits { return c.lim }

// Stats returns a snapshot of the cumulative counters.
func (c *Cache[K, V]) Stats() Stats { return c.stats }

func (c *Cache[K, V]) hit(i int) {
	c.stats.Hits++
	c.promote(i)
}

func (c *Cache[K, V]) enter() {
	if c.busy {
		panic("segmented: re-entrant call (Factory/OnEvict must not use the cache)")
	}
	c.busy = true
}

func (c *Cache[K, V]) leave() { c.busy = false }
