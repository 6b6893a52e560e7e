package segmented

// insert admits k→v as a new entry and returns its arena slot.
// The caller has already checked that k is absent.
func (c *Cache[K, V]) insert(k K, v V) int {
	c.stats.Misses++
	if c.Len() < c.lim.Capacity {
		return c.grow(k, v)
	}
	return c.replace(k, v)
}

// grow places a new entry while the cache is warming up. No zone ever holds
// more than its target (see Check), so the new entry goes to the first zone
// still below target: probation, then Added, then the hot zone, which grows
// by moving the head-most Added entry across inlet. The three zones hold
// exactly their configured sizes when the cache becomes full.
func (c *Cache[K, V]) grow(k K, v V) int {
	c.used++
	i := c.used
	c.bind(i, k, v)

	switch {
	case c.zone[stateNominated] < c.lim.Nominated:
		c.insertBefore(c.nomination, i)
		c.relabel(i, stateNominated)
	case c.zone[stateAdded] < c.lim.Added-c.lim.Nominated:
		c.appendAdded(i)
	default:
		c.inlet = c.nodes[c.inlet].prev
		c.relabel(c.inlet, stateReused)
		c.appendAdded(i)
	}
	return i
}

// replace evicts the tail, reuses its slot for k→v at the tail end of the
// Added zone and moves one Added entry into probation. The eviction observer
// runs last, once the structure is consistent again.
func (c *Cache[K, V]) replace(k K, v V) int {
	i := c.nodes[sentinel].next
	oldK, oldV := c.unlink(i)

	c.bind(i, k, v)
	c.appendAdded(i)
	c.cascade(false)

	c.stats.Evictions++
	if c.onEvict != nil {
		c.onEvict(oldK, oldV)
	}
	return i
}

// appendAdded links the detached node i at the head end of the Added zone,
// right before inlet.
func (c *Cache[K, V]) appendAdded(i int) {
	c.insertBefore(c.inlet, i)
	c.relabel(i, stateAdded)
	if c.nomination == c.inlet {
		c.nomination = i
	}
}

// unlink removes node i from the list and the index and returns what it held.
// The markers are moved off i first; this matters only when the zones toward
// the tail are empty.
func (c *Cache[K, V]) unlink(i int) (K, V) {
	n := &c.nodes[i]
	if c.nomination == i {
		c.nomination = n.next
	}
	if c.inlet == i {
		c.inlet = n.next
	}
	c.detach(i)
	c.relabel(i, stateDetached)
	c.makeDetached(i)
	delete(c.index, n.key)

	k, v := n.key, n.val
	var zeroK K
	var zeroV V
	n.key, n.val = zeroK, zeroV
	return k, v
}

// bind stores k→v in slot i and indexes it.
func (c *Cache[K, V]) bind(i int, k K, v V) {
	n := &c.nodes[i]
	n.key, n.val = k, v
	c.index[k] = i
}
