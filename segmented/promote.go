package segmented

// promote handles a hit on node i. Only nominated entries move: the node
// jumps to the head as Reused and the zones cascade by one step. Hits on
// Added or Reused entries leave position and state unchanged.
func (c *Cache[K, V]) promote(i int) {
	switch c.nodes[i].st {
	case stateNominated:
	case stateDetached:
		panic("segmented: promote of a detached node")
	default:
		return
	}

	// The oldest hot entry is handed back to Added only if there was one
	// before i arrived; i itself always stays Reused.
	hot := c.inlet != sentinel

	c.detach(i)
	c.insertBefore(sentinel, i)
	c.relabel(i, stateReused)
	if !hot {
		if c.nomination == sentinel {
			c.nomination = i
		}
		c.inlet = i
	}
	c.stats.Promotions++
	c.cascade(hot)
}

// cascade rebalances the zones by one step toward their targets: the first
// Added node, if any, is relabeled Nominated (refilling probation) and, when
// reclaim is set, the first Reused node is relabeled Added.
func (c *Cache[K, V]) cascade(reclaim bool) {
	if c.nomination != c.inlet {
		c.relabel(c.nomination, stateNominated)
		c.nomination = c.nodes[c.nomination].next
	}
	if reclaim && c.inlet != sentinel {
		c.relabel(c.inlet, stateAdded)
		c.inlet = c.nodes[c.inlet].next
	}
}
