package segmented

import "fmt"

// detach unlinks node i from the list in O(1). Its own links and state are
// left untouched; callers either splice it back or reset it.
func (c *Cache[K, V]) detach(i int) {
	n := &c.nodes[i]
	c.nodes[n.prev].next = n.next
	c.nodes[n.next].prev = n.prev
}

// insertBefore splices node i immediately before position at (toward the tail).
func (c *Cache[K, V]) insertBefore(at, i int) {
	n := &c.nodes[i]
	n.next = at
	n.prev = c.nodes[at].prev
	c.nodes[n.prev].next = i
	c.nodes[at].prev = i
}

// makeDetached resets node i to the unlinked state.
func (c *Cache[K, V]) makeDetached(i int) {
	n := &c.nodes[i]
	n.next, n.prev = i, i
	n.st = stateDetached
}

// relabel moves node i to state to, keeping the per-zone counters in step.
// An illegal transition is a bug in this package and panics.
func (c *Cache[K, V]) relabel(i int, to state) {
	n := &c.nodes[i]
	if i == sentinel || !transitions[n.st][to] {
		panic(fmt.Sprintf("segmented: illegal transition %s -> %s (slot %d)", n.st, to, i))
	}
	if n.st != stateDetached {
		c.zone[n.st]--
	}
	if to != stateDetached {
		c.zone[to]++
	}
	n.st = to
}
