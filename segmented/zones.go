package segmented

import (
	"errors"
	"fmt"
)

// ErrCorrupted is wrapped by every error returned from Check.
var ErrCorrupted = errors.New("segmented: structure corrupted")

// Zones lists the resident keys of each zone in tail-to-head order:
// Nominated starts at the eviction end, Reused ends at the most recently
// promoted entry.
type Zones[K comparable] struct {
	Nominated []K
	Added     []K
	Reused    []K
}

// Zones walks the list once and returns the keys of every zone. It does not
// change the eviction order and is meant for tests and diagnostics.
func (c *Cache[K, V]) Zones() Zones[K] {
	z := Zones[K]{
		Nominated: make([]K, 0, c.zone[stateNominated]),
		Added:     make([]K, 0, c.zone[stateAdded]),
		Reused:    make([]K, 0, c.zone[stateReused]),
	}
	i := c.nodes[sentinel].next
	for ; i != c.nomination; i = c.nodes[i].next {
		z.Nominated = append(z.Nominated, c.nodes[i].key)
	}
	for ; i != c.inlet; i = c.nodes[i].next {
		z.Added = append(z.Added, c.nodes[i].key)
	}
	for ; i != sentinel; i = c.nodes[i].next {
		z.Reused = append(z.Reused, c.nodes[i].key)
	}
	return z
}

// Check verifies the structural invariants: link symmetry, zone contiguity
// (Nominated*, Added*, Reused* from the tail), marker placement, per-zone
// counters and their targets, index/list agreement and the capacity bound.
// It is O(n).
func (c *Cache[K, V]) Check() error {
	var (
		seen       int
		last       = stateNominated
		nomination = sentinel
		inlet      = sentinel
	)
	for i := c.nodes[sentinel].next; i != sentinel; i = c.nodes[i].next {
		n := &c.nodes[i]
		if seen++; seen > c.lim.Capacity {
			return fmt.Errorf("%w: list longer than capacity %d", ErrCorrupted, c.lim.Capacity)
		}
		if c.nodes[n.next].prev != i || c.nodes[n.prev].next != i {
			return fmt.Errorf("%w: broken links at slot %d", ErrCorrupted, i)
		}
		if n.st < stateNominated || n.st > stateReused {
			return fmt.Errorf("%w: slot %d is linked but %s", ErrCorrupted, i, n.st)
		}
		if n.st < last {
			return fmt.Errorf("%w: %s slot %d follows a %s slot", ErrCorrupted, n.st, i, last)
		}
		if n.st > stateNominated && nomination == sentinel {
			nomination = i
		}
		if n.st == stateReused && inlet == sentinel {
			inlet = i
		}
		last = n.st
		if j, ok := c.index[n.key]; !ok || j != i {
			return fmt.Errorf("%w: key %v at slot %d is not indexed there", ErrCorrupted, n.key, i)
		}
	}
	switch {
	case nomination != c.nomination:
		return fmt.Errorf("%w: nomination marker at slot %d, want %d", ErrCorrupted, c.nomination, nomination)
	case inlet != c.inlet:
		return fmt.Errorf("%w: inlet marker at slot %d, want %d", ErrCorrupted, c.inlet, inlet)
	case seen != c.Len():
		return fmt.Errorf("%w: %d linked nodes, zone counters say %d", ErrCorrupted, seen, c.Len())
	case seen != len(c.index):
		return fmt.Errorf("%w: %d linked nodes, %d indexed keys", ErrCorrupted, seen, len(c.index))
	}

	// Zones never exceed their targets; once full they match them exactly.
	target := [4]int{
		stateNominated: c.lim.Nominated,
		stateAdded:     c.lim.Added - c.lim.Nominated,
		stateReused:    c.lim.Capacity - c.lim.Added,
	}
	for st := stateNominated; st <= stateReused; st++ {
		if c.zone[st] > target[st] {
			return fmt.Errorf("%w: %d %s entries exceed target %d", ErrCorrupted, c.zone[st], st, target[st])
		}
	}

	var counted [4]int
	for i := c.nodes[sentinel].next; i != sentinel; i = c.nodes[i].next {
		counted[c.nodes[i].st]++
	}
	if counted != c.zone {
		return fmt.Errorf("%w: zone counters %v, walked %v", ErrCorrupted, c.zone[1:], counted[1:])
	}
	return nil
}
