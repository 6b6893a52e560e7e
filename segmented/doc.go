// Package segmented implements a fixed-capacity, single-owner key/value cache
// with a three-zone, clock-like eviction order that resists pollution from
// one-off scans while still promoting genuinely hot keys.
//
// Layout
//
// All live entries are threaded through one circular doubly linked list that
// is closed by a sentinel. Two floating markers split the list into three
// contiguous zones, tail to head:
//
//	tail  NOMINATED  nomination  ADDED  inlet  REUSED  head
//
//   - Nominated (probation): eviction candidates. The tail is always the
//     longest-resident entry that was never touched while on probation.
//   - Added: entries past insertion but not yet proven hot.
//   - Reused (hot): entries that were accessed while nominated.
//
// A hit on a Nominated entry moves it to the head and tags it Reused; the
// zones are then rebalanced by a one-step cascade (the first Added entry
// becomes Nominated, the first Reused entry becomes Added). A promotion into
// an empty hot zone hands nothing back. Hits on Added or Reused entries do
// not move anything, which keeps the read path cheap.
//
// A miss creates the entry through Options.Factory (or the zero value of V).
// Until the cache is full no zone grows past its configured size, so the
// zones hold exactly NominatedLimit, AddedLimit-NominatedLimit and
// Capacity-AddedLimit entries from the first eviction on. Every later miss
// evicts the tail, reports it to Options.OnEvict and enters the new entry at
// the head end of the Added zone.
//
// Storage
//
// Entries live in a preallocated arena addressed by int indices; slot 0 is the
// sentinel. The key→index map and the list are kept in sync by the Cache and
// are never exposed. No allocation happens after construction besides map
// growth.
//
// Concurrency
//
// A Cache is NOT safe for concurrent use. Wrap it in a mutex (see package
// cache for a sharded wrapper). Factory and OnEvict run inline and must not
// call back into the same Cache; doing so panics.
//
// Basic usage
//
//	c := segmented.MustNew(segmented.Options[int, int]{
//	    Capacity: 1024,
//	    Factory:  func(k int) int { return k * 10 },
//	    OnEvict:  func(k, v int) { log.Println("evicted", k, v) },
//	})
//	v := c.Fetch(42) // miss: created via Factory
//	*v++             // values are mutable in place
package segmented
