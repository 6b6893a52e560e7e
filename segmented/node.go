package segmented

import "fmt"

// sentinel is the arena slot that closes the circular list.
// Its next is the tail (coldest) and its prev is the head (hottest).
const sentinel = 0

// state tags the zone a node belongs to. The numeric order matches the
// tail-to-head zone order, which the invariant walk relies on.
type state uint8

const (
	stateDetached state = iota
	stateNominated
	stateAdded
	stateReused
)

func (s state) String() string {
	switch s {
	case stateDetached:
		return "detached"
	case stateNominated:
		return "nominated"
	case stateAdded:
		return "added"
	case stateReused:
		return "reused"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// transitions lists the legal relabelings.
//
//	detached  -> nominated | added          (insertion)
//	nominated -> reused                     (promotion)
//	added     -> nominated                  (cascade)
//	added     -> reused                     (warm-up: inlet steps toward the tail)
//	reused    -> added                      (cascade)
//	live      -> detached                   (eviction)
var transitions = [4][4]bool{
	stateDetached:  {stateNominated: true, stateAdded: true},
	stateNominated: {stateReused: true, stateDetached: true},
	stateAdded:     {stateNominated: true, stateReused: true, stateDetached: true},
	stateReused:    {stateAdded: true, stateDetached: true},
}

// node is one arena slot. The key doubles as the back-reference into the
// index map, so eviction removes the map entry without a search.
type node[K comparable, V any] struct {
	key K
	val V

	// Arena indices of the neighbours in the circular list.
	prev int
	next int

	st state
}
