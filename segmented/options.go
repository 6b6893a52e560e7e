package segmented

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned by New when Capacity <= 0.
	ErrInvalidCapacity = errors.New("segmented: capacity must be > 0")
	// ErrInvalidLimits is returned by New when the zone limits do not satisfy
	// 0 < NominatedLimit < AddedLimit < Capacity.
	ErrInvalidLimits = errors.New("segmented: zone limits must satisfy 0 < nominated < added < capacity")
)

// Options configures a Cache. All fields are fixed for the lifetime of the
// instance. Zero values select defaults:
//   - NominatedLimit == 0 => Capacity/2
//   - AddedLimit     == 0 => NominatedLimit + Capacity/4
//   - nil Factory        => the zero value of V is stored on a miss
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries.
	Capacity int

	// NominatedLimit is the target size of the probation zone.
	NominatedLimit int

	// AddedLimit is the cumulative target size of the Nominated and Added
	// zones. Capacity-AddedLimit entries make up the hot zone once full.
	AddedLimit int

	// Factory builds the value for a missing key. It runs inline and must not
	// call back into the cache.
	Factory func(k K) V

	// OnEvict receives every evicted entry. The value is no longer referenced
	// by the cache once the callback returns. It runs inline and must not call
	// back into the cache.
	OnEvict func(k K, v V)
}

// Limits reports the effective sizing of a Cache.
type Limits struct {
	Capacity  int
	Nominated int
	Added     int
}

// limits applies defaults and validates the zone ordering.
func (o Options[K, V]) limits() (Limits, error) {
	if o.Capacity <= 0 {
		return Limits{}, fmt.Errorf("%w (got %d)", ErrInvalidCapacity, o.Capacity)
	}
	l := Limits{
		Capacity:  o.Capacity,
		Nominated: o.NominatedLimit,
		Added:     o.AddedLimit,
	}
	if l.Nominated == 0 {
		l.Nominated = l.Capacity / 2
	}
	if l.Added == 0 {
		l.Added = l.Nominated + l.Capacity/4
	}
	if l.Nominated <= 0 || l.Added <= l.Nominated || l.Capacity <= l.Added {
		return Limits{}, fmt.Errorf("%w (nominated=%d added=%d capacity=%d)",
			ErrInvalidLimits, l.Nominated, l.Added, l.Capacity)
	}
	return l, nil
}
