package cache

import (
	"sync"

	"github.com/IvanBrykalov/zonecache/internal/util"
	"github.com/IvanBrykalov/zonecache/segmented"
)

// shard is an independent partition of the cache: one segmented.Cache
// behind a mutex. A plain Mutex is used because every access, hits included,
// may reorder the zones.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu  sync.Mutex
	seg *segmented.Cache[K, V]

	// size mirrors seg.Len() so Len can be computed without locking.
	_    util.CacheLinePad
	size util.PaddedAtomicInt64
}

// outcome describes what one locked access did, for metrics.
type outcome struct {
	hit      bool
	promoted bool
	grew     bool
}

func newShard[K comparable, V any](opt segmented.Options[K, V]) (*shard[K, V], error) {
	seg, err := segmented.New(opt)
	if err != nil {
		return nil, err
	}
	return &shard[K, V]{seg: seg}, nil
}

// fetch runs fn on the value under k, creating the entry on a miss.
func (s *shard[K, V]) fetch(k K, fn func(v *V)) outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, n := s.seg.Stats(), s.seg.Len()
	fn(s.seg.Fetch(k))
	return s.outcomeLocked(before, n)
}

// load is fetch with a fallible factory. On error nothing changed.
func (s *shard[K, V]) load(k K, fn func(K) (V, error)) (V, outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, n := s.seg.Stats(), s.seg.Len()
	p, err := s.seg.Load(k, fn)
	if err != nil {
		var zero V
		return zero, outcome{}, err
	}
	return *p, s.outcomeLocked(before, n), nil
}

func (s *shard[K, V]) zones() segmented.Zones[K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seg.Zones()
}

func (s *shard[K, V]) stats() segmented.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seg.Stats()
}

func (s *shard[K, V]) outcomeLocked(before segmented.Stats, n int) outcome {
	after := s.seg.Stats()
	o := outcome{
		hit:      after.Hits > before.Hits,
		promoted: after.Promotions > before.Promotions,
		grew:     s.seg.Len() > n,
	}
	if o.grew {
		s.size.Store(int64(s.seg.Len()))
	}
	return o
}
