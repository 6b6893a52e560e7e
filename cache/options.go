package cache

import (
	"context"
	"flag"

	"github.com/go-kit/log"
)

// Config holds the sizing knobs that are usually set from a config file or
// flags. Zero values select defaults (see Options).
type Config struct {
	// Capacity is the total entry limit. It is split across shards with the
	// remainder spread over the first shards, so Len never exceeds it.
	Capacity int `yaml:"capacity"`

	// Shards is the number of shards. 0 picks ≈ 2*GOMAXPROCS, rounded up to a
	// power of two and reduced until every shard holds at least
	// MinShardCapacity entries.
	Shards int `yaml:"shards"`

	// NominatedLimit and AddedLimit are the global zone targets (see package
	// segmented). They are scaled down per shard. 0 => segmented defaults.
	NominatedLimit int `yaml:"nominated_limit"`
	AddedLimit     int `yaml:"added_limit"`
}

// RegisterFlagsWithPrefix adds the flags required to configure a cache to the given FlagSet.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.IntVar(&cfg.Capacity, prefix+"cache.capacity", 100_000, "Maximum number of entries across all shards.")
	f.IntVar(&cfg.Shards, prefix+"cache.shards", 0, "Number of shards (0 = auto).")
	f.IntVar(&cfg.NominatedLimit, prefix+"cache.nominated-limit", 0, "Target size of the probation zone (0 = capacity/2).")
	f.IntVar(&cfg.AddedLimit, prefix+"cache.added-limit", 0, "Cumulative target size of the probation and added zones (0 = nominated + capacity/4).")
}

// Options configures the cache behavior. Sane defaults are applied in New():
//   - nil Metrics => NoopMetrics
//   - nil Logger  => log.NewNopLogger()
//   - nil Factory => Fetch stores the zero value of V on a miss
//   - nil Hash    => strings, integers and fmt.Stringer keys are supported
type Options[K comparable, V any] struct {
	Config

	// Factory builds the value for a missing key in Fetch/Update. It runs
	// under the shard lock; keep it cheap and never call the cache from it.
	Factory func(k K) V

	// Loader fetches a value on a miss in GetOrLoad. It runs outside the
	// shard lock and concurrent loads for one key are coalesced.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for every eviction under the shard lock.
	OnEvict func(k K, v V)

	// Hash picks the shard for a key. Required for key types the built-in
	// hasher does not know (e.g. structs).
	Hash func(k K) uint64

	Metrics Metrics
	Logger  log.Logger
}
