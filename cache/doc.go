// Package cache provides a concurrency-safe, sharded front for the
// scan-resistant segmented cache in package segmented.
//
// Design
//
//   - Concurrency: keys are hashed onto a power-of-two number of shards, each
//     a segmented.Cache behind its own mutex. Every access, hits included,
//     takes the shard lock because a hit on a probation entry reorders zones.
//
//   - Eviction: each shard runs the three-zone layout (Nominated, Added,
//     Reused) independently. Capacity and zone limits are split evenly
//     across shards, so very small caches get fewer shards automatically.
//
//   - Access: Fetch/Update are fetch-or-create; the value comes from
//     Options.Factory (or the zero value). There is no Remove: entries leave
//     only through eviction.
//
//   - GetOrLoad: loads through Options.Loader outside the shard lock and
//     coalesces concurrent loads of a key. A failed load stores nothing.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Promote/Evict/Coalesced/Size
//     signals. NoopMetrics is the default; metrics/prom exports them to
//     Prometheus.
//
//   - Logging: Options.Logger (go-kit) gets construction at info and failed
//     loads at debug.
//
// Basic usage
//
//	c, err := cache.New(cache.Options[string, []byte]{
//	    Config:  cache.Config{Capacity: 10_000},
//	    Factory: func(k string) []byte { return nil },
//	})
//	if err != nil {
//	    return err
//	}
//	c.Update("a", func(v *[]byte) { *v = append(*v, '1') })
//	v := c.Fetch("a")
//
// With GetOrLoad
//
//	c, _ := cache.New(cache.Options[string, string]{
//	    Config: cache.Config{Capacity: 1024},
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return db.Lookup(ctx, k)
//	    },
//	})
//	v, err := c.GetOrLoad(ctx, "key")
//
// From flags or YAML
//
//	var cfg cache.Config
//	cfg.RegisterFlagsWithPrefix("sessions.", flag.CommandLine)
//	flag.Parse()
//	c, err := cache.New(cache.Options[string, Session]{Config: cfg})
package cache
