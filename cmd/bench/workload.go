package main

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/IvanBrykalov/zonecache/cache"
)

// target is a cache under test. access reads k and inserts it on a miss.
type target interface {
	name() string
	access(k string)
	hits() uint64
}

type zoneTarget struct{ c cache.Cache[string, string] }

func (zoneTarget) name() string      { return "zone" }
func (t zoneTarget) access(k string) { t.c.Fetch(k) }
func (t zoneTarget) hits() uint64    { return t.c.Stats().Hits }

type lruTarget struct {
	c *lru.Cache[string, string]
	n *atomic.Uint64
}

func newLRUTarget(size int) (lruTarget, error) {
	c, err := lru.New[string, string](size)
	return lruTarget{c: c, n: new(atomic.Uint64)}, err
}

func (lruTarget) name() string   { return "lru" }
func (t lruTarget) hits() uint64 { return t.n.Load() }

func (t lruTarget) access(k string) {
	if _, ok := t.c.Get(k); ok {
		t.n.Add(1)
		return
	}
	t.c.Add(k, "v:"+k)
}

type result struct {
	name      string
	ops, hits uint64
}

func (r result) hitRate() float64 {
	if r.ops == 0 {
		return 0
	}
	return float64(r.hits) / float64(r.ops) * 100
}

// run replays one key stream per worker against every target until ctx is
// done or each worker has issued cfg.Ops keys. Each key is offered to all
// targets so they see the same sequence.
func run(ctx context.Context, cfg Config, targets []target) []result {
	var ops atomic.Uint64

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(id int) {
			defer wg.Done()

			// rand.Rand is not goroutine-safe; one per worker.
			r := rand.New(rand.NewSource(cfg.Seed + int64(id)*9973))
			next := newStream(r, cfg, id)
			for n := 0; cfg.Ops <= 0 || n < cfg.Ops; n++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				k := next()
				for _, t := range targets {
					t.access(k)
				}
				ops.Add(1)
			}
		}(w)
	}
	wg.Wait()

	out := make([]result, len(targets))
	for i, t := range targets {
		out[i] = result{name: t.name(), ops: ops.Load(), hits: t.hits()}
	}
	return out
}

// newStream returns a key generator: Zipf keys interrupted every ScanEvery
// operations by ScanLength keys that are never seen again.
func newStream(r *rand.Rand, cfg Config, worker int) func() string {
	zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, uint64(cfg.Keys-1))
	prefix := "scan:" + strconv.Itoa(worker) + ":"
	var n, scanLeft, scanned int
	return func() string {
		if scanLeft > 0 {
			scanLeft--
			scanned++
			return prefix + strconv.Itoa(scanned)
		}
		n++
		if cfg.ScanEvery > 0 && n%cfg.ScanEvery == 0 {
			scanLeft = cfg.ScanLength
		}
		return "k:" + strconv.FormatUint(zipf.Uint64(), 10)
	}
}
