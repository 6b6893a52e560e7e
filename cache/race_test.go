package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// A mixed workload of concurrent Fetch/Update/GetOrLoad on random keys.
// Should pass under `-race`; afterwards every shard must be consistent.
func TestRace_Basic(t *testing.T) {
	var evictions atomic.Int64
	c := newCache(t, Options[string, []byte]{
		Config:  Config{Capacity: 8_192, Shards: 32},
		Factory: func(k string) []byte { return []byte(k) },
		Loader: func(_ context.Context, k string) ([]byte, error) {
			return []byte("loaded:" + k), nil
		},
		OnEvict: func(string, []byte) { evictions.Add(1) },
	})

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id) * 9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% GetOrLoad
					_, _ = c.GetOrLoad(context.Background(), k)
				case 5, 6, 7, 8, 9: // ~5% Update
					c.Update(k, func(v *[]byte) { *v = append((*v)[:0], 'x') })
				default: // ~90% Fetch
					c.Fetch(k)
				}
			}
		}(w)
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 8_192)
	st := c.Stats()
	require.EqualValues(t, evictions.Load(), st.Evictions)
	require.EqualValues(t, c.Len(), st.Misses-st.Evictions)

	impl := c.(*cache[string, []byte])
	for i, s := range impl.shards {
		s.mu.Lock()
		require.NoError(t, s.seg.Check(), "shard %d", i)
		s.mu.Unlock()
	}
}

// One hundred goroutines call GetOrLoad on the same key concurrently.
// The Loader should run at most once.
func TestRace_GetOrLoad(t *testing.T) {
	var calls int64

	c := newCache(t, Options[string, string]{
		Config: Config{Capacity: 1024},
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(2 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		},
	})

	const goroutines = 100
	key := "same-key"

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := c.GetOrLoad(context.Background(), key)
			if err != nil {
				t.Errorf("GetOrLoad error: %v", err)
				return
			}
			if v != "v:"+key {
				t.Errorf("unexpected value: %q", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got > 1 {
		t.Fatalf("loader should run at most once, got %d", got)
	}
	require.EqualValues(t, 1, c.Stats().Misses, "the key must be created once")
}
