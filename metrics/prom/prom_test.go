package prom

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/zonecache/cache"
)

func TestAdapter_WiredIntoCache(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	m := New(reg, "zonecache", "test", prometheus.Labels{"app": "unit"})

	c, err := cache.New(cache.Options[int, int]{
		Config:  cache.Config{Capacity: 4, Shards: 1},
		Metrics: m,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	for _, k := range []int{0, 1, 2, 3, 4, 2, 4, 3, 5} {
		c.Fetch(k)
	}

	require.Equal(t, 3.0, testutil.ToFloat64(m.hits))
	require.Equal(t, 6.0, testutil.ToFloat64(m.misses))
	require.Equal(t, 1.0, testutil.ToFloat64(m.promotes))
	require.Equal(t, 2.0, testutil.ToFloat64(m.evicts))
	require.Equal(t, 4.0, testutil.ToFloat64(m.size))

	expected := `
# HELP zonecache_test_evictions_total Entries evicted from the probation end.
# TYPE zonecache_test_evictions_total counter
zonecache_test_evictions_total{app="unit"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "zonecache_test_evictions_total"))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg, "zonecache", "dup", nil)
	require.Panics(t, func() { New(reg, "zonecache", "dup", nil) })
}
