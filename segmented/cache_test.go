package segmented

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill inserts keys 0..n-1 without touching any of them.
func fill(c *Cache[int, int], n int) {
	for k := 0; k < n; k++ {
		c.Fetch(k)
	}
}

func TestNew_Limits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Options[int, int]
		want Limits
		err  error
	}{
		{name: "defaults", opt: Options[int, int]{Capacity: 100}, want: Limits{100, 50, 75}},
		{name: "explicit", opt: Options[int, int]{Capacity: 3, NominatedLimit: 1, AddedLimit: 2}, want: Limits{3, 1, 2}},
		{name: "nominated only", opt: Options[int, int]{Capacity: 10, NominatedLimit: 2}, want: Limits{10, 2, 4}},
		{name: "zero capacity", opt: Options[int, int]{}, err: ErrInvalidCapacity},
		{name: "negative capacity", opt: Options[int, int]{Capacity: -1}, err: ErrInvalidCapacity},
		{name: "defaults too small", opt: Options[int, int]{Capacity: 3}, err: ErrInvalidLimits},
		{name: "added not above nominated", opt: Options[int, int]{Capacity: 10, NominatedLimit: 4, AddedLimit: 4}, err: ErrInvalidLimits},
		{name: "added reaches capacity", opt: Options[int, int]{Capacity: 10, NominatedLimit: 4, AddedLimit: 10}, err: ErrInvalidLimits},
		{name: "negative nominated", opt: Options[int, int]{Capacity: 10, NominatedLimit: -1, AddedLimit: 5}, err: ErrInvalidLimits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(tt.opt)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Nil(t, c, "an invalid configuration must not yield a cache")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, c.Limits())
			require.Equal(t, tt.want.Capacity, c.Cap())
			require.Zero(t, c.Len())
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { MustNew(Options[string, int]{Capacity: 2}) })
}

// Without a Factory the zero value is stored and can be mutated in place.
func TestCache_ZeroValueAndMutation(t *testing.T) {
	t.Parallel()

	c := MustNew(Options[string, []string]{Capacity: 8})
	v := c.Fetch("a")
	require.Nil(t, *v)
	*v = append(*v, "x")

	require.Equal(t, []string{"x"}, *c.Fetch("a"))
	require.Equal(t, 1, c.Len())
}

// Fetching a key right after inserting it returns the same value without
// calling the factory again or evicting anything.
func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()

	calls := 0
	evictions := 0
	c := MustNew(Options[string, string]{
		Capacity: 4,
		Factory: func(k string) string {
			calls++
			return "v:" + k
		},
		OnEvict: func(string, string) { evictions++ },
	})
	for i := 0; i < 4; i++ {
		k := strconv.Itoa(i)
		first := c.Fetch(k)
		second := c.Fetch(k)
		require.Same(t, first, second)
		require.Equal(t, "v:"+k, *second)
	}
	require.Equal(t, 4, calls)
	require.Zero(t, evictions)
}

// Hits on Added or Reused entries leave the order untouched.
func TestCache_PromoteIsNoopOutsideProbation(t *testing.T) {
	t.Parallel()

	c := MustNew(Options[int, int]{Capacity: 16})
	fill(c, 16)
	before := c.Zones()
	require.NotEmpty(t, before.Added)
	require.NotEmpty(t, before.Reused)

	for _, k := range slices.Concat(before.Added, before.Reused) {
		c.Fetch(k)
		require.Equal(t, before, c.Zones(), "hit on %d must not move anything", k)
	}
	require.Zero(t, c.Stats().Promotions)
}

// A hit on a nominated entry moves it to the head as Reused; the first Added
// entry becomes Nominated and the first Reused entry becomes Added.
func TestCache_PromotionLaw(t *testing.T) {
	t.Parallel()

	c := MustNew(Options[int, int]{Capacity: 16})
	fill(c, 16)

	for _, pick := range []int{0, 3, 1} {
		before := c.Zones()
		k := before.Nominated[pick]
		c.Fetch(k)
		require.NoError(t, c.Check())

		hot := append(slices.Clone(before.Reused), k)
		want := Zones[int]{
			Nominated: append(slices.Delete(slices.Clone(before.Nominated), pick, pick+1), before.Added[0]),
			Added:     append(slices.Clone(before.Added[1:]), hot[0]),
			Reused:    hot[1:],
		}
		require.Equal(t, want, c.Zones())
		assert.Equal(t, k, c.Zones().Reused[len(c.Zones().Reused)-1], "promoted key must be the head")
	}
	require.EqualValues(t, 3, c.Stats().Promotions)
}

// A miss on a full cache evicts exactly the tail and reports it.
func TestCache_EvictionLaw(t *testing.T) {
	t.Parallel()

	var gotK, gotV []int
	c := MustNew(Options[int, int]{
		Capacity: 16,
		Factory:  func(k int) int { return -k },
		OnEvict: func(k, v int) {
			gotK = append(gotK, k)
			gotV = append(gotV, v)
		},
	})
	fill(c, 16)
	c.Fetch(2)
	c.Fetch(5)

	for k := 100; k < 140; k++ {
		before := c.Zones()
		tail := slices.Concat(before.Nominated, before.Added, before.Reused)[0]
		n := len(gotK)

		c.Fetch(k)
		require.NoError(t, c.Check())
		require.Len(t, gotK, n+1)
		require.Equal(t, tail, gotK[n])
		require.Equal(t, -tail, gotV[n])
		require.Equal(t, 16, c.Len())

		added := append(slices.Clone(before.Added), k)
		want := Zones[int]{
			Nominated: append(slices.Clone(before.Nominated[1:]), added[0]),
			Added:     added[1:],
			Reused:    before.Reused,
		}
		require.Equal(t, want, c.Zones())
	}
}

// A burst of one-off keys cannot push out entries proven hot.
func TestCache_ScanResistance(t *testing.T) {
	t.Parallel()

	c := MustNew(Options[int, int]{Capacity: 64})
	fill(c, 64)
	hot := slices.Clone(c.Zones().Nominated[:8])
	for _, k := range hot {
		c.Fetch(k)
	}

	for k := 1000; k < 10_000; k++ {
		c.Fetch(k)
	}
	reused := c.Zones().Reused
	for _, k := range hot {
		assert.Contains(t, reused, k, "hot key %d was flushed by the scan", k)
	}
}

func TestCache_Load(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	evictions := 0
	c := MustNew(Options[string, int]{
		Capacity: 4,
		OnEvict:  func(string, int) { evictions++ },
	})
	for _, k := range []string{"a", "b", "c", "d"} {
		v, err := c.Load(k, func(string) (int, error) { return len(k), nil })
		require.NoError(t, err)
		require.Equal(t, 1, *v)
	}

	// Failure: nothing inserted, nothing evicted.
	before := c.Zones()
	v, err := c.Load("e", func(string) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	require.Nil(t, v)
	require.Equal(t, before, c.Zones())
	require.Zero(t, evictions)

	// Hit: fn is not called.
	v, err = c.Load("a", func(string) (int, error) {
		t.Fatal("fn called on a hit")
		return 0, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, *v)

	// Success on a full cache evicts.
	v, err = c.Load("e", func(k string) (int, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, 42, *v)
	require.Equal(t, 1, evictions)
	require.NoError(t, c.Check())
}

func TestCache_ReentryPanics(t *testing.T) {
	t.Parallel()

	var c *Cache[int, int]
	c = MustNew(Options[int, int]{
		Capacity: 4,
		Factory:  func(k int) int { return *c.Fetch(k + 1) },
	})
	require.Panics(t, func() { c.Fetch(1) })

	// The guard is released after the panic; plain Load still works.
	v, err := c.Load(7, func(int) (int, error) { return 7, nil })
	require.NoError(t, err)
	require.Equal(t, 7, *v)
}

func TestCache_ObserverCannotReenter(t *testing.T) {
	t.Parallel()

	var c *Cache[int, int]
	c = MustNew(Options[int, int]{
		Capacity: 4,
		OnEvict:  func(k, _ int) { c.Fetch(k) },
	})
	fill(c, 4)
	require.Panics(t, func() { c.Fetch(99) })
}
