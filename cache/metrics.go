package cache

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Hit()
	Miss()
	// Promote is called when a hit moves a probation entry into the hot zone.
	Promote()
	Evict()
	// Coalesced is called for every GetOrLoad caller that waited for another
	// caller's in-flight load instead of running the Loader itself. The
	// caller that ran the Loader is not counted.
	Coalesced()
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()       {}
func (NoopMetrics) Miss()      {}
func (NoopMetrics) Promote()   {}
func (NoopMetrics) Evict()     {}
func (NoopMetrics) Coalesced() {}
func (NoopMetrics) Size(int)   {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
