package sdei

import "sync/atomic"

// Metrics is a snapshot of dispatch statistics.
//
// Thread Safety:
//   - All counters are updated with atomic operations on the hot path.
//   - Metrics() returns a copy, safe for concurrent reads.
type Metrics struct {
	// Dispatches is the total number of delivered events.
	Dispatches uint64

	// Failures counts dispatches resolved to OutcomeFailed.
	Failures uint64

	// Nested counts dispatches that began with the re-entrancy marker
	// already set, i.e. critical events preempting normal events.
	Nested uint64

	// UnsafeReentries counts handlers that themselves took a synchronous
	// exception (the logged, non-fatal condition).
	UnsafeReentries uint64
}

// counters is the live, atomically-updated form of Metrics. A nil
// *counters disables collection; every add method tolerates nil so the
// hot path stays branch-plus-return when metrics are off.
type counters struct {
	dispatches      atomic.Uint64
	failures        atomic.Uint64
	nested          atomic.Uint64
	unsafeReentries atomic.Uint64
}

func (c *counters) addDispatch() {
	if c != nil {
		c.dispatches.Add(1)
	}
}

func (c *counters) addFailure() {
	if c != nil {
		c.failures.Add(1)
	}
}

func (c *counters) addNested() {
	if c != nil {
		c.nested.Add(1)
	}
}

func (c *counters) addUnsafeReentry() {
	if c != nil {
		c.unsafeReentries.Add(1)
	}
}

func (c *counters) snapshot() Metrics {
	if c == nil {
		return Metrics{}
	}
	return Metrics{
		Dispatches:      c.dispatches.Load(),
		Failures:        c.failures.Load(),
		Nested:          c.nested.Load(),
		UnsafeReentries: c.unsafeReentries.Load(),
	}
}
