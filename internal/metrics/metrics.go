// Package metrics holds the process-wide error counters spec §5
// describes. The original text assumes "single-threaded increments,
// no locking" — true of a single-threaded reactor where one thread
// drives every session. This rendering dispatches each connection's
// callbacks on its own goroutine (see DESIGN.md's note on spec §9
// design note 3), so counters ARE contended across goroutines; a
// mutex is the minimal fix that keeps the map safe without pulling in
// a metrics library no repo in the pack imports (see DESIGN.md).
package metrics

import "sync"

// Counters is a process-wide set of labeled error counts.
type Counters struct {
	mu      sync.Mutex
	byLabel map[string]uint64
}

func New() *Counters {
	return &Counters{byLabel: make(map[string]uint64)}
}

// Incr bumps the counter for label (the error message, per spec §7
// "Metrics counters are incremented for every classified error with the
// error message as a label").
func (c *Counters) Incr(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byLabel[label]++
}

// Value returns the current count for label, for tests and diagnostics.
func (c *Counters) Value(label string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byLabel[label]
}

// Snapshot returns a copy of all counters, for diagnostics endpoints.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.byLabel))
	for k, v := range c.byLabel {
		out[k] = v
	}
	return out
}
