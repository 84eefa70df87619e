package testutil

import "sync"

// FixedIDGenerator returns predetermined run IDs in order.
//
// This enables deterministic report assertions and golden file comparison:
// the same run with the same FixedIDGenerator produces byte-identical
// report JSON.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal
// mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedIDGenerator("run-1", "run-2")
//	gen.NewID() // "run-1"
//	gen.NewID() // "run-2"
//	gen.NewID() // panic: all ids exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// NewID returns the next predetermined ID.
//
// Panics when all ids have been consumed. This is a fail-fast approach to
// catch test misconfiguration (test created more runs than expected).
func (g *FixedIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
