package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predetermined ids in order, for golden output
// that would otherwise embed random UUIDs.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedIDGenerator("e-1", "e-2")
//	gen.Generate() // "e-1"
//	gen.Generate() // "e-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// NumberedIDGenerator returns n ids of the form prefix-1 .. prefix-n.
func NumberedIDGenerator(prefix string, n int) *FixedIDGenerator {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return NewFixedIDGenerator(ids...)
}

// Generate returns the next id.
//
// Panics once every id has been used, so a test that records more entries
// than it planned for fails loudly.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
