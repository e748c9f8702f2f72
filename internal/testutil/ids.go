package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator returns predictable identifiers: prefix-0001,
// prefix-0002, and so on. It satisfies store.IDGenerator.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. If prefix is empty,
// "test-rev" is used.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "test-rev"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next identifier.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
