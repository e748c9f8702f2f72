package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator("rev")
	assert.Equal(t, "rev-0001", gen.Generate())
	assert.Equal(t, "rev-0002", gen.Generate())
}

func TestSequentialIDGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "test-rev-0001", NewSequentialIDGenerator("").Generate())
}

func TestSequentialIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequentialIDGenerator("x")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
