package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("q")

	assert.Equal(t, "q1", g.Generate())
	assert.Equal(t, "q2", g.Generate())

	g.Reset()
	assert.Equal(t, "q1", g.Generate())
}

func TestSequenceGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "s1", NewSequenceGenerator("").Generate())
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	g := NewSequenceGenerator("x")

	var wg sync.WaitGroup
	seen := sync.Map{}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.Generate(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}
