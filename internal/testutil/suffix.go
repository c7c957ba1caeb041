package testutil

import (
	"strconv"
	"sync"
)

// SequenceGenerator produces deterministic scratch table suffixes:
// prefix1, prefix2, ...
//
// This enables golden trace comparison for tables using unique scratch
// tables, whose real suffixes are time-based UUIDs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceGenerator creates a generator. If prefix is empty, "s" is used.
//
// The first call to Generate() returns prefix + "1".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "s"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next suffix.
//
// Implements engine.SuffixGenerator interface.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return g.prefix + strconv.FormatInt(g.seq, 10)
}

// Reset restarts the sequence. After Reset(), the next call to Generate()
// returns prefix + "1".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
