package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/docstore/internal/querysql"
)

// Option configures a Table.
type Option func(*Table) error

// WithIndexedFields declares the payload fields mirrored into columns.
// id is always indexed and need not be listed.
func WithIndexedFields(fields ...string) Option {
	return func(t *Table) error {
		t.compiler.Indexed = querysql.IndexedColumns(fields)
		return nil
	}
}

// WithParamsLimit sets the largest array filter compiled inline.
func WithParamsLimit(n int) Option {
	return func(t *Table) error {
		if n <= 0 {
			return fmt.Errorf("params limit must be positive: %d", n)
		}
		t.compiler.ParamsLimit = n
		return nil
	}
}

// WithChunkSize sets the number of values per scratch-table insert.
func WithChunkSize(n int) Option {
	return func(t *Table) error {
		if n <= 0 || n > querysql.MaxChunkSize {
			return fmt.Errorf("chunk size must be in 1..%d: %d", querysql.MaxChunkSize, n)
		}
		t.compiler.ChunkSize = n
		return nil
	}
}

// WithUniqueScratchTables gives every overflowing query its own scratch
// tables, named with a UUIDv7 suffix and dropped after use. Concurrent
// queries on one table then never share staging state.
func WithUniqueScratchTables() Option {
	return WithSuffixGenerator(UUIDv7Generator{})
}

// WithSuffixGenerator is WithUniqueScratchTables with a caller-supplied
// suffix source.
func WithSuffixGenerator(g SuffixGenerator) Option {
	return func(t *Table) error {
		t.suffixes = g
		return nil
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) error {
		if l != nil {
			t.logger = l
		}
		return nil
	}
}
