package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh SQLite file with a "test" table indexed on
// the test column.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.EnsureTable(context.Background(), "test", []string{"test"}); err != nil {
		t.Fatalf("EnsureTable() failed: %v", err)
	}
	return s
}
