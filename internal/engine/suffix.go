package engine

import (
	"strings"

	"github.com/google/uuid"
)

// SuffixGenerator produces per-operation scratch table suffixes.
type SuffixGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable scratch table suffixes.
//
// UUIDv7 embeds a timestamp in the most significant bits, so leftover
// scratch tables sort by creation time when inspecting a database.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 as 32 hex characters. Hyphens are dropped
// so the result is a valid identifier fragment.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}
