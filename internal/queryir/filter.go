package queryir

import (
	"regexp"
	"slices"

	"github.com/roach88/docstore/internal/ir"
)

// Filter is an insertion-ordered mapping from column or payload key to a
// filter value.
//
// Filter values are one of:
//   - a scalar (string, number, bool, nil): equality
//   - an array ([]any or any typed slice): membership, rendered as IN
//   - a Pattern or *regexp.Regexp: substring match, rendered as LIKE
//   - an object: deep equality, only meaningful for non-indexed keys
//
// Iteration order is insertion order. Compiled predicates and their bound
// values both follow it, so placeholders line up positionally.
//
// A nil *Filter behaves as an empty filter.
type Filter struct {
	keys   []string
	values map[string]any
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{values: make(map[string]any)}
}

// Where starts a filter with a single key.
func Where(key string, value any) *Filter {
	return NewFilter().And(key, value)
}

// FilterFromMap builds a filter from a Go map. Go maps have no order, so
// keys are sorted to keep compiled SQL deterministic.
func FilterFromMap(m map[string]any) *Filter {
	f := NewFilter()
	for _, k := range ir.SortedKeys(m) {
		f.And(k, m[k])
	}
	return f
}

// And sets key to value. Re-setting an existing key keeps its original
// position.
func (f *Filter) And(key string, value any) *Filter {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// Get returns the value stored for key.
func (f *Filter) Get(key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the filter keys in insertion order.
func (f *Filter) Keys() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.keys)
}

// Len returns the number of keys.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Empty reports whether the filter has no keys.
func (f *Filter) Empty() bool {
	return f.Len() == 0
}

// Normalized returns a copy with ir.Normalize applied to every value.
// Call it once, before partitioning.
func (f *Filter) Normalized() *Filter {
	out := NewFilter()
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		out.And(k, ir.Normalize(v))
	}
	return out
}

// ToMap returns the filter contents as an unordered map.
func (f *Filter) ToMap() map[string]any {
	m := make(map[string]any, f.Len())
	for _, k := range f.Keys() {
		m[k], _ = f.Get(k)
	}
	return m
}

// Pattern is a substring filter rendered as LIKE '%pattern%'.
type Pattern string

// Like returns a Pattern filter value.
func Like(s string) Pattern {
	return Pattern(s)
}

// IsPattern reports whether v is pattern-like.
func IsPattern(v any) bool {
	switch v.(type) {
	case Pattern, *regexp.Regexp:
		return true
	}
	return false
}

// PatternSource returns the raw pattern text of a pattern-like value.
func PatternSource(v any) (string, bool) {
	switch p := v.(type) {
	case Pattern:
		return string(p), true
	case *regexp.Regexp:
		return p.String(), true
	}
	return "", false
}
