package querysql

import (
	"strings"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// Bindable converts a filter value into the form bound for SELECT and
// DELETE predicates. Pattern-like values become '%source%'; everything else
// passes through.
//
// This runs at bind time only. Partitioning sees the raw pattern, so a
// pattern is never mistaken for an array.
func Bindable(v any) any {
	if src, ok := queryir.PatternSource(v); ok {
		return "%" + src + "%"
	}
	return v
}

// DefaultOperator renders the predicate fragment for one filter key:
//
//	array   → key IN (?,?,...)
//	pattern → key LIKE ?
//	other   → key=?
func DefaultOperator(key string, value any) string {
	switch {
	case ir.IsArray(value):
		return key + " IN (" + placeholders(len(value.([]any))) + ")"
	case queryir.IsPattern(value):
		return key + " LIKE ?"
	default:
		return key + "=?"
	}
}

// CompileWhere joins the per-key fragments of f with AND.
//
// Fragments and values follow the filter's insertion order, so values line
// up with the ? placeholders left to right. An empty filter yields an empty
// clause; callers must then omit WHERE entirely.
//
// Values are expected to be normalized already (see queryir.Filter.Normalized).
func CompileWhere(f *queryir.Filter) (string, []any) {
	if f.Empty() {
		return "", nil
	}

	parts := make([]string, 0, f.Len())
	var values []any

	for _, key := range f.Keys() {
		value, _ := f.Get(key)
		parts = append(parts, DefaultOperator(key, value))

		if arr, ok := value.([]any); ok {
			for _, elem := range arr {
				values = append(values, Bindable(elem))
			}
			continue
		}
		values = append(values, Bindable(value))
	}

	return strings.Join(parts, " AND "), values
}

// placeholders returns n comma-separated ? marks.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
