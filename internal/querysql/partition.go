package querysql

import (
	"slices"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// DefaultParamsLimit is the largest array filter compiled inline into the
// main statement. Longer arrays are staged through a scratch table.
const DefaultParamsLimit = 100

// EngineParamCeiling is SQLite's historical SQLITE_MAX_VARIABLE_NUMBER.
//
// Partitioning is per column, so a statement with several array filters
// just under the limit can still exceed this ceiling. The compiler does not
// rewrite such statements; the engine only logs a warning.
const EngineParamCeiling = 999

// IsIndexed reports whether key is served by a real column. id always is.
func IsIndexed(indexed []string, key string) bool {
	return key == ir.IDKey || slices.Contains(indexed, key)
}

// Partition splits f into keys backed by a column and keys that can only be
// checked in memory against the decoded payload.
//
// Every key of f ends up in exactly one of the two results, in its original
// relative order.
func Partition(indexed []string, f *queryir.Filter) (idx, nonIndexed *queryir.Filter) {
	idx, nonIndexed = queryir.NewFilter(), queryir.NewFilter()
	for _, key := range f.Keys() {
		value, _ := f.Get(key)
		if IsIndexed(indexed, key) {
			idx.And(key, value)
		} else {
			nonIndexed.And(key, value)
		}
	}
	return idx, nonIndexed
}

// PartitionBySize separates array filters whose length exceeds paramsLimit
// (Ext) from everything else (Self). Scalars and patterns always stay in
// Self. A non-positive paramsLimit means DefaultParamsLimit.
func PartitionBySize(indexedFilter *queryir.Filter, paramsLimit int) queryir.Partitioned {
	if paramsLimit <= 0 {
		paramsLimit = DefaultParamsLimit
	}

	parts := queryir.Partitioned{Self: queryir.NewFilter(), Ext: queryir.NewFilter()}
	for _, key := range indexedFilter.Keys() {
		value, _ := indexedFilter.Get(key)
		if arr, ok := value.([]any); ok && len(arr) > paramsLimit {
			parts.Ext.And(key, arr)
			continue
		}
		parts.Self.And(key, value)
	}
	return parts
}
