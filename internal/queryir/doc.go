// Package queryir defines the query vocabulary shared by the SQL compiler
// (internal/querysql) and the execution engine (internal/engine).
//
// The IR is deliberately small:
//   - Filter: an insertion-ordered key → value map
//   - Pattern: a LIKE-style substring filter value
//   - Partitioned: indexed filters split into Self and Ext groups
//   - SortKey and Pagination
//   - Statement: SQL text plus positionally bound parameters
//
// Filter values are interpreted by their shape, never by an explicit
// operator: arrays mean IN, patterns mean LIKE, everything else means
// equality.
//
// Identifiers (table names, indexed columns, sort keys) are interpolated
// into SQL text, so they must pass ValidIdentifier. Values are always bound.
package queryir
