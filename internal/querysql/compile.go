package querysql

import (
	"fmt"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// SQLCompiler compiles document-table operations to parameterized SQL.
//
// CRITICAL: All values are parameterized, never interpolated. Only table
// and column names reach the SQL text, and those are validated identifiers.
type SQLCompiler struct {
	Table   string
	Indexed []string

	// ParamsLimit is the largest array compiled inline. Zero means
	// DefaultParamsLimit.
	ParamsLimit int

	// ChunkSize is the number of values per scratch-table insert. Zero
	// means DefaultChunkSize.
	ChunkSize int
}

// NewSQLCompiler creates a compiler for one table. Duplicate and reserved
// names are dropped from indexed.
func NewSQLCompiler(table string, indexed []string) *SQLCompiler {
	return &SQLCompiler{
		Table:       table,
		Indexed:     IndexedColumns(indexed),
		ParamsLimit: DefaultParamsLimit,
		ChunkSize:   DefaultChunkSize,
	}
}

// QueryPlan is the full statement sequence of one filtered read.
type QueryPlan struct {
	// Setup stages overflow values into scratch tables. It must commit
	// before Main runs; when it fails Main is never attempted.
	Setup []queryir.Statement

	Main queryir.Statement

	// Residual holds non-indexed keys, checked in memory against each
	// decoded payload after Main returns.
	Residual *queryir.Filter

	// Cleanup drops per-call scratch tables. Empty for shared names, which
	// the next Setup overwrites.
	Cleanup []queryir.Statement

	Partitioned queryir.Partitioned
}

// HasOverflow reports whether the plan stages values through scratch tables.
func (p QueryPlan) HasOverflow() bool {
	return len(p.Setup) > 0
}

// CompileQuery plans a filtered read.
//
// The filter is normalized once, then split into indexed and non-indexed
// keys, and the indexed part split by size. Sort and pagination apply in
// SQL, before the residual filter.
func (c *SQLCompiler) CompileQuery(f *queryir.Filter, sort []queryir.SortKey, page queryir.Pagination, scratchSuffix string) QueryPlan {
	idx, residual := Partition(c.Indexed, f.Normalized())
	parts := PartitionBySize(idx, c.ParamsLimit)

	plan := QueryPlan{
		Setup:       BuildOverflowSetup(c.Table, parts.Ext, c.ChunkSize, scratchSuffix),
		Residual:    residual,
		Partitioned: parts,
		Main: SelectStatement(SelectSpec{
			Table:         c.Table,
			Filter:        parts,
			Sort:          sort,
			Page:          page,
			ScratchSuffix: scratchSuffix,
		}),
	}
	if scratchSuffix != "" {
		plan.Cleanup = DropScratchTables(c.Table, parts.Ext, scratchSuffix)
	}
	return plan
}

// CompileList renders an unfiltered paginated read.
func (c *SQLCompiler) CompileList(page queryir.Pagination) queryir.Statement {
	return SelectStatement(SelectSpec{
		Table:  c.Table,
		Filter: queryir.Partitioned{Self: queryir.NewFilter(), Ext: queryir.NewFilter()},
		Page:   page,
	})
}

// CompileGet renders a point read by id.
func (c *SQLCompiler) CompileGet(id any) queryir.Statement {
	return SelectStatement(SelectSpec{
		Table:  c.Table,
		Filter: queryir.Partitioned{Self: queryir.Where(ir.IDKey, id)},
	})
}

// CompileSave renders a single-row upsert.
func (c *SQLCompiler) CompileSave(r ir.Resource) (queryir.Statement, error) {
	return InsertOrReplaceStatement(c.Table, []ir.Resource{r}, c.Indexed)
}

// CompileUpdate renders a full-row replace of an existing record.
func (c *SQLCompiler) CompileUpdate(r ir.Resource) (queryir.Statement, error) {
	return UpdateStatement(c.Table, r, c.Indexed)
}

// CompileRemove renders a delete by id.
func (c *SQLCompiler) CompileRemove(id any) queryir.Statement {
	return DeleteStatement(c.Table, queryir.Where(ir.IDKey, id))
}

// CompileRemoveByFilter renders a delete by filter. Every key must be
// backed by a column; payload-only keys cannot be evaluated in SQL.
func (c *SQLCompiler) CompileRemoveByFilter(f *queryir.Filter) (queryir.Statement, error) {
	if f.Empty() {
		return queryir.Statement{}, fmt.Errorf("delete from %s: empty filter", c.Table)
	}
	idx, nonIndexed := Partition(c.Indexed, f.Normalized())
	if !nonIndexed.Empty() {
		return queryir.Statement{}, fmt.Errorf("delete from %s: keys %v are not indexed", c.Table, nonIndexed.Keys())
	}
	return DeleteStatement(c.Table, idx), nil
}

// CompileBulk renders the statements of a mixed upsert and delete batch.
func (c *SQLCompiler) CompileBulk(resources []ir.Resource) ([]queryir.Statement, error) {
	return BulkUpsertAndDelete(c.Table, resources, c.Indexed)
}

// Validate checks the table and column names before any SQL is built from
// them.
func (c *SQLCompiler) Validate() error {
	if err := queryir.ValidateIdentifiers("table", c.Table); err != nil {
		return err
	}
	return queryir.ValidateIdentifiers("column", c.Indexed...)
}
