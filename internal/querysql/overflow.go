package querysql

import (
	"strings"

	"github.com/roach88/docstore/internal/queryir"
)

// DefaultChunkSize is the number of values inserted per scratch-table
// statement.
const DefaultChunkSize = 300

// MaxChunkSize keeps each chunk insert under SQLite's compound SELECT limit
// (SQLITE_MAX_COMPOUND_SELECT, 500 terms).
const MaxChunkSize = 500

// MaxBulkUpserts is the most rows one multi-row INSERT OR REPLACE can carry.
// Each row after the first is a UNION ALL term, so the same compound SELECT
// limit applies. A bulk write is a single statement and is never split.
const MaxBulkUpserts = MaxChunkSize

// ScratchTable returns the scratch table name for an overflowing column.
// An empty suffix yields the shared tmp_<table>_<column> name.
func ScratchTable(table, column, suffix string) string {
	name := "tmp_" + table + "_" + column
	if suffix != "" {
		name += "_" + suffix
	}
	return name
}

// Chunk splits values into consecutive slices of at most size elements.
//
// Concatenating the chunks reproduces values exactly. There are
// ceil(len(values)/size) chunks and never a trailing empty one. A
// non-positive size yields a single chunk.
func Chunk(values []any, size int) [][]any {
	if len(values) == 0 {
		return nil
	}
	if size <= 0 || size >= len(values) {
		return [][]any{values}
	}

	chunks := make([][]any, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		chunks = append(chunks, values[start:end])
	}
	return chunks
}

// BuildOverflowSetup renders the statements that stage every Ext filter
// into its scratch table. For each column, in filter order, it emits:
//  1. DROP TABLE IF EXISTS <scratch>
//  2. CREATE TABLE IF NOT EXISTS <scratch> (value TEXT)
//  3. one INSERT ... SELECT ? as value UNION ALL SELECT ? ... per chunk
//
// The drop comes first so leftovers from a failed run never leak into the
// next one. The sequence must run as one atomic batch before the main
// statement that reads the scratch tables.
func BuildOverflowSetup(table string, ext *queryir.Filter, chunkSize int, suffix string) []queryir.Statement {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var stmts []queryir.Statement
	for _, column := range ext.Keys() {
		value, _ := ext.Get(column)
		values, _ := value.([]any)
		scratch := ScratchTable(table, column, suffix)

		stmts = append(stmts,
			queryir.Statement{Query: "DROP TABLE IF EXISTS " + scratch},
			queryir.Statement{Query: "CREATE TABLE IF NOT EXISTS " + scratch + " (value TEXT)"},
		)
		for _, chunk := range Chunk(values, chunkSize) {
			stmts = append(stmts, chunkInsert(scratch, chunk))
		}
	}
	return stmts
}

// DropScratchTables renders DROP statements for the scratch tables that
// BuildOverflowSetup creates for ext.
func DropScratchTables(table string, ext *queryir.Filter, suffix string) []queryir.Statement {
	var stmts []queryir.Statement
	for _, column := range ext.Keys() {
		stmts = append(stmts, queryir.Statement{
			Query: "DROP TABLE IF EXISTS " + ScratchTable(table, column, suffix),
		})
	}
	return stmts
}

// chunkInsert renders one multi-row insert using SELECT ... UNION ALL,
// which works on engines without multi-row VALUES support.
func chunkInsert(scratch string, chunk []any) queryir.Statement {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(scratch)
	for i := range chunk {
		if i == 0 {
			b.WriteString(" SELECT ? as value")
		} else {
			b.WriteString(" UNION ALL SELECT ?")
		}
	}

	params := make([]any, len(chunk))
	copy(params, chunk)
	return queryir.Statement{Query: b.String(), Params: params}
}
