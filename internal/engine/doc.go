// Package engine executes document-table operations against a SQL engine.
//
// A Table compiles each operation with querysql and runs the result on a
// connection obtained from a store.Provider.
//
// QUERY EXECUTION:
//
// 1. The filter is normalized (booleans to 1/0, typed slices to []any).
// 2. Keys are split into indexed (SQL) and non-indexed (in-memory) parts.
// 3. Indexed arrays longer than the params limit are staged into scratch
// tables by one atomic setup batch: DROP, CREATE, chunked INSERTs.
// 4. The main SELECT runs, joining scratch tables via IN (SELECT value ...).
// 5. Rows are decoded in engine order and the in-memory filter applied.
//
// A failed setup batch aborts the query before step 4. The engine never
// retries; every engine failure surfaces as an *Error with code
// ENGINE_EXECUTION wrapping the original error.
//
// BATCHES:
//
// Statement sequences (setup, bulk upsert and delete) run through
// store.Batcher when the connection offers it, and otherwise inside a
// transaction begun on the connection. Either way the sequence commits as
// a whole or not at all.
//
// SCRATCH TABLES:
//
// By default scratch tables are named tmp_<table>_<column> and shared by
// every query on that table, so concurrent overflowing queries can collide.
// WithUniqueScratchTables appends a UUIDv7 suffix per query and drops the
// tables afterwards.
package engine
