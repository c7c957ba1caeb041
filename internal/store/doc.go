// Package store connects document tables to a SQL engine.
//
// A document table has the shape:
//
//	id TEXT PRIMARY KEY, payload TEXT NOT NULL, <indexed columns...>
//
// payload holds the canonical JSON of the whole record; indexed columns
// mirror selected payload fields so they can be filtered in SQL.
//
// # Engines
//
// Store adapts database/sql to the Conn, Tx, and Batcher interfaces the
// engine executes against. Two drivers are wired:
//
//   - sqlite3 (mattn/go-sqlite3): WAL, synchronous=NORMAL,
//     busy_timeout=5000, foreign_keys=ON, single connection
//   - duckdb (duckdb-go): VARCHAR columns, single connection
//
// Statements starting with SELECT, WITH, or PRAGMA go through QueryContext
// and return the payload column of each row; everything else goes through
// ExecContext and returns the affected row count.
//
// # Batches
//
// RunBatch executes a statement sequence inside one transaction: all of it
// commits or none of it does. Scratch-table setup and bulk upsert/delete
// rely on this.
package store
