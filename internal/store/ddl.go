package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/querysql"
)

// TableStatements renders the DDL of a document table for dialect.
//
// SQLite declares indexed columns without a type. With no affinity their
// values compare unchanged against filter params, and against the TEXT
// value column of scratch tables. DuckDB requires a type, so every column
// is VARCHAR there and secondary indexes are skipped: DuckDB cannot replace
// rows whose indexed columns change.
func TableStatements(dialect Dialect, table string, indexed []string) ([]queryir.Statement, error) {
	columns := querysql.IndexedColumns(indexed)
	if err := queryir.ValidateIdentifiers("table", table); err != nil {
		return nil, err
	}
	if err := queryir.ValidateIdentifiers("column", columns...); err != nil {
		return nil, err
	}

	defs := make([]string, 0, 2+len(columns))
	var stmts []queryir.Statement

	switch dialect {
	case DialectSQLite, "":
		defs = append(defs, ir.IDKey+" TEXT PRIMARY KEY", querysql.PayloadColumn+" TEXT NOT NULL")
		defs = append(defs, columns...)
		stmts = append(stmts, queryir.Statement{
			Query: "CREATE TABLE IF NOT EXISTS " + table + " (" + strings.Join(defs, ", ") + ")",
		})
		for _, col := range columns {
			stmts = append(stmts, queryir.Statement{
				Query: "CREATE INDEX IF NOT EXISTS idx_" + table + "_" + col + " ON " + table + " (" + col + ")",
			})
		}
	case DialectDuckDB:
		defs = append(defs, ir.IDKey+" VARCHAR PRIMARY KEY", querysql.PayloadColumn+" VARCHAR NOT NULL")
		for _, col := range columns {
			defs = append(defs, col+" VARCHAR")
		}
		stmts = append(stmts, queryir.Statement{
			Query: "CREATE TABLE IF NOT EXISTS " + table + " (" + strings.Join(defs, ", ") + ")",
		})
	default:
		return nil, fmt.Errorf("unsupported driver %q", dialect)
	}

	return stmts, nil
}

// EnsureTable creates a document table and its indexes if missing.
// It is idempotent.
func (s *Store) EnsureTable(ctx context.Context, table string, indexed []string) error {
	stmts, err := TableStatements(s.dialect, table, indexed)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	if err := s.RunBatch(ctx, stmts); err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}
