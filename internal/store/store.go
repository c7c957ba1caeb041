package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/querysql"
)

// Dialect names a supported SQL engine. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite3"
	DialectDuckDB Dialect = "duckdb"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is a database/sql backed Conn. It also implements Batcher by
// running sequences inside one transaction.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens a database for the given dialect.
func Open(dialect Dialect, path string) (*Store, error) {
	switch dialect {
	case DialectSQLite, "":
		return OpenSQLite(path)
	case DialectDuckDB:
		return OpenDuckDB(path)
	default:
		return nil, fmt.Errorf("unsupported driver %q", dialect)
	}
}

// OpenSQLite creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// The pool holds a single connection. Besides avoiding SQLITE_BUSY, this
// keeps scratch tables and in-memory databases on the connection that
// created them.
func OpenSQLite(path string) (*Store, error) {
	db, err := sql.Open(string(DialectSQLite), path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, dialect: DialectSQLite}, nil
}

// OpenDuckDB opens a DuckDB database. An empty path or ":memory:" opens an
// in-memory database.
func OpenDuckDB(path string) (*Store, error) {
	if path == MemoryPath {
		path = ""
	}
	db, err := sql.Open(string(DialectDuckDB), path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, dialect: DialectDuckDB}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the engine the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Provider returns a Provider yielding this store.
func (s *Store) Provider() Provider {
	return Static(s)
}

// RunOne executes a single statement outside any transaction.
func (s *Store) RunOne(ctx context.Context, stmt queryir.Statement) (*ResultSet, error) {
	return run(ctx, s.db, s.dialect, stmt)
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqlTx{tx: tx, dialect: s.dialect}, nil
}

// RunBatch runs stmts in order inside one transaction. Any failure rolls
// back every statement of the batch.
func (s *Store) RunBatch(ctx context.Context, stmts []queryir.Statement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range stmts {
		if _, err := run(ctx, tx, s.dialect, stmt); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *sqlTx) RunOne(ctx context.Context, stmt queryir.Statement) (*ResultSet, error) {
	return run(ctx, t.tx, t.dialect, stmt)
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

// run dispatches reads to QueryContext and everything else to ExecContext.
func run(ctx context.Context, q queryer, dialect Dialect, stmt queryir.Statement) (*ResultSet, error) {
	args, err := bindArgs(dialect, stmt.Params)
	if err != nil {
		return nil, err
	}

	if !isRead(stmt.Query) {
		res, err := q.ExecContext(ctx, stmt.Query, args...)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = -1
		}
		return &ResultSet{RowsAffected: affected}, nil
	}

	rows, err := q.QueryContext(ctx, stmt.Query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	payloadIdx := 0
	for i, c := range cols {
		if strings.EqualFold(c, querysql.PayloadColumn) {
			payloadIdx = i
			break
		}
	}

	result := &ResultSet{}
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result.Payloads = append(result.Payloads, payloadText(values[payloadIdx]))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// isRead reports whether a statement returns rows.
func isRead(query string) bool {
	head := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(head, "SELECT") ||
		strings.HasPrefix(head, "WITH") ||
		strings.HasPrefix(head, "PRAGMA")
}

func payloadText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// applyPragmas sets required SQLite configuration. WAL is skipped for
// in-memory databases, which only support the memory journal.
func applyPragmas(db *sql.DB, path string) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if path != MemoryPath && path != "" {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

var _ Conn = (*Store)(nil)
var _ Batcher = (*Store)(nil)
