package store

import (
	"context"

	"github.com/roach88/docstore/internal/queryir"
)

// ResultSet is the outcome of one statement. Reads fill Payloads in engine
// order; writes fill RowsAffected.
type ResultSet struct {
	Payloads     []string
	RowsAffected int64
}

// Len returns the number of rows read.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Payloads)
}

// Payload returns the payload text of row i.
func (r *ResultSet) Payload(i int) string {
	return r.Payloads[i]
}

// Runner executes one statement.
type Runner interface {
	RunOne(ctx context.Context, stmt queryir.Statement) (*ResultSet, error)
}

// Conn is a connection to a SQL engine holding document tables.
type Conn interface {
	Runner

	// Begin starts a transaction. Engines without a native batch primitive
	// run statement sequences through it.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open transaction.
type Tx interface {
	Runner
	Commit() error
	Rollback() error
}

// Batcher is implemented by connections that run a statement sequence
// atomically in one call. All statements commit or none do.
type Batcher interface {
	RunBatch(ctx context.Context, stmts []queryir.Statement) error
}

// Provider hands out a ready connection. The engine asks for one per
// operation and never caches it.
type Provider func(ctx context.Context) (Conn, error)

// Static returns a Provider that always yields conn.
func Static(conn Conn) Provider {
	return func(context.Context) (Conn, error) {
		return conn, nil
	}
}
