package engine

import (
	"context"
	"fmt"

	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/store"
)

// runOne executes a single statement. Engine errors are annotated with the
// operation and table, never retried.
func (t *Table) runOne(ctx context.Context, op string, conn store.Conn, stmt queryir.Statement) (*store.ResultSet, error) {
	t.logStatement(ctx, op, stmt)

	rs, err := conn.RunOne(ctx, stmt)
	if err != nil {
		t.logError(ctx, op, err)
		return nil, executionError(op, t.Name(), "", err)
	}
	if rs == nil {
		rs = &store.ResultSet{}
	}
	return rs, nil
}

// runBatch executes stmts atomically.
//
// Connections implementing store.Batcher run the sequence natively.
// Otherwise the statements run in a transaction which commits only when
// every statement succeeded.
func (t *Table) runBatch(ctx context.Context, op string, conn store.Conn, stmts []queryir.Statement) error {
	if err := t.execBatch(ctx, op, conn, stmts); err != nil {
		t.logError(ctx, op, err)
		return executionError(op, t.Name(), "batch", err)
	}
	return nil
}

// execBatch runs stmts and returns the raw engine error, unlogged.
func (t *Table) execBatch(ctx context.Context, op string, conn store.Conn, stmts []queryir.Statement) error {
	if len(stmts) == 0 {
		return nil
	}
	for _, stmt := range stmts {
		t.logStatement(ctx, op, stmt)
	}

	if b, ok := conn.(store.Batcher); ok {
		return b.RunBatch(ctx, stmts)
	}
	return runInTx(ctx, conn, stmts)
}

func runInTx(ctx context.Context, conn store.Conn, stmts []queryir.Statement) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for i, stmt := range stmts {
		if _, err := tx.RunOne(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// cleanup drops per-query scratch tables. Failures are logged and
// otherwise ignored; the tables hold no data the next query relies on.
func (t *Table) cleanup(ctx context.Context, conn store.Conn, stmts []queryir.Statement) {
	ctx = context.WithoutCancel(ctx)
	if err := t.execBatch(ctx, "query_cleanup", conn, stmts); err != nil {
		t.logger.WarnContext(ctx, "scratch table cleanup failed",
			"table", t.Name(),
			"error", err)
	}
}

func (t *Table) logStatement(ctx context.Context, op string, stmt queryir.Statement) {
	t.logger.DebugContext(ctx, "run statement",
		"op", op,
		"table", t.Name(),
		"query", stmt.Query,
		"params", len(stmt.Params))
}
