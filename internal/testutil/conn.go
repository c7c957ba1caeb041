package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/store"
)

// Responder decides the outcome of one statement on a FakeConn.
type Responder func(stmt queryir.Statement) (*store.ResultSet, error)

// Call is one recorded interaction with a fake or recording connection.
type Call struct {
	// Kind is "run", "batch", "begin", "commit", or "rollback".
	Kind string
	Stmt queryir.Statement
}

// FakeConn is an in-memory store.Conn that records every call.
//
// It does not implement store.Batcher, so the engine falls back to
// Begin/RunOne/Commit for sequences. Use FakeBatcher for the native path.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeConn struct {
	mu      sync.Mutex
	calls   []Call
	respond Responder
}

// NewFakeConn creates a fake whose statements are answered by respond.
// A nil respond answers every statement with an empty result.
func NewFakeConn(respond Responder) *FakeConn {
	if respond == nil {
		respond = func(queryir.Statement) (*store.ResultSet, error) {
			return &store.ResultSet{}, nil
		}
	}
	return &FakeConn{respond: respond}
}

// RunOne records and answers stmt.
func (c *FakeConn) RunOne(_ context.Context, stmt queryir.Statement) (*store.ResultSet, error) {
	c.record("run", stmt)
	return c.respond(stmt)
}

// Begin records a transaction start.
func (c *FakeConn) Begin(context.Context) (store.Tx, error) {
	c.record("begin", queryir.Statement{})
	return &fakeTx{conn: c}, nil
}

// Calls returns every recorded call in order.
func (c *FakeConn) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Kinds returns the kind of every recorded call in order.
func (c *FakeConn) Kinds() []string {
	calls := c.Calls()
	kinds := make([]string, len(calls))
	for i, call := range calls {
		kinds[i] = call.Kind
	}
	return kinds
}

// Statements returns the statements recorded by run and batch calls.
func (c *FakeConn) Statements() []queryir.Statement {
	var stmts []queryir.Statement
	for _, call := range c.Calls() {
		if call.Kind == "run" || call.Kind == "batch" {
			stmts = append(stmts, call.Stmt)
		}
	}
	return stmts
}

func (c *FakeConn) record(kind string, stmt queryir.Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Kind: kind, Stmt: stmt})
}

type fakeTx struct {
	conn *FakeConn
}

func (t *fakeTx) RunOne(ctx context.Context, stmt queryir.Statement) (*store.ResultSet, error) {
	return t.conn.RunOne(ctx, stmt)
}

func (t *fakeTx) Commit() error {
	t.conn.record("commit", queryir.Statement{})
	return nil
}

func (t *fakeTx) Rollback() error {
	t.conn.record("rollback", queryir.Statement{})
	return nil
}

// FakeBatcher is a FakeConn that also implements store.Batcher. Each
// statement of a batch is recorded with kind "batch"; the batch stops at
// the first failing statement.
type FakeBatcher struct {
	*FakeConn
}

// NewFakeBatcher creates a batching fake.
func NewFakeBatcher(respond Responder) *FakeBatcher {
	return &FakeBatcher{FakeConn: NewFakeConn(respond)}
}

// RunBatch records and answers every statement in order.
func (b *FakeBatcher) RunBatch(_ context.Context, stmts []queryir.Statement) error {
	for i, stmt := range stmts {
		b.record("batch", stmt)
		if _, err := b.respond(stmt); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}

// ErrInjected is returned by FailOn responders.
var ErrInjected = errors.New("injected failure")

// FailOn answers statements whose query contains substr with ErrInjected
// and everything else with an empty result.
func FailOn(substr string) Responder {
	return func(stmt queryir.Statement) (*store.ResultSet, error) {
		if strings.Contains(stmt.Query, substr) {
			return nil, ErrInjected
		}
		return &store.ResultSet{}, nil
	}
}

// Rows answers SELECT statements with the given payloads and everything
// else with an empty result.
func Rows(payloads ...string) Responder {
	return func(stmt queryir.Statement) (*store.ResultSet, error) {
		if strings.HasPrefix(stmt.Query, "SELECT") {
			return &store.ResultSet{Payloads: payloads}, nil
		}
		return &store.ResultSet{}, nil
	}
}

// Recorder wraps a real connection and records the statements it runs.
//
// Recorder always implements store.Batcher: it forwards to the wrapped
// connection's RunBatch when available and otherwise runs the batch in a
// transaction.
type Recorder struct {
	inner store.Conn

	mu    sync.Mutex
	stmts []queryir.Statement
}

// NewRecorder wraps inner.
func NewRecorder(inner store.Conn) *Recorder {
	return &Recorder{inner: inner}
}

// RunOne records and forwards stmt.
func (r *Recorder) RunOne(ctx context.Context, stmt queryir.Statement) (*store.ResultSet, error) {
	r.add(stmt)
	return r.inner.RunOne(ctx, stmt)
}

// Begin forwards to the wrapped connection. Statements run on the
// returned transaction are recorded too.
func (r *Recorder) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := r.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &recordingTx{Tx: tx, rec: r}, nil
}

// RunBatch records and forwards stmts.
func (r *Recorder) RunBatch(ctx context.Context, stmts []queryir.Statement) error {
	for _, stmt := range stmts {
		r.add(stmt)
	}
	if b, ok := r.inner.(store.Batcher); ok {
		return b.RunBatch(ctx, stmts)
	}

	tx, err := r.inner.Begin(ctx)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := tx.RunOne(ctx, stmt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Take returns the statements recorded since the last Take and clears
// the record.
func (r *Recorder) Take() []queryir.Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	stmts := r.stmts
	r.stmts = nil
	return stmts
}

// WriteTrace writes one line per statement: the query, a space, and the
// params formatted with %v.
func WriteTrace(w io.Writer, stmts []queryir.Statement) error {
	for _, stmt := range stmts {
		if _, err := fmt.Fprintf(w, "%s %v\n", stmt.Query, stmt.Params); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) add(stmt queryir.Statement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, stmt)
}

type recordingTx struct {
	store.Tx
	rec *Recorder
}

func (t *recordingTx) RunOne(ctx context.Context, stmt queryir.Statement) (*store.ResultSet, error) {
	t.rec.add(stmt)
	return t.Tx.RunOne(ctx, stmt)
}

var (
	_ store.Conn    = (*FakeConn)(nil)
	_ store.Batcher = (*FakeBatcher)(nil)
	_ store.Batcher = (*Recorder)(nil)
)
