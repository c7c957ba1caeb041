package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/querysql"
	"github.com/roach88/docstore/internal/store"
)

// Table binds a document table to a connection provider.
//
// Every operation asks the provider for a connection, compiles its
// statements, and runs them. Operations are independent: nothing is cached
// between calls except the configuration.
//
// Thread-safety: Table is immutable after New and safe for concurrent use,
// provided the connection is. With shared scratch table names, concurrent
// overflowing queries on one table can observe each other's staged values;
// use WithUniqueScratchTables when that matters.
type Table struct {
	compiler *querysql.SQLCompiler
	provider store.Provider
	logger   *slog.Logger
	suffixes SuffixGenerator
}

// New creates a table binding. Table and column names are validated here,
// once, since they are interpolated into SQL text.
func New(name string, provider store.Provider, opts ...Option) (*Table, error) {
	t := &Table{
		compiler: querysql.NewSQLCompiler(name, nil),
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, invalidArgument("new", name, "%v", err)
		}
	}
	if provider == nil {
		return nil, invalidArgument("new", name, "connection provider is required")
	}
	if err := t.compiler.Validate(); err != nil {
		return nil, invalidArgument("new", name, "%v", err)
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.compiler.Table
}

// IndexedFields returns the indexed columns, excluding id.
func (t *Table) IndexedFields() []string {
	return append([]string(nil), t.compiler.Indexed...)
}

// List returns one page of records in engine order.
func (t *Table) List(ctx context.Context, page queryir.Pagination) ([]ir.Resource, error) {
	const op = "list"
	if err := queryir.ValidatePagination(page); err != nil {
		return nil, invalidArgument(op, t.Name(), "%v", err)
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	rs, err := t.runOne(ctx, op, conn, t.compiler.CompileList(page))
	if err != nil {
		return nil, err
	}
	return t.decodeRows(op, rs)
}

// Get returns the record with the given id. A missing record is a
// not-found error, never an empty success.
func (t *Table) Get(ctx context.Context, id any) (ir.Resource, error) {
	const op = "get"
	if _, ok := (ir.Resource{ir.IDKey: id}).ID(); !ok {
		return nil, invalidArgument(op, t.Name(), "id is required")
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	rs, err := t.runOne(ctx, op, conn, t.compiler.CompileGet(id))
	if err != nil {
		return nil, err
	}
	if rs.Len() == 0 {
		return nil, notFound(op, t.Name(), id)
	}

	rows, err := t.decodeRows(op, rs)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// Query returns the records matching filter.
//
// Indexed keys are evaluated in SQL. Array filters longer than the params
// limit are staged into scratch tables by an atomic setup batch first; if
// that batch fails the main statement is never run. Non-indexed keys are
// evaluated in memory on the decoded rows, after sort and pagination have
// applied in SQL, so a page may hold fewer rows than its limit.
func (t *Table) Query(ctx context.Context, filter *queryir.Filter, page queryir.Pagination, sort []queryir.SortKey) ([]ir.Resource, error) {
	const op = "query"
	if err := queryir.ValidatePagination(page); err != nil {
		return nil, invalidArgument(op, t.Name(), "%v", err)
	}
	if err := queryir.ValidateSort(sort); err != nil {
		return nil, invalidArgument(op, t.Name(), "%v", err)
	}

	suffix := ""
	if t.suffixes != nil {
		suffix = t.suffixes.Generate()
	}
	plan := t.compiler.CompileQuery(filter, sort, page, suffix)
	if n := len(plan.Main.Params); n > querysql.EngineParamCeiling {
		t.logger.WarnContext(ctx, "statement exceeds engine parameter ceiling",
			"op", op,
			"table", t.Name(),
			"params", n,
			"ceiling", querysql.EngineParamCeiling)
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	if plan.HasOverflow() {
		if err := t.runBatch(ctx, op, conn, plan.Setup); err != nil {
			return nil, err
		}
		if len(plan.Cleanup) > 0 {
			defer t.cleanup(ctx, conn, plan.Cleanup)
		}
	}

	rs, err := t.runOne(ctx, op, conn, plan.Main)
	if err != nil {
		return nil, err
	}
	rows, err := t.decodeRows(op, rs)
	if err != nil {
		return nil, err
	}
	return filterResidual(rows, plan.Residual), nil
}

// Save upserts r and returns it.
func (t *Table) Save(ctx context.Context, r ir.Resource) (ir.Resource, error) {
	return t.write(ctx, "save", r, t.compiler.CompileSave)
}

// Update replaces the stored row of r wholesale and returns r. Updating a
// missing id affects no rows and is not an error.
func (t *Table) Update(ctx context.Context, r ir.Resource) (ir.Resource, error) {
	return t.write(ctx, "update", r, t.compiler.CompileUpdate)
}

func (t *Table) write(ctx context.Context, op string, r ir.Resource, compile func(ir.Resource) (queryir.Statement, error)) (ir.Resource, error) {
	if _, ok := r.ID(); !ok {
		return nil, invalidArgument(op, t.Name(), "id is required")
	}
	stmt, err := compile(r)
	if err != nil {
		return nil, invalidArgument(op, t.Name(), "%v", err)
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	if _, err := t.runOne(ctx, op, conn, stmt); err != nil {
		return nil, err
	}
	return r, nil
}

// Remove deletes the record with the given id.
func (t *Table) Remove(ctx context.Context, id any) error {
	const op = "remove"
	if _, ok := (ir.Resource{ir.IDKey: id}).ID(); !ok {
		return invalidArgument(op, t.Name(), "id is required")
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return err
	}
	_, err = t.runOne(ctx, op, conn, t.compiler.CompileRemove(id))
	return err
}

// RemoveByFilter deletes every record matching filter. Only indexed keys
// are allowed, and an empty filter is rejected rather than emptying the
// table.
func (t *Table) RemoveByFilter(ctx context.Context, filter *queryir.Filter) error {
	const op = "remove_by_filter"
	stmt, err := t.compiler.CompileRemoveByFilter(filter)
	if err != nil {
		return invalidArgument(op, t.Name(), "%v", err)
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return err
	}
	_, err = t.runOne(ctx, op, conn, stmt)
	return err
}

// BulkUpsertAndDelete deletes the resources flagged _deleted and upserts
// the rest, as one atomic batch. An empty input performs no I/O.
func (t *Table) BulkUpsertAndDelete(ctx context.Context, resources []ir.Resource) error {
	const op = "bulk"
	if len(resources) == 0 {
		return nil
	}
	upserts := 0
	for i, r := range resources {
		if _, ok := r.ID(); !ok {
			return invalidArgument(op, t.Name(), "resource %d: id is required", i)
		}
		if !r.Deleted() {
			upserts++
		}
	}
	if upserts > querysql.MaxBulkUpserts {
		return invalidArgument(op, t.Name(), "%d upserts exceed the limit of %d per call", upserts, querysql.MaxBulkUpserts)
	}

	stmts, err := t.compiler.CompileBulk(resources)
	if err != nil {
		return invalidArgument(op, t.Name(), "%v", err)
	}

	conn, err := t.conn(ctx, op)
	if err != nil {
		return err
	}
	return t.runBatch(ctx, op, conn, stmts)
}

func (t *Table) conn(ctx context.Context, op string) (store.Conn, error) {
	conn, err := t.provider(ctx)
	if err != nil {
		t.logError(ctx, op, err)
		return nil, executionError(op, t.Name(), "connect", err)
	}
	return conn, nil
}

func (t *Table) decodeRows(op string, rs *store.ResultSet) ([]ir.Resource, error) {
	rows := make([]ir.Resource, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		r, err := ir.DecodePayload(rs.Payload(i))
		if err != nil {
			return nil, executionError(op, t.Name(), fmt.Sprintf("decode row %d", i), err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (t *Table) logError(ctx context.Context, op string, err error) {
	t.logger.ErrorContext(ctx, "table operation failed",
		"op", op,
		"table", t.Name(),
		"error", err)
}
