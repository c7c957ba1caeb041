package querysql

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// PayloadColumn holds the JSON text of each record.
const PayloadColumn = "payload"

// SelectSpec describes one SELECT against a document table.
type SelectSpec struct {
	Table  string
	Filter queryir.Partitioned
	Sort   []queryir.SortKey
	Page   queryir.Pagination

	// ScratchSuffix selects per-call scratch table names for Ext filters.
	// Empty means the shared tmp_<table>_<column> names.
	ScratchSuffix string
}

// IndexedColumns returns the extra columns of a table: indexed with
// duplicates removed and the reserved id and payload columns dropped.
func IndexedColumns(indexed []string) []string {
	out := make([]string, 0, len(indexed))
	for _, col := range indexed {
		if col == ir.IDKey || col == PayloadColumn || slices.Contains(out, col) {
			continue
		}
		out = append(out, col)
	}
	return out
}

// SelectStatement renders:
//
//	SELECT * FROM <table>
//	  [WHERE <self> [AND <col> IN (SELECT value FROM <scratch>)]...]
//	  [ORDER BY <key>[ DESC],...] [LIMIT n] [OFFSET m];
//
// Params are the Self values only; Ext values reach the engine through the
// scratch tables. WHERE is omitted when there are no predicates at all.
// LIMIT and OFFSET are omitted when zero.
func SelectStatement(spec SelectSpec) queryir.Statement {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(spec.Table)

	where, params := CompileWhere(spec.Filter.Self)
	clauses := make([]string, 0, 1+spec.Filter.Ext.Len())
	if where != "" {
		clauses = append(clauses, where)
	}
	for _, column := range spec.Filter.Ext.Keys() {
		clauses = append(clauses, column+" IN (SELECT value FROM "+ScratchTable(spec.Table, column, spec.ScratchSuffix)+")")
	}
	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}

	if len(spec.Sort) > 0 {
		keys := make([]string, len(spec.Sort))
		for i, s := range spec.Sort {
			keys[i] = s.Key
			if s.Desc {
				keys[i] += " DESC"
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ","))
	}

	if spec.Page.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(spec.Page.Limit))
	}
	if spec.Page.Offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(spec.Page.Offset))
	}
	b.WriteString(";")

	return queryir.Statement{Query: b.String(), Params: params}
}

// InsertOrReplaceStatement renders an upsert of resources.
//
// One resource uses VALUES; several use SELECT ... UNION ALL so engines
// without multi-row VALUES accept it. Each row binds id, the JSON payload,
// and every indexed column read from the resource (null when absent).
func InsertOrReplaceStatement(table string, resources []ir.Resource, indexed []string) (queryir.Statement, error) {
	if len(resources) == 0 {
		return queryir.Statement{}, fmt.Errorf("insert into %s: no resources", table)
	}

	columns := append([]string{ir.IDKey, PayloadColumn}, IndexedColumns(indexed)...)

	var b strings.Builder
	b.WriteString("INSERT OR REPLACE INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(")")

	params := make([]any, 0, len(resources)*len(columns))
	for i, r := range resources {
		row, err := rowParams(r, columns[2:])
		if err != nil {
			return queryir.Statement{}, fmt.Errorf("insert into %s: %w", table, err)
		}
		params = append(params, row...)

		switch {
		case len(resources) == 1:
			b.WriteString(" VALUES (")
			b.WriteString(placeholders(len(columns)))
			b.WriteString(")")
		case i == 0:
			aliased := make([]string, len(columns))
			for j, col := range columns {
				aliased[j] = "? as " + col
			}
			b.WriteString(" SELECT ")
			b.WriteString(strings.Join(aliased, ", "))
		default:
			b.WriteString(" UNION ALL SELECT ")
			b.WriteString(placeholders(len(columns)))
		}
	}

	return queryir.Statement{Query: b.String(), Params: params}, nil
}

// UpdateStatement renders:
//
//	UPDATE <table> SET payload=?, <col>=?... WHERE id=?
func UpdateStatement(table string, r ir.Resource, indexed []string) (queryir.Statement, error) {
	columns := IndexedColumns(indexed)

	payload, err := ir.EncodePayload(r)
	if err != nil {
		return queryir.Statement{}, fmt.Errorf("update %s: %w", table, err)
	}

	sets := make([]string, 0, 1+len(columns))
	sets = append(sets, PayloadColumn+"=?")
	params := make([]any, 0, 2+len(columns))
	params = append(params, payload)
	for _, col := range columns {
		sets = append(sets, col+"=?")
		params = append(params, r.Field(col))
	}

	id, _ := r.ID()
	params = append(params, id)

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE " + ir.IDKey + "=?"
	return queryir.Statement{Query: query, Params: params}, nil
}

// DeleteStatement renders DELETE FROM <table> [WHERE <predicates>].
// An empty filter deletes every row; callers that must not allow that
// check before calling.
func DeleteStatement(table string, f *queryir.Filter) queryir.Statement {
	where, params := CompileWhere(f)
	query := "DELETE FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	return queryir.Statement{Query: query, Params: params}
}

// BulkUpsertAndDelete renders the statements for a mixed batch of upserts
// and deletions. Resources whose _deleted field is truthy are removed with
// a single DELETE issued first; all others are upserted with a single
// INSERT OR REPLACE. Either statement is omitted when it has no rows.
func BulkUpsertAndDelete(table string, resources []ir.Resource, indexed []string) ([]queryir.Statement, error) {
	var deletedIDs []any
	var upserts []ir.Resource
	for _, r := range resources {
		if r.Deleted() {
			id, _ := r.ID()
			deletedIDs = append(deletedIDs, id)
			continue
		}
		upserts = append(upserts, r)
	}

	var stmts []queryir.Statement
	switch len(deletedIDs) {
	case 0:
	case 1:
		stmts = append(stmts, DeleteStatement(table, queryir.Where(ir.IDKey, deletedIDs[0])))
	default:
		stmts = append(stmts, DeleteStatement(table, queryir.Where(ir.IDKey, deletedIDs)))
	}

	if len(upserts) > 0 {
		insert, err := InsertOrReplaceStatement(table, upserts, indexed)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, insert)
	}
	return stmts, nil
}

// rowParams returns id, payload, and each indexed column value for r.
func rowParams(r ir.Resource, columns []string) ([]any, error) {
	payload, err := ir.EncodePayload(r)
	if err != nil {
		return nil, err
	}
	id, _ := r.ID()

	row := make([]any, 0, 2+len(columns))
	row = append(row, id, payload)
	for _, col := range columns {
		row = append(row, r.Field(col))
	}
	return row, nil
}
