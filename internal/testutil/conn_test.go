package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/store"
)

func TestFakeConn_RecordsCalls(t *testing.T) {
	ctx := context.Background()
	conn := NewFakeConn(Rows(`{"id":"1"}`))

	rs, err := conn.RunOne(ctx, queryir.Statement{Query: "SELECT * FROM t;"})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"id":"1"}`}, rs.Payloads)

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.RunOne(ctx, queryir.Statement{Query: "DELETE FROM t"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, []string{"run", "begin", "run", "commit"}, conn.Kinds())
	assert.Len(t, conn.Statements(), 2)
}

func TestFakeBatcher_StopsAtFailure(t *testing.T) {
	b := NewFakeBatcher(FailOn("CREATE"))

	err := b.RunBatch(context.Background(), []queryir.Statement{
		{Query: "DROP TABLE IF EXISTS x"},
		{Query: "CREATE TABLE x (value TEXT)"},
		{Query: "INSERT INTO x SELECT ? as value", Params: []any{1}},
	})
	require.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, []string{"batch", "batch"}, b.Kinds())
}

func TestRecorder_WrapsStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(store.MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EnsureTable(ctx, "t", nil))

	rec := NewRecorder(s)
	require.NoError(t, rec.RunBatch(ctx, []queryir.Statement{
		{Query: "INSERT INTO t (id, payload) VALUES (?,?)", Params: []any{"1", "{}"}},
	}))
	rs, err := rec.RunOne(ctx, queryir.Statement{Query: "SELECT * FROM t;"})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, rec.Take()))
	assert.Equal(t, "INSERT INTO t (id, payload) VALUES (?,?) [1 {}]\nSELECT * FROM t; []\n", buf.String())
	assert.Empty(t, rec.Take())
}

func TestRecorder_FallsBackToTransaction(t *testing.T) {
	fake := NewFakeConn(nil)
	rec := NewRecorder(fake)

	require.NoError(t, rec.RunBatch(context.Background(), []queryir.Statement{{Query: "DELETE FROM t"}}))
	assert.Equal(t, []string{"begin", "run", "commit"}, fake.Kinds())
}
