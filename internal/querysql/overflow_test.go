package querysql

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/queryir"
)

func TestChunk(t *testing.T) {
	chunks := Chunk(intRange(1, 7), 3)
	assert.Equal(t, [][]any{{1, 2, 3}, {4, 5, 6}, {7}}, chunks)

	assert.Equal(t, [][]any{{1, 2}}, Chunk(intRange(1, 2), 0), "non-positive size is a single chunk")
	assert.Equal(t, [][]any{{1, 2}}, Chunk(intRange(1, 2), 5))
	assert.Nil(t, Chunk(nil, 3))
}

func TestChunk_Coverage(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		n := rng.IntN(1200)
		size := 1 + rng.IntN(MaxChunkSize)
		values := intRange(1, n)

		chunks := Chunk(values, size)

		assert.Len(t, chunks, (n+size-1)/size)
		var joined []any
		for _, c := range chunks {
			assert.NotEmpty(t, c)
			assert.LessOrEqual(t, len(c), size)
			joined = append(joined, c...)
		}
		if n == 0 {
			assert.Empty(t, joined)
			continue
		}
		assert.Equal(t, values, joined)
	}
}

func TestScratchTable(t *testing.T) {
	assert.Equal(t, "tmp_test_test", ScratchTable("test", "test", ""))
	assert.Equal(t, "tmp_users_city_0190abcd", ScratchTable("users", "city", "0190abcd"))
}

func TestBuildOverflowSetup_MultipleColumns(t *testing.T) {
	ext := queryir.Where("a", intRange(1, 5)).And("b", intRange(1, 2))

	stmts := BuildOverflowSetup("t", ext, 2, "")

	queries := make([]string, len(stmts))
	for i, s := range stmts {
		queries[i] = s.Query
	}
	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS tmp_t_a",
		"CREATE TABLE IF NOT EXISTS tmp_t_a (value TEXT)",
		"INSERT INTO tmp_t_a SELECT ? as value UNION ALL SELECT ?",
		"INSERT INTO tmp_t_a SELECT ? as value UNION ALL SELECT ?",
		"INSERT INTO tmp_t_a SELECT ? as value",
		"DROP TABLE IF EXISTS tmp_t_b",
		"CREATE TABLE IF NOT EXISTS tmp_t_b (value TEXT)",
		"INSERT INTO tmp_t_b SELECT ? as value UNION ALL SELECT ?",
	}, queries)
	assert.Equal(t, []any{5}, stmts[4].Params)
	assert.Nil(t, stmts[0].Params)
}

func TestBuildOverflowSetup_Empty(t *testing.T) {
	assert.Empty(t, BuildOverflowSetup("t", queryir.NewFilter(), 300, ""))
	assert.Empty(t, BuildOverflowSetup("t", nil, 300, ""))
}

func TestDropScratchTables(t *testing.T) {
	stmts := DropScratchTables("t", queryir.Where("a", intRange(1, 3)), "x1")
	require.Len(t, stmts, 1)
	assert.Equal(t, "DROP TABLE IF EXISTS tmp_t_a_x1", stmts[0].Query)
}
