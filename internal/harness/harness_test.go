package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/engine"
)

func TestRun_PassingScenario(t *testing.T) {
	scenario := &Scenario{
		Name:  "minimal",
		Table: TableSpec{Name: "docs", IndexedFields: []string{"kind"}},
		Seed: []map[string]any{
			{"id": "a", "kind": "x"},
			{"id": "b", "kind": "y"},
		},
		Steps: []Step{
			{Op: OpQuery, Where: FilterSpec{Keys: []string{"kind"}, Values: map[string]any{"kind": "y"}}, ExpectIDs: []any{"b"}},
			{Op: OpGet, ID: "a", ExpectIDs: []any{"a"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, []any{"b"}, result.Steps[0].IDs)

	require.Len(t, result.Trace, 2, "seed statements are not traced")
	assert.Equal(t, TraceEvent{Step: 1, Op: OpQuery, Query: "SELECT * FROM docs WHERE kind=?;", Params: []any{"y"}}, result.Trace[0])
	assert.Equal(t, "SELECT * FROM docs WHERE id=?;", result.Trace[1].Query)
}

func TestRun_FailingExpectation(t *testing.T) {
	scenario := &Scenario{
		Name:  "failing",
		Table: TableSpec{Name: "docs"},
		Seed:  []map[string]any{{"id": "a"}},
		Steps: []Step{
			{Op: OpGet, ID: "a", ExpectIDs: []any{"z"}},
			{Op: OpGet, ID: "missing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "step 1 (get): expected ids [z], got [a]")
	assert.Contains(t, result.Errors[1], "step 2 (get): unexpected error")
	assert.Contains(t, result.Steps[1].Error, string(engine.ErrCodeNotFound))
}

func TestRun_InvalidTableBinding(t *testing.T) {
	_, err := Run(&Scenario{
		Name:  "bad",
		Table: TableSpec{Name: "bad name"},
		Steps: []Step{{Op: OpList}},
	})
	assert.Error(t, err)
}

func TestRun_SeedFailure(t *testing.T) {
	_, err := Run(&Scenario{
		Name:  "bad_seed",
		Table: TableSpec{Name: "docs"},
		Seed:  []map[string]any{{"kind": "no id"}},
		Steps: []Step{{Op: OpList}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed table")
}

func TestRun_EmptyRemoveByFilterRejected(t *testing.T) {
	scenario := &Scenario{
		Name:  "empty_remove",
		Table: TableSpec{Name: "docs"},
		Seed:  []map[string]any{{"id": "a"}},
		Steps: []Step{
			{Op: OpRemoveByFilter, ExpectError: "invalid_argument"},
			{Op: OpList, ExpectIDs: []any{"a"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 1, "rejected operation runs no statements")
	assert.Equal(t, 2, result.Trace[0].Step)
}

func TestRun_TestdataScenariosPass(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}
