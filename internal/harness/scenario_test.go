package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/queryir"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
table:
  name: users
  indexed_fields: [city, age]
  params_limit: 3
seed:
  - { id: u1, city: NYC }
steps:
  - op: query
    where: { city: NYC, age: [1, 2] }
    sort: [{ key: age, desc: true }]
    limit: 5
    expect_ids: [u1]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, []string{"city", "age"}, scenario.Table.IndexedFields)
	assert.Equal(t, 3, scenario.Table.ParamsLimit)
	require.Len(t, scenario.Seed, 1)
	require.Len(t, scenario.Steps, 1)

	step := scenario.Steps[0]
	assert.Equal(t, OpQuery, step.Op)
	assert.Equal(t, []queryir.SortKey{{Key: "age", Desc: true}}, step.Sort)
	assert.Equal(t, queryir.Pagination{Limit: 5}, step.Page())
	assert.Equal(t, []any{"u1"}, step.ExpectIDs)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing name",
			content: "table: {name: t}\nsteps: [{op: list}]\n",
			errMsg:  "name is required",
		},
		{
			name:    "missing table",
			content: "name: x\nsteps: [{op: list}]\n",
			errMsg:  "table.name is required",
		},
		{
			name:    "no steps",
			content: "name: x\ntable: {name: t}\n",
			errMsg:  "at least one step",
		},
		{
			name:    "unknown op",
			content: "name: x\ntable: {name: t}\nsteps: [{op: upsert}]\n",
			errMsg:  `unknown op "upsert"`,
		},
		{
			name:    "unknown error code",
			content: "name: x\ntable: {name: t}\nsteps: [{op: get, id: a, expect_error: missing}]\n",
			errMsg:  `unknown expect_error "missing"`,
		},
		{
			name:    "save without resource",
			content: "name: x\ntable: {name: t}\nsteps: [{op: save}]\n",
			errMsg:  "save requires resource",
		},
		{
			name:    "bulk without resources",
			content: "name: x\ntable: {name: t}\nsteps: [{op: bulk}]\n",
			errMsg:  "bulk requires resources",
		},
		{
			name:    "unknown field",
			content: "name: x\ntable: {name: t}\nsteps: [{op: list, expect_id: [a]}]\n",
			errMsg:  "expect_id",
		},
		{
			name:    "filter not a mapping",
			content: "name: x\ntable: {name: t}\nsteps: [{op: query, where: [a]}]\n",
			errMsg:  "filter must be a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStepFilter_KeepsDocumentOrder(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: order
table: {name: t}
steps:
  - op: query
    where: { zeta: 1, alpha: 2, mid: [3, 4] }
    like: { name: bo }
    range: { key: n, from: 7, to: 9 }
`))
	require.NoError(t, err)

	f := scenario.Steps[0].Filter()
	assert.Equal(t, []string{"zeta", "alpha", "mid", "name", "n"}, f.Keys())

	v, _ := f.Get("name")
	assert.Equal(t, queryir.Like("bo"), v)

	v, _ = f.Get("n")
	assert.Equal(t, []any{7, 8, 9}, v)
}

func TestStepFilter_Empty(t *testing.T) {
	assert.True(t, Step{Op: OpQuery}.Filter().Empty())
}

func TestStepFilter_EmptyRange(t *testing.T) {
	f := Step{Range: &RangeSpec{Key: "n", From: 5, To: 4}}.Filter()
	v, ok := f.Get("n")
	require.True(t, ok)
	assert.Empty(t, v)
}

func TestLoadScenario_TestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			assert.NoError(t, err)
		})
	}
}
