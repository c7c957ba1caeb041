package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenScenarios(t *testing.T) {
	for _, name := range []string{"query_indexed", "overflow", "overflow_unique", "crud", "bulk"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestFormatTrace(t *testing.T) {
	result := NewResult()
	result.Steps = []StepResult{{Step: 1, Op: OpGet}, {Step: 2, Op: OpRemoveByFilter}, {Step: 3, Op: OpList}}
	result.Trace = []TraceEvent{
		{Step: 1, Op: OpGet, Query: "SELECT * FROM t WHERE id=?;", Params: []any{"a"}},
		{Step: 3, Op: OpList, Query: "SELECT * FROM t;"},
	}

	out, err := FormatTrace(result)
	require.NoError(t, err)

	want := strings.Join([]string{
		"# step 1: get",
		"SELECT * FROM t WHERE id=?; [a]",
		"# step 2: remove_by_filter",
		"# step 3: list",
		"SELECT * FROM t; []",
		"",
	}, "\n")
	assert.Equal(t, want, string(out))
}

func TestAssertGolden_UsesScenarioName(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "crud.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "crud", result))
}
