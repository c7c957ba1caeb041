package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/docstore/internal/queryir"
	"github.com/roach88/docstore/internal/testutil"
)

// FormatTrace renders a result's trace as text: a "# step N: op" header
// per step, followed by one line per statement with its params.
//
// Steps that ran no statements still get a header, so rejected operations
// show up in the golden file as empty sections.
func FormatTrace(result *Result) ([]byte, error) {
	var buf bytes.Buffer

	byStep := make(map[int][]queryir.Statement)
	for _, ev := range result.Trace {
		byStep[ev.Step] = append(byStep[ev.Step], queryir.Statement{Query: ev.Query, Params: ev.Params})
	}

	for _, step := range result.Steps {
		fmt.Fprintf(&buf, "# step %d: %s\n", step.Step, step.Op)
		if err := testutil.WriteTrace(&buf, byStep[step.Step]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	trace, err := FormatTrace(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, trace)

	return nil
}
