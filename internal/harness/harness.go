package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/docstore/internal/engine"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/store"
	"github.com/roach88/docstore/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario steps against a real table and records every statement.
type Harness struct {
	table    *engine.Table
	recorder *testutil.Recorder
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory SQLite database for isolation.
// Unique scratch tables use a deterministic suffix sequence so traces are
// reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database and the scenario's table
// 2. Seed records (untraced)
// 3. Execute each step, recording its statements
// 4. Check each step against its expectations
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with engine logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()

	st, err := store.OpenSQLite(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	spec := scenario.Table
	if err := st.EnsureTable(ctx, spec.Name, spec.IndexedFields); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	rec := testutil.NewRecorder(st)
	opts := []engine.Option{
		engine.WithIndexedFields(spec.IndexedFields...),
		engine.WithLogger(logger),
	}
	if spec.ParamsLimit > 0 {
		opts = append(opts, engine.WithParamsLimit(spec.ParamsLimit))
	}
	if spec.ChunkSize > 0 {
		opts = append(opts, engine.WithChunkSize(spec.ChunkSize))
	}
	if spec.UniqueScratchTables {
		opts = append(opts, engine.WithSuffixGenerator(testutil.NewSequenceGenerator("s")))
	}

	table, err := engine.New(spec.Name, store.Static(rec), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to bind table: %w", err)
	}

	h := &Harness{table: table, recorder: rec, logger: logger}

	if err := h.table.BulkUpsertAndDelete(ctx, toResources(scenario.Seed)); err != nil {
		return nil, fmt.Errorf("failed to seed table: %w", err)
	}
	rec.Take()

	result := NewResult()
	for i, step := range scenario.Steps {
		n := i + 1
		ids, err := h.executeStep(ctx, step)
		result.AddTrace(n, step.Op, rec.Take())

		sr := StepResult{Step: n, Op: step.Op, IDs: ids}
		if err != nil {
			sr.Error = err.Error()
		}
		result.Steps = append(result.Steps, sr)

		for _, msg := range checkStep(step, ids, err) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.Op, msg))
		}
	}

	return result, nil
}

// executeStep runs one operation and returns the ids of the records it
// returned, if any.
func (h *Harness) executeStep(ctx context.Context, step Step) ([]any, error) {
	h.logger.Debug("executing step", "op", step.Op)

	switch step.Op {
	case OpQuery:
		rows, err := h.table.Query(ctx, step.Filter(), step.Page(), step.Sort)
		return resourceIDs(rows), err
	case OpList:
		rows, err := h.table.List(ctx, step.Page())
		return resourceIDs(rows), err
	case OpGet:
		r, err := h.table.Get(ctx, step.ID)
		if err != nil {
			return nil, err
		}
		return resourceIDs([]ir.Resource{r}), nil
	case OpSave:
		r, err := h.table.Save(ctx, ir.Resource(step.Resource))
		if err != nil {
			return nil, err
		}
		return resourceIDs([]ir.Resource{r}), nil
	case OpUpdate:
		r, err := h.table.Update(ctx, ir.Resource(step.Resource))
		if err != nil {
			return nil, err
		}
		return resourceIDs([]ir.Resource{r}), nil
	case OpRemove:
		return nil, h.table.Remove(ctx, step.ID)
	case OpRemoveByFilter:
		return nil, h.table.RemoveByFilter(ctx, step.Filter())
	case OpBulk:
		return nil, h.table.BulkUpsertAndDelete(ctx, toResources(step.Resources))
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func resourceIDs(rows []ir.Resource) []any {
	if rows == nil {
		return nil
	}
	ids := make([]any, len(rows))
	for i, r := range rows {
		ids[i], _ = r.ID()
	}
	return ids
}
