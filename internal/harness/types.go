package harness

import "github.com/roach88/docstore/internal/queryir"

// TraceEvent is one statement a step sent to the engine.
type TraceEvent struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Query  string `json:"query"`
	Params []any  `json:"params,omitempty"`
}

// StepResult is the observed outcome of one step.
type StepResult struct {
	Step  int    `json:"step"`
	Op    string `json:"op"`
	IDs   []any  `json:"ids,omitempty"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectations.
	Pass bool `json:"pass"`

	// Trace contains every statement of every step, in order.
	Trace []TraceEvent `json:"trace"`

	// Steps contains the outcome of each step.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends the statements of one step.
func (r *Result) AddTrace(step int, op string, stmts []queryir.Statement) {
	for _, stmt := range stmts {
		r.Trace = append(r.Trace, TraceEvent{
			Step:   step,
			Op:     op,
			Query:  stmt.Query,
			Params: stmt.Params,
		})
	}
}
