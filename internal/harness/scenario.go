package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docstore/internal/engine"
	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

// Scenario defines a table conformance scenario: a table binding, seed
// records, and a sequence of operations with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is the table binding under test.
	Table TableSpec `yaml:"table"`

	// Seed records are bulk-upserted before the first step. Their
	// statements are not part of the trace.
	Seed []map[string]any `yaml:"seed,omitempty"`

	// Steps run in order against the same table.
	Steps []Step `yaml:"steps"`
}

// TableSpec configures the table binding.
type TableSpec struct {
	Name                string   `yaml:"name"`
	IndexedFields       []string `yaml:"indexed_fields,omitempty"`
	ParamsLimit         int      `yaml:"params_limit,omitempty"`
	ChunkSize           int      `yaml:"chunk_size,omitempty"`
	UniqueScratchTables bool     `yaml:"unique_scratch_tables,omitempty"`
}

// Step is one table operation.
type Step struct {
	// Op is the operation: query, get, list, save, update, remove,
	// remove_by_filter, or bulk.
	Op string `yaml:"op"`

	// Where is the filter of query and remove_by_filter. Keys keep their
	// YAML order.
	Where FilterSpec `yaml:"where,omitempty"`

	// Like adds substring pattern filters after Where.
	Like FilterSpec `yaml:"like,omitempty"`

	// Range adds an integer array filter after Like, for scenarios that
	// need more values than are practical to list.
	Range *RangeSpec `yaml:"range,omitempty"`

	Sort   []queryir.SortKey `yaml:"sort,omitempty"`
	Limit  int               `yaml:"limit,omitempty"`
	Offset int               `yaml:"offset,omitempty"`

	// ID is the record id of get and remove.
	ID any `yaml:"id,omitempty"`

	// Resource is the record of save and update.
	Resource map[string]any `yaml:"resource,omitempty"`

	// Resources are the records of bulk.
	Resources []map[string]any `yaml:"resources,omitempty"`

	// ExpectIDs lists the ids the step must return, in order.
	ExpectIDs []any `yaml:"expect_ids,omitempty"`

	// ExpectCount is the number of records the step must return.
	ExpectCount *int `yaml:"expect_count,omitempty"`

	// ExpectError is the error code the step must fail with:
	// not_found, invalid_argument, or engine_execution.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// RangeSpec expands to the integer array [From, To] on Key.
type RangeSpec struct {
	Key  string `yaml:"key"`
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
}

// Operation names.
const (
	OpQuery          = "query"
	OpGet            = "get"
	OpList           = "list"
	OpSave           = "save"
	OpUpdate         = "update"
	OpRemove         = "remove"
	OpRemoveByFilter = "remove_by_filter"
	OpBulk           = "bulk"
)

var validOps = []string{OpQuery, OpGet, OpList, OpSave, OpUpdate, OpRemove, OpRemoveByFilter, OpBulk}

// Expected error codes.
var errorCodes = map[string]engine.ErrorCode{
	"not_found":        engine.ErrCodeNotFound,
	"invalid_argument": engine.ErrCodeInvalidArgument,
	"engine_execution": engine.ErrCodeEngineExecution,
}

// FilterSpec is a YAML mapping decoded in document order.
type FilterSpec struct {
	Keys   []string
	Values map[string]any
}

// UnmarshalYAML keeps mapping keys in document order, which a Go map
// would lose. Compiled predicates follow that order.
func (f *FilterSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: filter must be a mapping", node.Line)
	}
	f.Values = make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("line %d: filter %q: %w", node.Content[i+1].Line, key, err)
		}
		if _, dup := f.Values[key]; !dup {
			f.Keys = append(f.Keys, key)
		}
		f.Values[key] = value
	}
	return nil
}

// IsZero reports whether the spec is empty, for omitempty.
func (f FilterSpec) IsZero() bool {
	return len(f.Keys) == 0
}

// Filter builds the step's filter: Where, then Like as patterns, then Range.
func (s Step) Filter() *queryir.Filter {
	f := queryir.NewFilter()
	for _, k := range s.Where.Keys {
		f.And(k, s.Where.Values[k])
	}
	for _, k := range s.Like.Keys {
		f.And(k, queryir.Like(fmt.Sprint(s.Like.Values[k])))
	}
	if s.Range != nil {
		values := make([]any, 0, max(0, s.Range.To-s.Range.From+1))
		for i := s.Range.From; i <= s.Range.To; i++ {
			values = append(values, i)
		}
		f.And(s.Range.Key, values)
	}
	return f
}

// Page returns the step's pagination.
func (s Step) Page() queryir.Pagination {
	return queryir.Pagination{Limit: s.Limit, Offset: s.Offset}
}

func toResources(ms []map[string]any) []ir.Resource {
	out := make([]ir.Resource, len(ms))
	for i, m := range ms {
		out[i] = ir.Resource(m)
	}
	return out
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expect_id:" vs "expect_ids:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Table.Name == "" {
		return fmt.Errorf("table.name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}

	for i, step := range s.Steps {
		if !slices.Contains(validOps, step.Op) {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.ExpectError != "" {
			if _, ok := errorCodes[step.ExpectError]; !ok {
				return fmt.Errorf("steps[%d]: unknown expect_error %q", i, step.ExpectError)
			}
		}
		switch step.Op {
		case OpSave, OpUpdate:
			if step.Resource == nil {
				return fmt.Errorf("steps[%d]: %s requires resource", i, step.Op)
			}
		case OpBulk:
			if step.Resources == nil {
				return fmt.Errorf("steps[%d]: bulk requires resources", i)
			}
		}
	}

	return nil
}
