package engine

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

func TestMatchesResidual(t *testing.T) {
	row := ir.Resource{
		"id":     "1",
		"name":   "bobby",
		"isOk":   true,
		"count":  json.Number("3"),
		"tags":   []any{"a", "b"},
		"params": map[string]any{"k": "v", "n": json.Number("1")},
		"nil":    nil,
	}

	tests := []struct {
		name   string
		filter *queryir.Filter
		want   bool
	}{
		{"scalar equal", queryir.Where("name", "bobby"), true},
		{"scalar differ", queryir.Where("name", "bob"), false},
		{"boolean normalized", queryir.Where("isOk", true), true},
		{"boolean as number", queryir.Where("isOk", 1), true},
		{"number by value", queryir.Where("count", 3.0), true},
		{"membership", queryir.Where("name", []any{"alice", "bobby"}), true},
		{"no membership", queryir.Where("name", []any{"alice"}), false},
		{"pattern", queryir.Where("name", queryir.Like("obb")), true},
		{"pattern miss", queryir.Where("name", queryir.Like("zz")), false},
		{"pattern ignores ASCII case", queryir.Where("name", queryir.Like("BoB")), true},
		{"pattern underscore is one char", queryir.Where("name", queryir.Like("b_b")), true},
		{"pattern underscore needs a char", queryir.Where("name", queryir.Like("bobby_")), false},
		{"pattern percent is any run", queryir.Where("name", queryir.Like("b%y")), true},
		{"regexp", queryir.Where("name", regexp.MustCompile("^bo+b")), true},
		{"pattern on non-string", queryir.Where("count", queryir.Like("3")), false},
		{"object ignores key order", queryir.Where("params", map[string]any{"n": 1, "k": "v"}), true},
		{"object differs", queryir.Where("params", map[string]any{"k": "v"}), false},
		{"array value in membership", queryir.Where("tags", []any{[]any{"a", "b"}}), true},
		{"array order matters", queryir.Where("tags", []any{[]any{"b", "a"}}), false},
		{"missing field", queryir.Where("absent", nil), false},
		{"explicit null", queryir.Where("nil", nil), true},
		{"all keys must match", queryir.Where("name", "bobby").And("count", 4), false},
		{"empty filter", queryir.NewFilter(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesResidual(row, tt.filter.Normalized()))
		})
	}
}

func TestLikeContains(t *testing.T) {
	tests := []struct {
		s, p string
		want bool
	}{
		{"Bobby", "bob", true},
		{"Bobby", "B_b", true},
		{"Bobby", "BBY", true},
		{"Bobby", "", true},
		{"", "", true},
		{"", "_", false},
		{"Bobby", "b%b%y", true},
		{"Bobby", "y_", false},
		{"ÉCOLE", "école", false},
		{"a_b", "a_b", true},
	}

	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.p, func(t *testing.T) {
			assert.Equal(t, tt.want, likeContains(tt.s, tt.p))
		})
	}
}

func TestFilterResidual_PreservesOrder(t *testing.T) {
	rows := []ir.Resource{
		{"id": "3", "k": "x"},
		{"id": "1", "k": "y"},
		{"id": "2", "k": "x"},
	}

	out := filterResidual(rows, queryir.Where("k", "x"))

	assert.Equal(t, []ir.Resource{{"id": "3", "k": "x"}, {"id": "2", "k": "x"}}, out)
}
