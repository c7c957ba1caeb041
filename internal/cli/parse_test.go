package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docstore/internal/ir"
	"github.com/roach88/docstore/internal/queryir"
)

func TestFilterFlags_Build(t *testing.T) {
	flags := FilterFlags{
		FilterJSON: `{"zeta":1,"alpha":true}`,
		Where:      []string{"city=NYC", "age=[30,31]", "note=a=b", `quoted="42"`},
		Like:       []string{"name=al"},
	}

	f, err := flags.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta", "city", "age", "note", "quoted", "name"}, f.Keys())

	v, _ := f.Get("city")
	assert.Equal(t, "NYC", v)
	v, _ = f.Get("age")
	assert.Equal(t, []any{json.Number("30"), json.Number("31")}, v)
	v, _ = f.Get("note")
	assert.Equal(t, "a=b", v, "only the first = splits")
	v, _ = f.Get("quoted")
	assert.Equal(t, "42", v)
	v, _ = f.Get("name")
	assert.Equal(t, queryir.Like("al"), v)
}

func TestFilterFlags_BuildErrors(t *testing.T) {
	for _, flags := range []FilterFlags{
		{Where: []string{"novalue"}},
		{Where: []string{"=x"}},
		{Like: []string{"name"}},
		{FilterJSON: "{"},
		{FilterJSON: `"str"`},
	} {
		_, err := flags.Build()
		assert.Error(t, err, "%+v", flags)
	}
}

func TestParseSort(t *testing.T) {
	keys, err := parseSort([]string{"age:desc", "name", "city:ASC"})
	require.NoError(t, err)
	assert.Equal(t, []queryir.SortKey{{Key: "age", Desc: true}, {Key: "name"}, {Key: "city"}}, keys)

	_, err = parseSort([]string{"age:up"})
	assert.Error(t, err)
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ids   []any
	}{
		{"array", `[{"id":"a"},{"id":"b"}]`, []any{"a", "b"}},
		{"single object", "{\n  \"id\": \"a\"\n}", []any{"a"}},
		{"ndjson", "{\"id\":\"a\"}\n\n{\"id\":2}\n", []any{"a", json.Number("2")}},
		{"empty", "  \n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := decodeRecords([]byte(tt.input))
			require.NoError(t, err)
			var got []any
			for _, r := range records {
				id, _ := r.ID()
				got = append(got, id)
			}
			assert.Equal(t, tt.ids, got)
		})
	}

	_, err := decodeRecords([]byte("{\"id\":\"a\"}\nnot json\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestMsgpackValue(t *testing.T) {
	in := map[string]any{
		"i":   json.Number("7"),
		"f":   json.Number("1.5"),
		"arr": []any{json.Number("1"), "x"},
		"obj": map[string]any{"n": json.Number("-3")},
	}
	out := msgpackValue(in).(map[string]any)

	assert.Equal(t, int64(7), out["i"])
	assert.Equal(t, 1.5, out["f"])
	assert.Equal(t, []any{int64(1), "x"}, out["arr"])
	assert.Equal(t, map[string]any{"n": int64(-3)}, out["obj"])
	assert.True(t, ir.Equal(in, out))
}
