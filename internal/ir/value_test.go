package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Booleans(t *testing.T) {
	assert.Equal(t, 1, Normalize(true))
	assert.Equal(t, 0, Normalize(false))
}

func TestNormalize_PassThrough(t *testing.T) {
	testCases := []struct {
		name  string
		value any
	}{
		{"string", "abc"},
		{"int", 42},
		{"float", 1.5},
		{"nil", nil},
		{"json number", json.Number("7")},
		{"object", map[string]any{"k": "v"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.value, Normalize(tc.value))
		})
	}
}

func TestNormalize_TypedSlices(t *testing.T) {
	assert.Equal(t, []any{"a", "b"}, Normalize([]string{"a", "b"}))
	assert.Equal(t, []any{1, 2, 3}, Normalize([]int{1, 2, 3}))
	assert.Equal(t, []byte("raw"), Normalize([]byte("raw")))
}

func TestNormalize_Idempotent(t *testing.T) {
	values := []any{
		true, false, 0, 1, "x", nil, 2.5,
		[]string{"a"}, []any{true, 1}, map[string]any{"b": true},
		json.Number("10"),
	}

	for _, v := range values {
		once := Normalize(v)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %#v", v)
	}
}

func TestEqual_Numbers(t *testing.T) {
	assert.True(t, Equal(1, json.Number("1")))
	assert.True(t, Equal(int64(3), 3.0))
	assert.True(t, Equal(json.Number("2.5"), 2.5))
	assert.False(t, Equal(1, 1.5))
	assert.False(t, Equal(1, "1"))
	assert.True(t, Equal(json.Number("9007199254740993"), int64(9007199254740993)))
	assert.False(t, Equal(json.Number("9007199254740993"), int64(9007199254740992)))
}

func TestEqual_BooleansMatchNormalizedForm(t *testing.T) {
	assert.True(t, Equal(true, 1))
	assert.True(t, Equal(0, false))
	assert.False(t, Equal(true, 0))
}

func TestEqual_Structural(t *testing.T) {
	a := map[string]any{"k": "a", "v": json.Number("1")}
	b := map[string]any{"v": 1, "k": "a"}
	assert.True(t, Equal(a, b), "object key order must not matter")

	assert.True(t, Equal([]any{1, "x"}, []any{json.Number("1"), "x"}))
	assert.False(t, Equal([]any{1, 2}, []any{2, 1}), "array order matters")
	assert.False(t, Equal(map[string]any{"k": 1}, map[string]any{"k": 1, "j": 2}))
	assert.False(t, Equal(map[string]any{"k": 1}, []any{1}))
}

func TestEqual_Nil(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, 0))
	assert.False(t, Equal("", nil))
}
