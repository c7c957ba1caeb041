package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_ID(t *testing.T) {
	id, ok := Resource{"id": 1}.ID()
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	_, ok = Resource{"name": "x"}.ID()
	assert.False(t, ok)

	_, ok = Resource{"id": ""}.ID()
	assert.False(t, ok)

	_, ok = Resource{"id": nil}.ID()
	assert.False(t, ok)

	_, ok = Resource(nil).ID()
	assert.False(t, ok)
}

func TestResource_Deleted(t *testing.T) {
	assert.True(t, Resource{"_deleted": true}.Deleted())
	assert.True(t, Resource{"_deleted": 1}.Deleted())
	assert.False(t, Resource{"_deleted": false}.Deleted())
	assert.False(t, Resource{"_deleted": 0}.Deleted())
	assert.False(t, Resource{"id": 1}.Deleted())
}

func TestResource_Field(t *testing.T) {
	r := Resource{"isOk": true, "tag": "item"}
	assert.Equal(t, 1, r.Field("isOk"))
	assert.Equal(t, "item", r.Field("tag"))
	assert.Nil(t, r.Field("missing"))
}

func TestPayload_RoundTrip(t *testing.T) {
	original := Resource{
		"id":     1,
		"test":   "test1",
		"isOk":   false,
		"params": []any{map[string]any{"k": "b", "v": 2}},
		"score":  0.25,
	}

	text, err := EncodePayload(original)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"isOk":false,"params":[{"k":"b","v":2}],"score":0.25,"test":"test1"}`, text)

	decoded, err := DecodePayload(text)
	require.NoError(t, err)
	for k, v := range original {
		assert.True(t, Equal(v, decoded[k]), "field %q did not round-trip", k)
	}
	assert.Equal(t, json.Number("1"), decoded["id"])
}

func TestDecodePayload_Errors(t *testing.T) {
	_, err := DecodePayload("not json")
	assert.Error(t, err)

	_, err = DecodePayload(`{"a":1} {"b":2}`)
	assert.Error(t, err)

	_, err = DecodePayload(`[1,2]`)
	assert.Error(t, err)
}

func TestDecodePayload_Null(t *testing.T) {
	r, err := DecodePayload("null")
	require.NoError(t, err)
	assert.Equal(t, Resource{}, r)
}
