package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/docstore/internal/queryir"
)

func TestPartition(t *testing.T) {
	f := queryir.Where("name", "bob").
		And("id", "1").
		And("nickname", queryir.Like("b")).
		And("age", []any{1, 2})

	idx, nonIndexed := Partition([]string{"name", "age"}, f)

	assert.Equal(t, []string{"name", "id", "age"}, idx.Keys())
	assert.Equal(t, []string{"nickname"}, nonIndexed.Keys())
}

func TestPartition_Completeness(t *testing.T) {
	filters := []*queryir.Filter{
		queryir.NewFilter(),
		queryir.Where("a", 1),
		queryir.Where("a", 1).And("b", []any{1, 2}).And("c", queryir.Like("x")).And("id", 3),
		queryir.Where("z", map[string]any{"k": 1}).And("a", nil),
	}
	indexedSets := [][]string{nil, {"a"}, {"a", "b", "c"}, {"z"}}

	for _, f := range filters {
		for _, indexed := range indexedSets {
			idx, nonIndexed := Partition(indexed, f)
			assert.Equal(t, f.Len(), idx.Len()+nonIndexed.Len())

			merged := idx.ToMap()
			for k, v := range nonIndexed.ToMap() {
				_, dup := merged[k]
				assert.False(t, dup, "key %q in both partitions", k)
				merged[k] = v
			}
			assert.Equal(t, f.ToMap(), merged)

			for _, limit := range []int{1, 2, 100} {
				parts := PartitionBySize(idx, limit)
				assert.Equal(t, idx.Len(), parts.Self.Len()+parts.Ext.Len())
				for _, k := range parts.Ext.Keys() {
					v, _ := parts.Ext.Get(k)
					assert.Greater(t, len(v.([]any)), limit)
				}
			}
		}
	}
}

func TestPartitionBySize(t *testing.T) {
	f := queryir.Where("small", []any{1, 2}).
		And("big", []any{1, 2, 3, 4}).
		And("scalar", "x").
		And("pattern", queryir.Like("abcdef")).
		And("exact", []any{1, 2, 3})

	parts := PartitionBySize(f, 3)

	assert.Equal(t, []string{"small", "scalar", "pattern", "exact"}, parts.Self.Keys())
	assert.Equal(t, []string{"big"}, parts.Ext.Keys())
}

func TestPartitionBySize_DefaultLimit(t *testing.T) {
	parts := PartitionBySize(queryir.Where("a", intRange(1, 100)).And("b", intRange(1, 101)), 0)

	assert.Equal(t, []string{"a"}, parts.Self.Keys())
	assert.Equal(t, []string{"b"}, parts.Ext.Keys())
}

func TestIsIndexed(t *testing.T) {
	assert.True(t, IsIndexed(nil, "id"))
	assert.True(t, IsIndexed([]string{"a"}, "a"))
	assert.False(t, IsIndexed([]string{"a"}, "b"))
}
