package hash

import (
	"testing"

	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/stretchr/testify/require"
)

func TestGrizzly_CompositeHashIndex_InsertAndLookup(t *testing.T) {
	t.Parallel()
	idx := New([]string{"region", "sku"})
	idx.InsertRow(0, []value.Value{value.String("us"), value.Int32(1)})
	idx.InsertRow(1, []value.Value{value.String("eu"), value.Int32(1)})
	idx.InsertRow(2, []value.Value{value.String("us"), value.Int32(1)})

	require.Equal(t, []int{0, 2}, idx.Lookup([]value.Value{value.String("us"), value.Int32(1)}))
	require.Equal(t, []int{1}, idx.Lookup([]value.Value{value.String("eu"), value.Int32(1)}))
	require.Empty(t, idx.Lookup([]value.Value{value.String("ap"), value.Int32(1)}))
}

func TestGrizzly_CompositeHashIndex_CollisionVerifiesEquality(t *testing.T) {
	t.Parallel()
	idx := New([]string{"a", "b"})
	for i := 0; i < 500; i++ {
		idx.InsertRow(i, []value.Value{value.Int32(int32(i)), value.Int32(int32(i * 7))})
	}
	for i := 0; i < 500; i++ {
		got := idx.Lookup([]value.Value{value.Int32(int32(i)), value.Int32(int32(i * 7))})
		require.Equal(t, []int{i}, got)
	}
}
