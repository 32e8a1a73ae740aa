package btree

import (
	"math/rand"
	"testing"

	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/stretchr/testify/require"
)

func TestGrizzly_BTree_InsertAndSearch(t *testing.T) {
	t.Parallel()
	idx := New(4)
	idx.Insert(value.Int32(10), 0)
	idx.Insert(value.Int32(20), 1)
	idx.Insert(value.Int32(5), 2)

	require.Equal(t, []int{0}, idx.Search(value.Int32(10)))
	require.Equal(t, []int{1}, idx.Search(value.Int32(20)))
	require.Equal(t, []int{2}, idx.Search(value.Int32(5)))
	require.Empty(t, idx.Search(value.Int32(999)))
}

func TestGrizzly_BTree_DuplicateKeyAppendsAscending(t *testing.T) {
	t.Parallel()
	idx := New(4)
	idx.Insert(value.Int32(1), 5)
	idx.Insert(value.Int32(1), 2)
	idx.Insert(value.Int32(1), 9)
	require.Equal(t, []int{2, 5, 9}, idx.Search(value.Int32(1)))
}

func TestGrizzly_BTree_ManyKeysSurviveSplits(t *testing.T) {
	t.Parallel()
	idx := New(DefaultBranchingFactor)
	keys := rand.New(rand.NewSource(1)).Perm(5000)
	for i, k := range keys {
		idx.Insert(value.Int32(int32(k)), i)
	}
	for i, k := range keys {
		require.Equal(t, []int{i}, idx.Search(value.Int32(int32(k))))
	}
}
