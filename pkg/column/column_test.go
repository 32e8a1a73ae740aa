package column

import (
	"context"
	"testing"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/stretchr/testify/require"
)

func TestGrizzly_Column_AppendAndGetRoundtrip(t *testing.T) {
	t.Parallel()
	c := New("id", value.TypeInt32, 0)
	require.NoError(t, c.Append(value.Int32(1)))
	require.NoError(t, c.Append(value.Int32(2)))

	v, err := c.Get(0)
	require.NoError(t, err)
	require.Equal(t, int32(1), v.AsInt32())

	v, err = c.Get(1)
	require.NoError(t, err)
	require.Equal(t, int32(2), v.AsInt32())
}

func TestGrizzly_Column_AppendTypeMismatch(t *testing.T) {
	t.Parallel()
	c := New("id", value.TypeInt32, 0)
	err := c.Append(value.String("oops"))
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.TypeMismatch))
}

func TestGrizzly_Column_VectorAppendAndGetRoundtripAcrossGrowth(t *testing.T) {
	t.Parallel()
	c := New("embedding", value.TypeVector, 3)
	const rows = 20 // exceeds initialCapacity, forcing at least one growIfNeeded realloc
	for i := 0; i < rows; i++ {
		vec := []float32{float32(i), float32(i) + 0.5, float32(i) * 2}
		require.NoError(t, c.Append(value.Vector(vec)))
	}
	require.Equal(t, rows, c.Len())
	for i := 0; i < rows; i++ {
		v, err := c.Get(i)
		require.NoError(t, err)
		want := []float32{float32(i), float32(i) + 0.5, float32(i) * 2}
		require.Equal(t, want, v.AsVector())
	}
}

func TestGrizzly_Column_VectorDimensionMismatch(t *testing.T) {
	t.Parallel()
	c := New("embedding", value.TypeVector, 3)
	err := c.Append(value.Vector([]float32{1, 2}))
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.VectorDimensionMismatch))
}

func TestGrizzly_Column_GetOutOfBounds(t *testing.T) {
	t.Parallel()
	c := New("id", value.TypeInt32, 0)
	require.NoError(t, c.Append(value.Int32(1)))
	_, err := c.Get(5)
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.IndexOutOfBounds))
}

func TestGrizzly_Column_GrowthDoublesCapacityAndPreservesData(t *testing.T) {
	t.Parallel()
	c := New("id", value.TypeInt32, 0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, c.Append(value.Int32(int32(i))))
	}
	require.Equal(t, 1000, c.Len())
	require.GreaterOrEqual(t, c.Cap(), 1000)
	for i := 0; i < 1000; i++ {
		v, err := c.Get(i)
		require.NoError(t, err)
		require.Equal(t, int32(i), v.AsInt32())
	}
}

func TestGrizzly_Column_StringPoolOwnsBytes(t *testing.T) {
	t.Parallel()
	c := New("name", value.TypeString, 0)
	s := []byte("alice")
	require.NoError(t, c.Append(value.String(string(s))))
	s[0] = 'X' // mutate the original buffer after append
	v, err := c.Get(0)
	require.NoError(t, err)
	require.Equal(t, "alice", v.AsString())
}

func TestGrizzly_Column_AggregatesOnEmptyColumn(t *testing.T) {
	t.Parallel()
	c := New("x", value.TypeInt64, 0)
	_, err := c.Min()
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.EmptyColumn))
	_, err = c.Max()
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.EmptyColumn))
	_, err = c.Avg()
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.EmptyColumn))
}

func TestGrizzly_Column_SumPromotesInt32ToInt64(t *testing.T) {
	t.Parallel()
	c := New("x", value.TypeInt32, 0)
	for _, v := range []int32{1, 2, 3} {
		require.NoError(t, c.Append(value.Int32(v)))
	}
	sum, err := c.Sum()
	require.NoError(t, err)
	require.Equal(t, value.TypeInt64, sum.Type)
	require.Equal(t, int64(6), sum.AsInt64())
}

func TestGrizzly_Column_UnsupportedOperationOnNonNumeric(t *testing.T) {
	t.Parallel()
	c := New("name", value.TypeString, 0)
	require.NoError(t, c.Append(value.String("a")))
	_, err := c.Sum()
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.UnsupportedOperation))
}

func TestGrizzly_Column_EstimateCardinalityExactBelowThreshold(t *testing.T) {
	t.Parallel()
	c := New("x", value.TypeInt32, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Append(value.Int32(int32(i % 10))))
	}
	require.Equal(t, float64(10), c.EstimateCardinality())
}

func TestGrizzly_Column_MapReduceChunkedSumsRanges(t *testing.T) {
	t.Parallel()
	c := New("x", value.TypeInt64, 0)
	for i := 0; i < 97; i++ {
		require.NoError(t, c.Append(value.Int64(int64(i))))
	}
	result, err := c.MapReduceChunked(context.Background(), 4,
		func(start, end int) (any, error) {
			sum := 0
			for i := start; i < end; i++ {
				sum += int(c.MustGet(i).AsInt64())
			}
			return sum, nil
		},
		func(acc, partial any) any {
			if acc == nil {
				return partial
			}
			return acc.(int) + partial.(int)
		},
	)
	require.NoError(t, err)
	require.Equal(t, 96*97/2, result)
}
