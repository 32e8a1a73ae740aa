package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrizzly_Value_EqualityIsTypeExact(t *testing.T) {
	t.Parallel()
	require.True(t, Int32(5).Equal(Int32(5)))
	require.False(t, Int32(5).Equal(Int64(5)))
	require.False(t, Int32(5).Equal(Int32(6)))
}

func TestGrizzly_Value_CompareSameTagOnly(t *testing.T) {
	t.Parallel()
	c, ok := Int32(1).Compare(Int32(2))
	require.True(t, ok)
	require.Equal(t, -1, c)

	_, ok = Int32(1).Compare(Int64(1))
	require.False(t, ok)
}

func TestGrizzly_Value_VectorOrdering(t *testing.T) {
	t.Parallel()
	c, ok := Vector([]float32{1, 2}).Compare(Vector([]float32{1, 3}))
	require.True(t, ok)
	require.Equal(t, -1, c)

	// Same prefix, shorter sorts first.
	c, ok = Vector([]float32{1, 2}).Compare(Vector([]float32{1, 2, 0}))
	require.True(t, ok)
	require.Equal(t, -1, c)
}

func TestGrizzly_Value_ExceptionNotOrderable(t *testing.T) {
	t.Parallel()
	a := Exception(&ExceptionValue{Kind: "k", Message: "m"})
	b := Exception(&ExceptionValue{Kind: "k", Message: "m"})
	_, ok := a.Compare(b)
	require.False(t, ok)
	require.True(t, a.Equal(b))
}

func TestGrizzly_Value_CustomOrderingByFieldCountThenKeys(t *testing.T) {
	t.Parallel()
	a := Custom(&CustomValue{TypeName: "t", Fields: map[string]Value{"a": Int32(1)}})
	b := Custom(&CustomValue{TypeName: "t", Fields: map[string]Value{"a": Int32(1), "b": Int32(2)}})
	c, ok := a.Compare(b)
	require.True(t, ok)
	require.Equal(t, -1, c)
}

func TestGrizzly_Value_HashStableAcrossCalls(t *testing.T) {
	t.Parallel()
	v := String("hello")
	require.Equal(t, v.Hash(), String("hello").Hash())
	require.NotEqual(t, v.Hash(), String("hellp").Hash())
	// Different tags with "the same bits" must hash differently.
	require.NotEqual(t, Int32(0).Hash(), Boolean(false).Hash())
}

func TestGrizzly_Value_CloneIsIndependentOfSource(t *testing.T) {
	t.Parallel()
	buf := []byte("abc")
	v := String(string(buf))
	clone := v.Clone()
	require.True(t, v.Equal(clone))

	vec := []float32{1, 2, 3}
	vclone := Vector(vec).Clone()
	vec[0] = 9
	require.True(t, vclone.Equal(Vector([]float32{1, 2, 3})))
}
