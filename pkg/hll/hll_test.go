package hll

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func addInt(h *HLL, v int) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	h.Add(b[:])
}

func TestGrizzly_HLL_EstimateWithinErrorBound(t *testing.T) {
	t.Parallel()
	for _, n := range []int{1_000, 10_000, 100_000} {
		h := New()
		for i := 0; i < n; i++ {
			addInt(h, i)
		}
		est := h.Estimate()
		errRate := math.Abs(est-float64(n)) / float64(n)
		require.Lessf(t, errRate, 0.03, "n=%d est=%v err=%v", n, est, errRate)
	}
}

func TestGrizzly_HLL_MergeIsElementwiseMax(t *testing.T) {
	t.Parallel()
	a := New()
	b := New()
	for i := 0; i < 5_000; i++ {
		addInt(a, i)
	}
	for i := 2_500; i < 10_000; i++ {
		addInt(b, i)
	}
	a.Merge(b)
	est := a.Estimate()
	errRate := math.Abs(est-10_000) / 10_000
	require.Less(t, errRate, 0.05)
}

func TestGrizzly_HLL_CloneIndependent(t *testing.T) {
	t.Parallel()
	h := New()
	addInt(h, 1)
	clone := h.Clone()
	addInt(h, 2)
	require.NotEqual(t, h.Estimate(), clone.Estimate())
}
