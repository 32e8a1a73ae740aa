package column

import "github.com/malbeclabs/grizzly/pkg/hll"

// CountDistinctExact performs a full linear scan, hashing every cell's
// Value and counting distinct hashes. Used below the exact threshold
// and as the reference implementation for tests against HLL error.
func (c *Column) CountDistinctExact() int {
	seen := make(map[uint64]struct{}, c.length)
	for i := 0; i < c.length; i++ {
		seen[c.MustGet(i).Hash()] = struct{}{}
	}
	return len(seen)
}

// CountDistinctApprox returns the HyperLogLog estimate built from the
// column's incrementally-maintained sketch.
func (c *Column) CountDistinctApprox() float64 {
	return c.liveHLL.Estimate()
}

// EstimateCardinality dispatches on column length per spec §4.1:
// exact below 10k rows, HLL between 10k and 100k, and HLL served from
// the last 10k-row checkpoint at or above 100k rows.
func (c *Column) EstimateCardinality() float64 {
	switch {
	case c.length < exactThreshold:
		return float64(c.CountDistinctExact())
	case c.length < hllThreshold:
		return c.liveHLL.Estimate()
	default:
		return c.checkpointEstimate()
	}
}

func (c *Column) checkpointEstimate() float64 {
	if c.checkpoint == nil {
		return c.liveHLL.Estimate()
	}
	return c.checkpoint.Estimate()
}

// Uniqueness returns distinct_count / length, used by the codec
// chooser's string heuristics. Returns 0 for an empty column.
func (c *Column) Uniqueness() float64 {
	if c.length == 0 {
		return 0
	}
	return c.EstimateCardinality() / float64(c.length)
}

// liveSketch returns the incrementally maintained sketch itself, so its
// cardinality state can be combined without re-scanning rows.
func (c *Column) liveSketch() *hll.HLL { return c.liveHLL }
