// Package hash implements CompositeHashIndex (spec §4.5 C6): a
// Wyhash-bucketed index over a tuple of columns, with full cell-by-cell
// equality verification on lookup to resolve bucket collisions.
package hash

import (
	"encoding/binary"

	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/malbeclabs/grizzly/pkg/wyhash"
)

// bucketEntry remembers both the row-id and the exact key values, so
// lookup can verify cell-by-cell equality instead of trusting the hash.
type bucketEntry struct {
	rowID  int
	values []value.Value
}

// Index is a composite-key hash index over a fixed tuple of columns.
type Index struct {
	Columns []string // indexed column names, in key order
	buckets map[uint64][]bucketEntry
}

// New constructs an empty composite index over the given columns
// (caller-validated to be >= 2, per spec §4.6 createCompositeIndex).
func New(columns []string) *Index {
	return &Index{
		Columns: columns,
		buckets: make(map[uint64][]bucketEntry),
	}
}

// HashValues computes the bucket hash for a tuple of Values in column
// order: Wyhash(concat(Value.hash for each indexed column)).
func HashValues(values []value.Value) uint64 {
	parts := make([][]byte, len(values))
	for i, v := range values {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v.Hash())
		parts[i] = b[:]
	}
	return wyhash.HashConcat(0, parts...)
}

// InsertRow appends rowID (with its key values, for later equality
// verification) to the bucket for values.
func (idx *Index) InsertRow(rowID int, values []value.Value) {
	h := HashValues(values)
	cloned := make([]value.Value, len(values))
	for i, v := range values {
		cloned[i] = v.Clone()
	}
	idx.buckets[h] = append(idx.buckets[h], bucketEntry{rowID: rowID, values: cloned})
}

// Lookup rehashes values, then verifies each bucket candidate
// cell-by-cell, returning matching row-ids in insertion order.
func (idx *Index) Lookup(values []value.Value) []int {
	h := HashValues(values)
	candidates := idx.buckets[h]
	matches := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if valuesEqual(c.values, values) {
			matches = append(matches, c.rowID)
		}
	}
	return matches
}

func valuesEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
