// Package column implements Column (spec §3, §4.1 C2): a dense typed
// column buffer with append/get, doubling growth, numeric aggregates,
// and cardinality statistics backed by HyperLogLog.
package column

import (
	"encoding/binary"
	"math"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/hll"
	"github.com/malbeclabs/grizzly/pkg/value"
)

const (
	// hllCheckpointInterval is the row-count granularity at which the
	// large-cardinality checkpoint is refreshed (spec §4.1).
	hllCheckpointInterval = 10_000

	exactThreshold = 10_000
	hllThreshold   = 100_000

	initialCapacity = 8
)

// Column is a dense, typed, append-only (plus in-place reorder) buffer.
// Invariant: length <= capacity; growth doubles capacity, preserving
// used bytes and zeroing the rest.
type Column struct {
	Name      string
	DataType  value.DataType
	VectorDim int // only meaningful when DataType == TypeVector

	length   int
	capacity int
	stride   int    // row_stride bytes per slot for fixed-width scalar types
	buf      []byte // length capacity*stride

	stringPool [][]byte // owned, indexed by the uint32 stored in buf for string columns

	vectorStorage []float32 // length capacity*VectorDim, contiguous

	// liveHLL is maintained incrementally on every Append — cheaper
	// than rebuilding a sketch from scratch on every cardinality
	// query, which is what the spec's per-10k-row "checkpoint" is
	// trying to avoid.
	liveHLL *hll.HLL

	// checkpoint mirrors liveHLL at the last multiple-of-10k boundary,
	// used by the largest cardinality tier per spec §4.1.
	checkpoint    *hll.HLL
	checkpointLen int
}

// New constructs an empty column of the given type. vectorDim is only
// used (and must be > 0) when dataType == TypeVector.
func New(name string, dataType value.DataType, vectorDim int) *Column {
	c := &Column{
		Name:      name,
		DataType:  dataType,
		VectorDim: vectorDim,
		capacity:  initialCapacity,
		stride:    dataType.FixedWidth(),
		liveHLL:   hll.New(),
		checkpoint: hll.New(),
	}
	if dataType == value.TypeString {
		c.stringPool = make([][]byte, 0, initialCapacity)
	}
	if dataType == value.TypeVector {
		c.vectorStorage = make([]float32, initialCapacity*vectorDim)
	} else {
		c.buf = make([]byte, c.capacity*c.stride)
	}
	return c
}

func (c *Column) Len() int      { return c.length }
func (c *Column) Cap() int      { return c.capacity }

// growIfNeeded doubles capacity, preserving used bytes/floats and
// zeroing the new tail, per spec §4.1.
func (c *Column) growIfNeeded() {
	if c.length < c.capacity {
		return
	}
	newCap := c.capacity * 2
	if c.DataType == value.TypeVector {
		newStorage := make([]float32, newCap*c.VectorDim)
		copy(newStorage, c.vectorStorage)
		c.vectorStorage = newStorage
	} else if c.DataType != value.TypeString {
		newBuf := make([]byte, newCap*c.stride)
		copy(newBuf, c.buf)
		c.buf = newBuf
	}
	c.capacity = newCap
}

// Append validates v against the column's type and appends it,
// growing capacity as needed.
func (c *Column) Append(v value.Value) error {
	if v.Type != c.DataType {
		return grizzlyerr.Newf(grizzlyerr.TypeMismatch, "column %q expects %s, got %s", c.Name, c.DataType, v.Type)
	}
	if c.DataType == value.TypeVector && len(v.AsVector()) != c.VectorDim {
		return grizzlyerr.Newf(grizzlyerr.VectorDimensionMismatch, "column %q expects vector dim %d, got %d", c.Name, c.VectorDim, len(v.AsVector()))
	}

	c.growIfNeeded()

	switch c.DataType {
	case value.TypeInt32:
		binary.LittleEndian.PutUint32(c.buf[c.length*4:], uint32(v.AsInt32()))
	case value.TypeInt64:
		binary.LittleEndian.PutUint64(c.buf[c.length*8:], uint64(v.AsInt64()))
	case value.TypeFloat32:
		binary.LittleEndian.PutUint32(c.buf[c.length*4:], math.Float32bits(v.AsFloat32()))
	case value.TypeFloat64:
		binary.LittleEndian.PutUint64(c.buf[c.length*8:], math.Float64bits(v.AsFloat64()))
	case value.TypeBoolean:
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		c.buf[c.length] = b
	case value.TypeTimestamp:
		binary.LittleEndian.PutUint64(c.buf[c.length*8:], uint64(v.AsTimestamp()))
	case value.TypeString:
		idx := uint32(len(c.stringPool))
		owned := make([]byte, len(v.AsString()))
		copy(owned, v.AsString())
		c.stringPool = append(c.stringPool, owned)
		if c.length*4+4 > len(c.buf) {
			c.buf = append(c.buf, make([]byte, c.length*4+4-len(c.buf))...)
		}
		binary.LittleEndian.PutUint32(c.buf[c.length*4:], idx)
	case value.TypeVector:
		copy(c.vectorStorage[c.length*c.VectorDim:], v.AsVector())
	default:
		return grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "column type %s cannot be appended to a dense column", c.DataType)
	}

	c.length++
	c.liveHLL.AddHash(v.Hash())
	if c.length-c.checkpointLen >= hllCheckpointInterval {
		c.checkpoint = c.liveHLL.Clone()
		c.checkpointLen = c.length
	}
	return nil
}

// Get returns a bounds-checked Value at row i. String/vector values
// borrow from the column's pool/storage.
func (c *Column) Get(i int) (value.Value, error) {
	if i < 0 || i >= c.length {
		return value.Value{}, grizzlyerr.Newf(grizzlyerr.IndexOutOfBounds, "index %d out of bounds for column %q of length %d", i, c.Name, c.length)
	}
	switch c.DataType {
	case value.TypeInt32:
		return value.Int32(int32(binary.LittleEndian.Uint32(c.buf[i*4:]))), nil
	case value.TypeInt64:
		return value.Int64(int64(binary.LittleEndian.Uint64(c.buf[i*8:]))), nil
	case value.TypeFloat32:
		return value.Float32(math.Float32frombits(binary.LittleEndian.Uint32(c.buf[i*4:]))), nil
	case value.TypeFloat64:
		return value.Float64(math.Float64frombits(binary.LittleEndian.Uint64(c.buf[i*8:]))), nil
	case value.TypeBoolean:
		return value.Boolean(c.buf[i] != 0), nil
	case value.TypeTimestamp:
		return value.Timestamp(int64(binary.LittleEndian.Uint64(c.buf[i*8:]))), nil
	case value.TypeString:
		idx := binary.LittleEndian.Uint32(c.buf[i*4:])
		return value.String(string(c.stringPool[idx])), nil
	case value.TypeVector:
		return value.Vector(c.vectorStorage[i*c.VectorDim : (i+1)*c.VectorDim]), nil
	default:
		return value.Value{}, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "column type %s cannot be read", c.DataType)
	}
}

// MustGet panics on error; used in contexts where i is already known
// in-bounds (e.g. internal index rebuilds).
func (c *Column) MustGet(i int) value.Value {
	v, err := c.Get(i)
	if err != nil {
		panic(err)
	}
	return v
}

// StringPoolEntry exposes the owned backing bytes for a string pool
// slot without forcing a Value allocation.
func (c *Column) StringPoolEntry(idx uint32) []byte {
	return c.stringPool[idx]
}

// StringIndexAt returns the raw string_pool index stored at row i.
func (c *Column) StringIndexAt(i int) uint32 {
	return binary.LittleEndian.Uint32(c.buf[i*4:])
}
