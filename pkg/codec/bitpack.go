package codec

import (
	"encoding/binary"

	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// BITPACK is int32/int64-only: values are stored as (value - min) deltas
// packed at the minimum bit width that holds the largest delta. Layout:
// u8 bits_per_value, i64 min, then the packed delta stream (LSB-first
// within each byte).
func encodeBitpack(col *column.Column) ([]byte, error) {
	n := col.Len()
	if n == 0 {
		return nil, grizzlyerr.New(grizzlyerr.EmptyColumn, "cannot BITPACK an empty column")
	}
	var vals []int64
	switch col.DataType {
	case value.TypeInt32:
		vals = make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(col.MustGet(i).AsInt32())
		}
	case value.TypeInt64:
		vals = make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = col.MustGet(i).AsInt64()
		}
	default:
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "BITPACK codec only supports int32/int64 columns, got %s", col.DataType)
	}

	min := vals[0]
	max := vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	maxDelta := uint64(max - min)
	bits := bitsNeeded(maxDelta)
	if bits == 0 {
		bits = 1 // all values equal: still emit 1 bit per row
	}

	header := make([]byte, 9)
	header[0] = byte(bits)
	binary.LittleEndian.PutUint64(header[1:9], uint64(min))

	w := newBitWriter()
	for _, v := range vals {
		w.write(uint64(v-min), bits)
	}
	return append(header, w.bytes()...), nil
}

func decodeBitpack(blob []byte, length int, name string, dataType value.DataType, vectorDim int) (*column.Column, error) {
	if dataType != value.TypeInt32 && dataType != value.TypeInt64 {
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "BITPACK codec only supports int32/int64 columns, got %s", dataType)
	}
	if len(blob) < 9 {
		return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, 0, nil, "truncated BITPACK header")
	}
	bits := int(blob[0])
	min := int64(binary.LittleEndian.Uint64(blob[1:9]))

	col := column.New(name, dataType, vectorDim)
	r := newBitReader(blob[9:])
	for i := 0; i < length; i++ {
		delta, err := r.read(bits)
		if err != nil {
			return nil, err
		}
		v := min + int64(delta)
		var appendErr error
		if dataType == value.TypeInt32 {
			appendErr = col.Append(value.Int32(int32(v)))
		} else {
			appendErr = col.Append(value.Int64(v))
		}
		if appendErr != nil {
			return nil, appendErr
		}
	}
	return col, nil
}

func bitsNeeded(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

type bitWriter struct {
	buf      []byte
	curByte  byte
	curBits  int
}

func newBitWriter() *bitWriter { return &bitWriter{} }

func (w *bitWriter) write(v uint64, bits int) {
	for i := 0; i < bits; i++ {
		bit := byte((v >> uint(i)) & 1)
		w.curByte |= bit << uint(w.curBits)
		w.curBits++
		if w.curBits == 8 {
			w.buf = append(w.buf, w.curByte)
			w.curByte = 0
			w.curBits = 0
		}
	}
}

func (w *bitWriter) bytes() []byte {
	if w.curBits > 0 {
		return append(w.buf, w.curByte)
	}
	return w.buf
}

type bitReader struct {
	data    []byte
	bytePos int
	bitPos  int
}

func newBitReader(data []byte) *bitReader { return &bitReader{data: data} }

func (r *bitReader) read(bits int) (uint64, error) {
	var v uint64
	for i := 0; i < bits; i++ {
		if r.bytePos >= len(r.data) {
			return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(r.bytePos), nil, "truncated BITPACK stream")
		}
		bit := (r.data[r.bytePos] >> uint(r.bitPos)) & 1
		v |= uint64(bit) << uint(i)
		r.bitPos++
		if r.bitPos == 8 {
			r.bitPos = 0
			r.bytePos++
		}
	}
	return v, nil
}
