package codec

import (
	"encoding/binary"
	"math"

	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// RAW is a dense copy: scalar types are packed row_stride bytes per
// row; strings are length-prefixed; vectors are packed floats.
func encodeRaw(col *column.Column) ([]byte, error) {
	n := col.Len()
	switch col.DataType {
	case value.TypeInt32, value.TypeFloat32:
		buf := make([]byte, n*4)
		for i := 0; i < n; i++ {
			v := col.MustGet(i)
			var bits uint32
			if col.DataType == value.TypeInt32 {
				bits = uint32(v.AsInt32())
			} else {
				bits = math.Float32bits(v.AsFloat32())
			}
			binary.LittleEndian.PutUint32(buf[i*4:], bits)
		}
		return buf, nil
	case value.TypeInt64, value.TypeFloat64, value.TypeTimestamp:
		buf := make([]byte, n*8)
		for i := 0; i < n; i++ {
			v := col.MustGet(i)
			var bits uint64
			switch col.DataType {
			case value.TypeInt64:
				bits = uint64(v.AsInt64())
			case value.TypeFloat64:
				bits = math.Float64bits(v.AsFloat64())
			case value.TypeTimestamp:
				bits = uint64(v.AsTimestamp())
			}
			binary.LittleEndian.PutUint64(buf[i*8:], bits)
		}
		return buf, nil
	case value.TypeBoolean:
		buf := make([]byte, n)
		for i := 0; i < n; i++ {
			if col.MustGet(i).AsBool() {
				buf[i] = 1
			}
		}
		return buf, nil
	case value.TypeString:
		var buf []byte
		var lenBuf [4]byte
		for i := 0; i < n; i++ {
			s := col.MustGet(i).AsString()
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
			buf = append(buf, lenBuf[:]...)
			buf = append(buf, s...)
		}
		return buf, nil
	case value.TypeVector:
		buf := make([]byte, n*col.VectorDim*4)
		for i := 0; i < n; i++ {
			vec := col.MustGet(i).AsVector()
			for j, f := range vec {
				binary.LittleEndian.PutUint32(buf[(i*col.VectorDim+j)*4:], math.Float32bits(f))
			}
		}
		return buf, nil
	default:
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "RAW codec does not support column type %s", col.DataType)
	}
}

func decodeRaw(blob []byte, length int, name string, dataType value.DataType, vectorDim int) (*column.Column, error) {
	col := column.New(name, dataType, vectorDim)
	switch dataType {
	case value.TypeInt32:
		for i := 0; i < length; i++ {
			if (i+1)*4 > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(i*4), nil, "truncated RAW int32 blob")
			}
			if err := col.Append(value.Int32(int32(binary.LittleEndian.Uint32(blob[i*4:])))); err != nil {
				return nil, err
			}
		}
	case value.TypeFloat32:
		for i := 0; i < length; i++ {
			if (i+1)*4 > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(i*4), nil, "truncated RAW float32 blob")
			}
			if err := col.Append(value.Float32(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:])))); err != nil {
				return nil, err
			}
		}
	case value.TypeInt64:
		for i := 0; i < length; i++ {
			if (i+1)*8 > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(i*8), nil, "truncated RAW int64 blob")
			}
			if err := col.Append(value.Int64(int64(binary.LittleEndian.Uint64(blob[i*8:])))); err != nil {
				return nil, err
			}
		}
	case value.TypeFloat64:
		for i := 0; i < length; i++ {
			if (i+1)*8 > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(i*8), nil, "truncated RAW float64 blob")
			}
			if err := col.Append(value.Float64(math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:])))); err != nil {
				return nil, err
			}
		}
	case value.TypeTimestamp:
		for i := 0; i < length; i++ {
			if (i+1)*8 > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(i*8), nil, "truncated RAW timestamp blob")
			}
			if err := col.Append(value.Timestamp(int64(binary.LittleEndian.Uint64(blob[i*8:])))); err != nil {
				return nil, err
			}
		}
	case value.TypeBoolean:
		for i := 0; i < length; i++ {
			if i >= len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(i), nil, "truncated RAW boolean blob")
			}
			if err := col.Append(value.Boolean(blob[i] != 0)); err != nil {
				return nil, err
			}
		}
	case value.TypeString:
		off := 0
		for i := 0; i < length; i++ {
			if off+4 > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(off), nil, "truncated RAW string length")
			}
			strLen := int(binary.LittleEndian.Uint32(blob[off:]))
			off += 4
			if off+strLen > len(blob) {
				return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(off), nil, "truncated RAW string bytes")
			}
			if err := col.Append(value.String(string(blob[off : off+strLen]))); err != nil {
				return nil, err
			}
			off += strLen
		}
	case value.TypeVector:
		for i := 0; i < length; i++ {
			vec := make([]float32, vectorDim)
			for j := 0; j < vectorDim; j++ {
				o := (i*vectorDim + j) * 4
				if o+4 > len(blob) {
					return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(o), nil, "truncated RAW vector blob")
				}
				vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(blob[o:]))
			}
			if err := col.Append(value.Vector(vec)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "RAW codec does not support column type %s", dataType)
	}
	return col, nil
}
