package codec

import (
	"encoding/binary"

	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// RLE is boolean-only: a sequence of (u32 run_length, u8 value) records.
func encodeRLE(col *column.Column) ([]byte, error) {
	if col.DataType != value.TypeBoolean {
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "RLE codec only supports boolean columns, got %s", col.DataType)
	}
	n := col.Len()
	var buf []byte
	var rec [5]byte
	i := 0
	for i < n {
		cur := col.MustGet(i).AsBool()
		run := 1
		for i+run < n && col.MustGet(i+run).AsBool() == cur {
			run++
		}
		binary.LittleEndian.PutUint32(rec[0:4], uint32(run))
		if cur {
			rec[4] = 1
		} else {
			rec[4] = 0
		}
		buf = append(buf, rec[:]...)
		i += run
	}
	return buf, nil
}

func decodeRLE(blob []byte, length int, name string, dataType value.DataType, vectorDim int) (*column.Column, error) {
	if dataType != value.TypeBoolean {
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "RLE codec only supports boolean columns, got %s", dataType)
	}
	col := column.New(name, dataType, vectorDim)
	off := 0
	written := 0
	for off < len(blob) {
		if off+5 > len(blob) {
			return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(off), nil, "truncated RLE record")
		}
		run := int(binary.LittleEndian.Uint32(blob[off : off+4]))
		v := blob[off+4] != 0
		off += 5
		for j := 0; j < run; j++ {
			if err := col.Append(value.Boolean(v)); err != nil {
				return nil, err
			}
		}
		written += run
	}
	if written != length {
		return nil, grizzlyerr.Newf(grizzlyerr.InvalidFileFormat, "RLE blob decoded %d rows, expected %d", written, length)
	}
	return col, nil
}
