package codec

import (
	"encoding/binary"

	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// DICTIONARY is string-only: a distinct-value dictionary followed by a
// per-row index array. Layout: u32 dict_len, then dict_len entries of
// (u32 len, bytes), then u32 index_count, then index_count u32 indices.
func encodeDictionary(col *column.Column) ([]byte, error) {
	if col.DataType != value.TypeString {
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "DICTIONARY codec only supports string columns, got %s", col.DataType)
	}
	n := col.Len()
	dict := make([]string, 0)
	index := make(map[string]uint32)
	indices := make([]uint32, n)
	for i := 0; i < n; i++ {
		s := col.MustGet(i).AsString()
		idx, ok := index[s]
		if !ok {
			idx = uint32(len(dict))
			index[s] = idx
			dict = append(dict, s)
		}
		indices[i] = idx
	}

	var buf []byte
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(dict)))
	buf = append(buf, u32[:]...)
	for _, s := range dict {
		binary.LittleEndian.PutUint32(u32[:], uint32(len(s)))
		buf = append(buf, u32[:]...)
		buf = append(buf, s...)
	}
	binary.LittleEndian.PutUint32(u32[:], uint32(len(indices)))
	buf = append(buf, u32[:]...)
	for _, idx := range indices {
		binary.LittleEndian.PutUint32(u32[:], idx)
		buf = append(buf, u32[:]...)
	}
	return buf, nil
}

func decodeDictionary(blob []byte, length int, name string, dataType value.DataType, vectorDim int) (*column.Column, error) {
	if dataType != value.TypeString {
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "DICTIONARY codec only supports string columns, got %s", dataType)
	}
	off := 0
	readU32 := func(what string) (uint32, error) {
		if off+4 > len(blob) {
			return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(off), nil, "truncated DICTIONARY "+what)
		}
		v := binary.LittleEndian.Uint32(blob[off:])
		off += 4
		return v, nil
	}

	dictLen, err := readU32("dict length")
	if err != nil {
		return nil, err
	}
	dict := make([]string, dictLen)
	for i := range dict {
		strLen, err := readU32("dict entry length")
		if err != nil {
			return nil, err
		}
		if off+int(strLen) > len(blob) {
			return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, int64(off), nil, "truncated DICTIONARY entry bytes")
		}
		dict[i] = string(blob[off : off+int(strLen)])
		off += int(strLen)
	}

	indexCount, err := readU32("index count")
	if err != nil {
		return nil, err
	}
	col := column.New(name, dataType, vectorDim)
	for i := uint32(0); i < indexCount; i++ {
		idx, err := readU32("index entry")
		if err != nil {
			return nil, err
		}
		if idx >= dictLen {
			return nil, grizzlyerr.Newf(grizzlyerr.InvalidDictionaryIndex, "dictionary index %d out of range [0,%d)", idx, dictLen)
		}
		if err := col.Append(value.String(dict[idx])); err != nil {
			return nil, err
		}
	}
	if int(indexCount) != length {
		return nil, grizzlyerr.Newf(grizzlyerr.InvalidFileFormat, "DICTIONARY blob decoded %d rows, expected %d", indexCount, length)
	}
	return col, nil
}
