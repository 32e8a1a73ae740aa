package snapshot

import (
	"encoding/binary"
	"os"

	"github.com/malbeclabs/grizzly/pkg/codec"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/table"
	"github.com/malbeclabs/grizzly/pkg/value"
)

type byteReader struct {
	data []byte
	off  int64
}

func (r *byteReader) u8() (byte, error) {
	if r.off+1 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of snapshot")
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *byteReader) u16() (uint16, error) {
	if r.off+2 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of snapshot")
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *byteReader) u32() (uint32, error) {
	if r.off+4 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of snapshot")
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) u64() (uint64, error) {
	if r.off+8 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of snapshot")
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *byteReader) bytes(n uint32) ([]byte, error) {
	if r.off+int64(n) > int64(len(r.data)) {
		return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of snapshot")
	}
	b := r.data[r.off : r.off+int64(n)]
	r.off += int64(n)
	return b, nil
}

func (r *byteReader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Load reads and reconstructs every table in the snapshot file at
// path, rejecting anything but the expected magic and a version at or
// below Version.
func Load(path string) ([]*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "read snapshot file")
	}
	r := &byteReader{data: data}

	magic, err := r.bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != string(Magic[:]) {
		return nil, grizzlyerr.New(grizzlyerr.InvalidFileFormat, "bad snapshot magic")
	}
	version, err := r.u16()
	if err != nil {
		return nil, err
	}
	if version > Version {
		return nil, grizzlyerr.Newf(grizzlyerr.UnsupportedVersion, "snapshot version %d is newer than supported version %d", version, Version)
	}

	if _, err := r.str(); err != nil { // dbname
		return nil, err
	}
	tableCount, err := r.u32()
	if err != nil {
		return nil, err
	}

	tables := make([]*table.Table, 0, tableCount)
	for i := uint32(0); i < tableCount; i++ {
		t, err := readTable(r)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func readTable(r *byteReader) (*table.Table, error) {
	name, err := r.str()
	if err != nil {
		return nil, err
	}
	colCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	schema := make(table.Schema, colCount)
	for i := range schema {
		colName, err := r.str()
		if err != nil {
			return nil, err
		}
		tag, err := r.u8()
		if err != nil {
			return nil, err
		}
		vecDim, err := r.u16()
		if err != nil {
			return nil, err
		}
		schema[i] = table.ColumnSchema{Name: colName, DataType: value.DataType(tag), VectorDim: int(vecDim)}
	}
	rowCount, err := r.u64()
	if err != nil {
		return nil, err
	}

	t := table.New(name, schema)
	for i, cs := range schema {
		codecTag, err := r.u8()
		if err != nil {
			return nil, err
		}
		blobLen, err := r.u32()
		if err != nil {
			return nil, err
		}
		blob, err := r.bytes(blobLen)
		if err != nil {
			return nil, err
		}
		col, err := codec.Decode(blob, codec.Tag(codecTag), int(rowCount), cs.Name, cs.DataType, cs.VectorDim)
		if err != nil {
			return nil, err
		}
		t.Columns[i] = col
	}
	t.RowCount = int(rowCount)

	btreeCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < btreeCount; i++ {
		idxName, err := r.str()
		if err != nil {
			return nil, err
		}
		colName, err := r.str()
		if err != nil {
			return nil, err
		}
		if err := t.CreateIndex(idxName, colName); err != nil {
			return nil, err
		}
	}
	compositeCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < compositeCount; i++ {
		idxName, err := r.str()
		if err != nil {
			return nil, err
		}
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		cols := make([]string, n)
		for j := range cols {
			cols[j], err = r.str()
			if err != nil {
				return nil, err
			}
		}
		if err := t.CreateCompositeIndex(idxName, cols); err != nil {
			return nil, err
		}
	}
	return t, nil
}
