package delta

import (
	"encoding/binary"
	"math"
	"os"

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
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of delta file")
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *byteReader) u16() (uint16, error) {
	if r.off+2 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of delta file")
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *byteReader) u32() (uint32, error) {
	if r.off+4 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of delta file")
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *byteReader) u64() (uint64, error) {
	if r.off+8 > int64(len(r.data)) {
		return 0, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of delta file")
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *byteReader) bytes(n uint32) ([]byte, error) {
	if r.off+int64(n) > int64(len(r.data)) {
		return nil, grizzlyerr.WrapAt(grizzlyerr.IncompleteRead, r.off, nil, "unexpected end of delta file")
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

// ApplyIncremental validates deltaPath's recorded base against
// baseSnapshot, then, for each table it names, validates start_row and
// schema equality before appending its new rows.
//
// At-most-once application: callers are expected to apply deltas in
// manifest order; re-applying an already-applied delta fails
// SnapshotOutOfDate because start_row no longer equals the table's
// current row count.
func ApplyIncremental(tables []*table.Table, baseSnapshot, deltaPath string) error {
	data, err := os.ReadFile(deltaPath)
	if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "read delta file")
	}
	r := &byteReader{data: data}

	magic, err := r.bytes(4)
	if err != nil {
		return err
	}
	if string(magic) != string(Magic[:]) {
		return grizzlyerr.New(grizzlyerr.InvalidFileFormat, "bad delta magic")
	}
	version, err := r.u16()
	if err != nil {
		return err
	}
	if version > Version {
		return grizzlyerr.Newf(grizzlyerr.UnsupportedVersion, "delta version %d is newer than supported version %d", version, Version)
	}
	base, err := r.str()
	if err != nil {
		return err
	}
	if base != baseSnapshot {
		return grizzlyerr.Newf(grizzlyerr.SnapshotMismatch, "delta base %q does not match expected base %q", base, baseSnapshot)
	}

	byName := make(map[string]*table.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	tableCount, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < tableCount; i++ {
		if err := applyTableDelta(r, byName); err != nil {
			return err
		}
	}
	return nil
}

func applyTableDelta(r *byteReader, byName map[string]*table.Table) error {
	name, err := r.str()
	if err != nil {
		return err
	}
	startRow, err := r.u64()
	if err != nil {
		return err
	}
	colCount, err := r.u32()
	if err != nil {
		return err
	}
	schema := make(table.Schema, colCount)
	for i := range schema {
		colName, err := r.str()
		if err != nil {
			return err
		}
		tag, err := r.u8()
		if err != nil {
			return err
		}
		vecDim, err := r.u16()
		if err != nil {
			return err
		}
		schema[i] = table.ColumnSchema{Name: colName, DataType: value.DataType(tag), VectorDim: int(vecDim)}
	}
	rowCount, err := r.u64()
	if err != nil {
		return err
	}

	t, ok := byName[name]
	if !ok {
		return grizzlyerr.Newf(grizzlyerr.TableNotFound, "delta references unknown table %q", name)
	}
	if int(startRow) != t.RowCount {
		return grizzlyerr.Newf(grizzlyerr.SnapshotOutOfDate, "delta for table %q starts at row %d, but table is at row %d", name, startRow, t.RowCount)
	}
	if !schema.Equal(t.Schema) {
		return grizzlyerr.Newf(grizzlyerr.SchemaMismatch, "delta schema for table %q does not match current schema", name)
	}

	for i := uint64(0); i < rowCount; i++ {
		row := make([]value.Value, colCount)
		for c, cs := range schema {
			v, err := readValue(r, cs)
			if err != nil {
				return err
			}
			row[c] = v
		}
		if err := t.InsertRow(row); err != nil {
			return err
		}
	}
	return nil
}

func readValue(r *byteReader, cs table.ColumnSchema) (value.Value, error) {
	switch cs.DataType {
	case value.TypeInt32:
		v, err := r.u32()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int32(int32(v)), nil
	case value.TypeInt64:
		v, err := r.u64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Int64(int64(v)), nil
	case value.TypeFloat32:
		v, err := r.u32()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float32(math.Float32frombits(v)), nil
	case value.TypeFloat64:
		v, err := r.u64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(math.Float64frombits(v)), nil
	case value.TypeBoolean:
		b, err := r.u8()
		if err != nil {
			return value.Value{}, err
		}
		return value.Boolean(b != 0), nil
	case value.TypeString:
		s, err := r.str()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case value.TypeTimestamp:
		v, err := r.u64()
		if err != nil {
			return value.Value{}, err
		}
		return value.Timestamp(int64(v)), nil
	case value.TypeVector:
		n, err := r.u32()
		if err != nil {
			return value.Value{}, err
		}
		vec := make([]float32, n)
		for i := range vec {
			bits, err := r.u32()
			if err != nil {
				return value.Value{}, err
			}
			vec[i] = math.Float32frombits(bits)
		}
		return value.Vector(vec), nil
	default:
		return value.Value{}, grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "delta decoding does not support value type %s", cs.DataType)
	}
}
