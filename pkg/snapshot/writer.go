package snapshot

import (
	"os"
	"time"

	"github.com/malbeclabs/grizzly/pkg/checkpoint"
	"github.com/malbeclabs/grizzly/pkg/codec"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/metrics"
	"github.com/malbeclabs/grizzly/pkg/table"
)

// ColumnMetadata summarizes one column's codec choice and size ratio,
// written into the lakehouse per-table JSON metadata.
type ColumnMetadata struct {
	Name             string  `json:"name"`
	Codec            string  `json:"codec"`
	OriginalSize     int     `json:"original_size"`
	CompressedSize   int     `json:"compressed_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// TableMetadata is the per-table JSON document under
// {path}.lakehouse/metadata/{name}.json.
type TableMetadata struct {
	Name     string           `json:"name"`
	RowCount int              `json:"row_count"`
	Columns  []ColumnMetadata `json:"columns"`
}

// Save writes tables to path following spec §4.8: header, per-table
// records (schema, codec-compressed columns, index descriptors), a
// lakehouse metadata directory, and a manifest written last so readers
// never observe a torn state. Save writes and clears per-table progress
// records in the checkpoint at ckptPath; it does not read an existing
// checkpoint and does not resume from one.
//
// Resume note: the checkpoint records which table write was last
// in-progress, but the snapshot file itself is a flat append-only
// stream with no recorded byte offsets, so a crash mid-table leaves
// the file truncated at an unknown point. The only state that can be
// trusted on restart is "a previous attempt did not finish" — Save
// therefore always restarts the file from scratch on a fresh call
// (the checkpoint is still written and cleared around each table, so
// an external caller polling the checkpoint file observes accurate
// per-table progress; this implementation does not attempt to splice
// completed table bytes from a half-written prior file).
func Save(tables []*table.Table, path, ckptPath string) (err error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotSaveDuration.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.SnapshotSaveTotal.WithLabelValues(status).Inc()
	}()

	store := checkpoint.New(ckptPath)

	f, err := os.Create(path)
	if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "create snapshot file")
	}
	defer f.Close()

	var header []byte
	header = append(header, Magic[:]...)
	header = putUint16(header, Version)
	header = putString(header, "grizzly") // dbname; caller-level naming is out of scope here
	header = putUint32(header, uint32(len(tables)))
	if _, err := f.Write(header); err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write snapshot header")
	}

	tableMetas := make([]TableMetadata, 0, len(tables))
	for _, t := range tables {
		if err := store.Write(checkpoint.Record{Task: "save", Step: "writeTable", Table: t.Name, Status: checkpoint.StatusInProgress}); err != nil {
			return err
		}

		meta, err := writeTable(f, t)
		if err != nil {
			return err
		}
		tableMetas = append(tableMetas, meta)

		if err := store.Write(checkpoint.Record{Task: "save", Step: "writeTable", Table: t.Name, Status: checkpoint.StatusCompleted}); err != nil {
			return err
		}
	}

	if err := store.Clear(); err != nil {
		return err
	}

	if err := writeLakehouseDir(path, tableMetas); err != nil {
		return err
	}

	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		counts[t.Name] = t.RowCount
	}
	return writeManifest(path, Manifest{
		SnapshotType: SnapshotTypeFull,
		TableCounts:  counts,
		Deltas:       nil,
	})
}

func writeTable(f *os.File, t *table.Table) (TableMetadata, error) {
	var buf []byte
	buf = putString(buf, t.Name)
	buf = putUint32(buf, uint32(len(t.Schema)))
	for _, cs := range t.Schema {
		buf = putString(buf, cs.Name)
		buf = append(buf, byte(cs.DataType))
		buf = putUint16(buf, uint16(cs.VectorDim))
	}
	buf = putUint64(buf, uint64(t.RowCount))
	if _, err := f.Write(buf); err != nil {
		return TableMetadata{}, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write table header")
	}

	meta := TableMetadata{Name: t.Name, RowCount: t.RowCount}
	for i, col := range t.Columns {
		tag := codec.ChooseCodec(col)
		blob, err := codec.Encode(col, tag)
		if err != nil {
			return TableMetadata{}, err
		}
		var colBuf []byte
		colBuf = append(colBuf, byte(tag))
		colBuf = putUint32(colBuf, uint32(len(blob)))
		colBuf = append(colBuf, blob...)
		if _, err := f.Write(colBuf); err != nil {
			return TableMetadata{}, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write column blob")
		}

		originalSize := col.Len() * t.Schema[i].DataType.FixedWidth()
		ratio := 1.0
		if originalSize > 0 {
			ratio = float64(len(blob)) / float64(originalSize)
		}
		meta.Columns = append(meta.Columns, ColumnMetadata{
			Name:             col.Name,
			Codec:            tag.String(),
			OriginalSize:     originalSize,
			CompressedSize:   len(blob),
			CompressionRatio: ratio,
		})
	}

	btreeDescs := t.BTreeIndexDescriptors()
	compositeDescs := t.CompositeIndexDescriptors()
	var idxBuf []byte
	idxBuf = putUint32(idxBuf, uint32(len(btreeDescs)))
	for _, d := range btreeDescs {
		idxBuf = putString(idxBuf, d.Name)
		idxBuf = putString(idxBuf, d.Column)
	}
	idxBuf = putUint32(idxBuf, uint32(len(compositeDescs)))
	for _, d := range compositeDescs {
		idxBuf = putString(idxBuf, d.Name)
		idxBuf = putUint32(idxBuf, uint32(len(d.Columns)))
		for _, c := range d.Columns {
			idxBuf = putString(idxBuf, c)
		}
	}
	if _, err := f.Write(idxBuf); err != nil {
		return TableMetadata{}, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write index descriptors")
	}

	return meta, nil
}
