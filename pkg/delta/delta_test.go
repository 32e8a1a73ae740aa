package delta

import (
	"path/filepath"
	"testing"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/snapshot"
	"github.com/malbeclabs/grizzly/pkg/table"
	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/stretchr/testify/require"
)

func newEventsTable(t *testing.T, rows int) *table.Table {
	t.Helper()
	tb := table.New("events", table.Schema{
		{Name: "id", DataType: value.TypeInt32},
	})
	for i := 0; i < rows; i++ {
		require.NoError(t, tb.InsertRow([]value.Value{value.Int32(int32(i))}))
	}
	return tb
}

func TestGrizzly_Delta_SaveIncrementalNoChanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := filepath.Join(dir, "db.snapshot")
	ckpt := filepath.Join(dir, "checkpoint.json")

	tb := newEventsTable(t, 2)
	require.NoError(t, snapshot.Save([]*table.Table{tb}, base, ckpt))

	err := SaveIncremental([]*table.Table{tb}, base, filepath.Join(dir, "d1.delta"))
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.NoChanges))
}

func TestGrizzly_Delta_SaveThenApplyIncremental(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := filepath.Join(dir, "db.snapshot")
	ckpt := filepath.Join(dir, "checkpoint.json")

	writer := newEventsTable(t, 2)
	require.NoError(t, snapshot.Save([]*table.Table{writer}, base, ckpt))

	require.NoError(t, writer.InsertRow([]value.Value{value.Int32(100)}))
	require.NoError(t, writer.InsertRow([]value.Value{value.Int32(101)}))

	deltaPath := filepath.Join(dir, "d1.delta")
	require.NoError(t, SaveIncremental([]*table.Table{writer}, base, deltaPath))

	reader := newEventsTable(t, 2) // mirrors the state at base snapshot time
	require.NoError(t, ApplyIncremental([]*table.Table{reader}, base, deltaPath))
	require.Equal(t, 4, reader.RowCount)
	v, err := reader.Columns[0].Get(3)
	require.NoError(t, err)
	require.Equal(t, int32(101), v.AsInt32())
}

func TestGrizzly_Delta_ApplyIncrementalRejectsWrongBase(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := filepath.Join(dir, "db.snapshot")
	ckpt := filepath.Join(dir, "checkpoint.json")

	writer := newEventsTable(t, 2)
	require.NoError(t, snapshot.Save([]*table.Table{writer}, base, ckpt))
	require.NoError(t, writer.InsertRow([]value.Value{value.Int32(100)}))

	deltaPath := filepath.Join(dir, "d1.delta")
	require.NoError(t, SaveIncremental([]*table.Table{writer}, base, deltaPath))

	reader := newEventsTable(t, 2)
	err := ApplyIncremental([]*table.Table{reader}, "wrong-base", deltaPath)
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.SnapshotMismatch))
}

func TestGrizzly_Delta_ApplyIncrementalRejectsStaleRowCount(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := filepath.Join(dir, "db.snapshot")
	ckpt := filepath.Join(dir, "checkpoint.json")

	writer := newEventsTable(t, 2)
	require.NoError(t, snapshot.Save([]*table.Table{writer}, base, ckpt))
	require.NoError(t, writer.InsertRow([]value.Value{value.Int32(100)}))

	deltaPath := filepath.Join(dir, "d1.delta")
	require.NoError(t, SaveIncremental([]*table.Table{writer}, base, deltaPath))

	reader := newEventsTable(t, 3) // already diverged from the base snapshot's row count
	err := ApplyIncremental([]*table.Table{reader}, base, deltaPath)
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.SnapshotOutOfDate))
}

func TestGrizzly_Delta_CompactionTriggersAfterFiveDeltas(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := filepath.Join(dir, "db.snapshot")
	ckpt := filepath.Join(dir, "checkpoint.json")

	writer := newEventsTable(t, 1)
	require.NoError(t, snapshot.Save([]*table.Table{writer}, base, ckpt))

	for i := 0; i < CompactionThreshold; i++ {
		require.NoError(t, writer.InsertRow([]value.Value{value.Int32(int32(i))}))
		deltaPath := filepath.Join(dir, "d.delta")
		require.NoError(t, SaveIncremental([]*table.Table{writer}, base, deltaPath))
	}

	m, err := snapshot.LoadManifest(base)
	require.NoError(t, err)
	require.Equal(t, snapshot.SnapshotTypeFull, m.SnapshotType)
	require.Empty(t, m.Deltas)
	require.Equal(t, writer.RowCount, m.TableCounts["events"])
}
