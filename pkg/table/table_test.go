package table

import (
	"testing"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/stretchr/testify/require"
)

func newTestSchema() Schema {
	return Schema{
		{Name: "id", DataType: value.TypeInt32},
		{Name: "name", DataType: value.TypeString},
	}
}

func TestGrizzly_Table_InsertRowAppendsToAllColumns(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(1), value.String("alice")}))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(2), value.String("bob")}))
	require.Equal(t, 2, tb.RowCount)
	require.Equal(t, 2, tb.Columns[0].Len())
	require.Equal(t, 2, tb.Columns[1].Len())
}

func TestGrizzly_Table_InsertRowWrongArity(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	err := tb.InsertRow([]value.Value{value.Int32(1)})
	require.Error(t, err)
}

func TestGrizzly_Table_InsertRowRejectsPartiallyOnTypeMismatch(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	err := tb.InsertRow([]value.Value{value.Int32(1), value.Int32(2)})
	require.Error(t, err)
	require.Equal(t, 0, tb.RowCount)
	require.Equal(t, 0, tb.Columns[0].Len())
	require.Equal(t, 0, tb.Columns[1].Len())
}

func TestGrizzly_Table_CreateIndexAndSearch(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(1), value.String("alice")}))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(2), value.String("bob")}))
	require.NoError(t, tb.CreateIndex("idx_id", "id"))

	idx, ok := tb.BTreeIndex("idx_id")
	require.True(t, ok)
	require.Equal(t, []int{1}, idx.Search(value.Int32(2)))

	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(3), value.String("carol")}))
	require.Equal(t, []int{2}, idx.Search(value.Int32(3)))
}

func TestGrizzly_Table_CreateIndexAlreadyExists(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	require.NoError(t, tb.CreateIndex("idx_id", "id"))
	err := tb.CreateIndex("idx_id", "name")
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.IndexAlreadyExists))

	err = tb.CreateIndex("idx_id2", "id")
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.IndexAlreadyExists))
}

func TestGrizzly_Table_CreateCompositeIndexRequiresTwoColumns(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	err := tb.CreateCompositeIndex("c1", []string{"id"})
	require.Error(t, err)
}

func TestGrizzly_Table_CompositeIndexFansOutOnInsert(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	require.NoError(t, tb.CreateCompositeIndex("c1", []string{"id", "name"}))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(1), value.String("alice")}))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(2), value.String("bob")}))

	idx, ok := tb.CompositeIndex("c1")
	require.True(t, ok)
	require.Equal(t, []int{0}, idx.Lookup([]value.Value{value.Int32(1), value.String("alice")}))
}

func TestGrizzly_Table_SortByReordersColumnsAndRebuildsIndexes(t *testing.T) {
	t.Parallel()
	tb := New("people", newTestSchema())
	require.NoError(t, tb.CreateIndex("idx_id", "id"))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(3), value.String("carol")}))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(1), value.String("alice")}))
	require.NoError(t, tb.InsertRow([]value.Value{value.Int32(2), value.String("bob")}))

	require.NoError(t, tb.SortBy("id", true))

	got0, err := tb.Columns[0].Get(0)
	require.NoError(t, err)
	require.Equal(t, int32(1), got0.AsInt32())

	idx, ok := tb.BTreeIndex("idx_id")
	require.True(t, ok)
	require.Equal(t, []int{0}, idx.Search(value.Int32(1)))
	require.Equal(t, []int{2}, idx.Search(value.Int32(3)))
}
