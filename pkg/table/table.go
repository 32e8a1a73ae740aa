// Package table implements Table (spec §4.6 C7): a named, schema'd
// collection of parallel Columns with owned B-tree and composite-hash
// indexes that stay consistent with row contents after every insert.
package table

import (
	"sort"
	"strings"

	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/index/btree"
	"github.com/malbeclabs/grizzly/pkg/index/hash"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// Table holds a schema, its parallel Columns, and every index
// registered against it. Invariant: all columns have identical length
// == RowCount; every index is consistent with row contents after any
// successful InsertRow.
type Table struct {
	Name     string
	Schema   Schema
	Columns  []*column.Column
	RowCount int

	btreeIndexes     map[string]*btree.Index // index name -> index
	btreeByColumn    map[string]string       // column name -> index name, for IndexAlreadyExists checks
	compositeIndexes map[string]*hash.Index  // index name -> index
	compositeBySig   map[string]string       // signature -> index name
}

// New constructs an empty table for the given schema.
func New(name string, schema Schema) *Table {
	cols := make([]*column.Column, len(schema))
	for i, cs := range schema {
		cols[i] = column.New(cs.Name, cs.DataType, cs.VectorDim)
	}
	return &Table{
		Name:             name,
		Schema:           schema,
		Columns:          cols,
		btreeIndexes:     make(map[string]*btree.Index),
		btreeByColumn:    make(map[string]string),
		compositeIndexes: make(map[string]*hash.Index),
		compositeBySig:   make(map[string]string),
	}
}

// InsertRow appends one row. values must align 1:1 with the schema.
// The column-append phase is validated up front and committed
// atomically: if any value fails a type/dimension check, no column is
// mutated (documented choice for spec §4.6's partial-failure question).
func (t *Table) InsertRow(values []value.Value) error {
	if len(values) != len(t.Columns) {
		return grizzlyerr.Newf(grizzlyerr.TypeMismatch, "table %q expects %d values, got %d", t.Name, len(t.Columns), len(values))
	}
	for i, v := range values {
		if err := v.CheckType(t.Schema[i].DataType); err != nil {
			return err
		}
		if t.Schema[i].DataType == value.TypeVector && len(v.AsVector()) != t.Schema[i].VectorDim {
			return grizzlyerr.Newf(grizzlyerr.VectorDimensionMismatch, "column %q expects vector dim %d, got %d", t.Schema[i].Name, t.Schema[i].VectorDim, len(v.AsVector()))
		}
	}

	for i, v := range values {
		if err := t.Columns[i].Append(v); err != nil {
			return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "column append failed after pre-validation")
		}
	}
	rowID := t.RowCount
	t.RowCount++

	for colName, idxName := range t.btreeByColumn {
		pos := t.Schema.IndexOf(colName)
		t.btreeIndexes[idxName].Insert(values[pos], rowID)
	}
	for idxName, idx := range t.compositeIndexes {
		cols := idx.Columns
		keyValues := make([]value.Value, len(cols))
		for i, cn := range cols {
			keyValues[i] = values[t.Schema.IndexOf(cn)]
		}
		t.compositeIndexes[idxName].InsertRow(rowID, keyValues)
	}
	return nil
}

// CreateIndex builds a B-tree index named name over columnName by
// scanning existing rows. Fails IndexAlreadyExists if either the index
// name or the column already has a registered B-tree index.
func (t *Table) CreateIndex(name, columnName string) error {
	if _, ok := t.btreeIndexes[name]; ok {
		return grizzlyerr.Newf(grizzlyerr.IndexAlreadyExists, "btree index %q already exists", name)
	}
	if _, ok := t.btreeByColumn[columnName]; ok {
		return grizzlyerr.Newf(grizzlyerr.IndexAlreadyExists, "column %q already has a btree index", columnName)
	}
	pos := t.Schema.IndexOf(columnName)
	if pos < 0 {
		return grizzlyerr.Newf(grizzlyerr.ColumnNotFound, "column %q not found in table %q", columnName, t.Name)
	}

	idx := btree.New(btree.DefaultBranchingFactor)
	col := t.Columns[pos]
	for i := 0; i < col.Len(); i++ {
		idx.Insert(col.MustGet(i), i)
	}
	t.btreeIndexes[name] = idx
	t.btreeByColumn[columnName] = name
	return nil
}

// CreateCompositeIndex builds a composite hash index named name over
// >= 2 columns. A signature collision (the same column names in the
// same order, joined with "|") yields IndexAlreadyExists; the same
// columns in a different order form a different signature.
func (t *Table) CreateCompositeIndex(name string, columnNames []string) error {
	if len(columnNames) < 2 {
		return grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "composite index %q requires at least 2 columns", name)
	}
	if _, ok := t.compositeIndexes[name]; ok {
		return grizzlyerr.Newf(grizzlyerr.IndexAlreadyExists, "composite index %q already exists", name)
	}
	sig := strings.Join(columnNames, "|")
	if _, ok := t.compositeBySig[sig]; ok {
		return grizzlyerr.Newf(grizzlyerr.IndexAlreadyExists, "composite index over %q already exists", sig)
	}
	for _, cn := range columnNames {
		if t.Schema.IndexOf(cn) < 0 {
			return grizzlyerr.Newf(grizzlyerr.ColumnNotFound, "column %q not found in table %q", cn, t.Name)
		}
	}

	idx := hash.New(columnNames)
	if t.RowCount > 0 {
		positions := make([]int, len(columnNames))
		for i, cn := range columnNames {
			positions[i] = t.Schema.IndexOf(cn)
		}
		for row := 0; row < t.RowCount; row++ {
			keyValues := make([]value.Value, len(columnNames))
			for i, pos := range positions {
				keyValues[i] = t.Columns[pos].MustGet(row)
			}
			idx.InsertRow(row, keyValues)
		}
	}
	t.compositeIndexes[name] = idx
	t.compositeBySig[sig] = name
	return nil
}

// BTreeIndexDescriptor names a registered B-tree index and the column
// it was built over, used by the snapshot writer to emit index
// descriptors and by the loader to replay CreateIndex.
type BTreeIndexDescriptor struct {
	Name   string
	Column string
}

// BTreeIndexDescriptors lists every registered B-tree index.
func (t *Table) BTreeIndexDescriptors() []BTreeIndexDescriptor {
	out := make([]BTreeIndexDescriptor, 0, len(t.btreeByColumn))
	for col, name := range t.btreeByColumn {
		out = append(out, BTreeIndexDescriptor{Name: name, Column: col})
	}
	return out
}

// CompositeIndexDescriptor names a registered composite index and its
// column set, in the order the index was created with.
type CompositeIndexDescriptor struct {
	Name    string
	Columns []string
}

// CompositeIndexDescriptors lists every registered composite index.
func (t *Table) CompositeIndexDescriptors() []CompositeIndexDescriptor {
	out := make([]CompositeIndexDescriptor, 0, len(t.compositeIndexes))
	for name, idx := range t.compositeIndexes {
		out = append(out, CompositeIndexDescriptor{Name: name, Columns: idx.Columns})
	}
	return out
}

// BTreeIndex returns the named B-tree index, or (nil, false).
func (t *Table) BTreeIndex(name string) (*btree.Index, bool) {
	idx, ok := t.btreeIndexes[name]
	return idx, ok
}

// CompositeIndex returns the named composite hash index, or (nil, false).
func (t *Table) CompositeIndex(name string) (*hash.Index, bool) {
	idx, ok := t.compositeIndexes[name]
	return idx, ok
}

// SortBy reorders every column in place by columnName's values.
// Invariant (documented, naive behavior): every index is dropped and
// rebuilt from scratch after the reorder, rather than permuted in place.
func (t *Table) SortBy(columnName string, ascending bool) error {
	pos := t.Schema.IndexOf(columnName)
	if pos < 0 {
		return grizzlyerr.Newf(grizzlyerr.ColumnNotFound, "column %q not found in table %q", columnName, t.Name)
	}
	keyCol := t.Columns[pos]
	perm := make([]int, t.RowCount)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		c, _ := keyCol.MustGet(perm[i]).Compare(keyCol.MustGet(perm[j]))
		if ascending {
			return c < 0
		}
		return c > 0
	})

	for i, cs := range t.Schema {
		old := t.Columns[i]
		rebuilt := column.New(cs.Name, cs.DataType, cs.VectorDim)
		for _, p := range perm {
			if err := rebuilt.Append(old.MustGet(p).Clone()); err != nil {
				return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "sortBy column rebuild failed")
			}
		}
		t.Columns[i] = rebuilt
	}

	for colName, idxName := range t.btreeByColumn {
		cpos := t.Schema.IndexOf(colName)
		idx := btree.New(btree.DefaultBranchingFactor)
		col := t.Columns[cpos]
		for i := 0; i < col.Len(); i++ {
			idx.Insert(col.MustGet(i), i)
		}
		t.btreeIndexes[idxName] = idx
	}
	for idxName, idx := range t.compositeIndexes {
		cols := idx.Columns
		rebuilt := hash.New(cols)
		positions := make([]int, len(cols))
		for i, cn := range cols {
			positions[i] = t.Schema.IndexOf(cn)
		}
		for row := 0; row < t.RowCount; row++ {
			keyValues := make([]value.Value, len(cols))
			for i, p := range positions {
				keyValues[i] = t.Columns[p].MustGet(row)
			}
			rebuilt.InsertRow(row, keyValues)
		}
		t.compositeIndexes[idxName] = rebuilt
	}
	return nil
}
