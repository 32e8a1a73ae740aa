package table

import "github.com/malbeclabs/grizzly/pkg/value"

// ColumnSchema describes one ordered column of a Table: its name, its
// Value type, and (for vector columns only) its fixed dimension.
type ColumnSchema struct {
	Name      string
	DataType  value.DataType
	VectorDim int
}

// Schema is the ordered column list a Table is built from.
type Schema []ColumnSchema

// ColumnNames returns the schema's column names in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// IndexOf returns the position of name in the schema, or -1.
func (s Schema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Equal reports whether two schemas have identical columns in the
// same order (used by delta application's SchemaMismatch check).
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i].Name != o[i].Name || s[i].DataType != o[i].DataType || s[i].VectorDim != o[i].VectorDim {
			return false
		}
	}
	return true
}
