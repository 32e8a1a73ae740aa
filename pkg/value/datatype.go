package value

// DataType is the tag of a column or Value. Numeric values are stable
// and match the snapshot file's type-tag byte encoding (spec §6).
type DataType uint8

const (
	TypeInt32 DataType = iota
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeBoolean
	TypeString
	TypeTimestamp
	TypeVector
	TypeCustom
	TypeException
)

func (t DataType) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeTimestamp:
		return "timestamp"
	case TypeVector:
		return "vector"
	case TypeCustom:
		return "custom"
	case TypeException:
		return "exception"
	default:
		return "unknown"
	}
}

// FixedWidth returns the row_stride in bytes for fixed-size scalar
// types. Strings and vectors are variable-width and handled out of
// band by Column (string_pool / vector_storage); custom and exception
// values are not stored in dense columns.
func (t DataType) FixedWidth() int {
	switch t {
	case TypeInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeFloat64, TypeTimestamp:
		return 8
	case TypeBoolean:
		return 1
	case TypeString:
		return 4 // stores a uint32 string_pool index
	default:
		return 0
	}
}
