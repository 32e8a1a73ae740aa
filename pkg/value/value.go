// Package value implements Value, Grizzly's tagged-union cell type (spec
// §3 C1): equality is type-exact, ordering is defined only within a tag,
// and Hash is a pure function of tag + contents so it is stable across
// process runs (wyhash seeded 0, per spec §4.2).
package value

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/wyhash"
)

// HashSeed is the fixed process-independent seed used for all Value
// hashing, so hashes are reproducible across runs (spec §3).
const HashSeed uint64 = 0

// CustomValue represents the "custom (enum/struct)" variant: a named
// struct of fields, each itself a Value. Grizzly's core does not
// interpret custom values beyond ordering/equality/hashing; the SQL
// engine that defines enum/struct semantics is an out-of-scope
// collaborator.
type CustomValue struct {
	TypeName string
	Fields   map[string]Value
}

// ExceptionValue represents a raised exception cell; it is never
// orderable and most numeric/column operations reject it.
type ExceptionValue struct {
	Kind    string
	Message string
}

// Value is the tagged cell type. Only the field matching Type is valid.
// String and Vector are reference-typed: they may borrow from a
// Column's string_pool / vector_storage and must be cloned with Clone()
// before being retained past the owning Column's lifetime.
type Value struct {
	Type DataType

	i32  int32
	i64  int64
	f32  float32
	f64  float64
	b    bool
	str  string
	ts   int64
	vec  []float32
	cust *CustomValue
	exc  *ExceptionValue
}

func Int32(v int32) Value      { return Value{Type: TypeInt32, i32: v} }
func Int64(v int64) Value      { return Value{Type: TypeInt64, i64: v} }
func Float32(v float32) Value  { return Value{Type: TypeFloat32, f32: v} }
func Float64(v float64) Value  { return Value{Type: TypeFloat64, f64: v} }
func Boolean(v bool) Value     { return Value{Type: TypeBoolean, b: v} }
func String(v string) Value    { return Value{Type: TypeString, str: v} }
func Timestamp(v int64) Value  { return Value{Type: TypeTimestamp, ts: v} }
func Vector(v []float32) Value { return Value{Type: TypeVector, vec: v} }
func Custom(c *CustomValue) Value {
	return Value{Type: TypeCustom, cust: c}
}
func Exception(e *ExceptionValue) Value {
	return Value{Type: TypeException, exc: e}
}

func (v Value) AsInt32() int32            { return v.i32 }
func (v Value) AsInt64() int64            { return v.i64 }
func (v Value) AsFloat32() float32        { return v.f32 }
func (v Value) AsFloat64() float64        { return v.f64 }
func (v Value) AsBool() bool              { return v.b }
func (v Value) AsString() string          { return v.str }
func (v Value) AsTimestamp() int64        { return v.ts }
func (v Value) AsVector() []float32       { return v.vec }
func (v Value) AsCustom() *CustomValue    { return v.cust }
func (v Value) AsException() *ExceptionValue { return v.exc }

// Clone returns a Value that owns its own copy of any borrowed bytes
// (string) or floats (vector), safe to retain past the source Column's
// lifetime.
func (v Value) Clone() Value {
	switch v.Type {
	case TypeString:
		b := make([]byte, len(v.str))
		copy(b, v.str)
		return Value{Type: TypeString, str: string(b)}
	case TypeVector:
		f := make([]float32, len(v.vec))
		copy(f, v.vec)
		return Value{Type: TypeVector, vec: f}
	case TypeCustom:
		fields := make(map[string]Value, len(v.cust.Fields))
		for k, fv := range v.cust.Fields {
			fields[k] = fv.Clone()
		}
		return Custom(&CustomValue{TypeName: v.cust.TypeName, Fields: fields})
	case TypeException:
		e := *v.exc
		return Exception(&e)
	default:
		return v
	}
}

// Equal implements type-exact equality.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeInt32:
		return v.i32 == o.i32
	case TypeInt64:
		return v.i64 == o.i64
	case TypeFloat32:
		return v.f32 == o.f32
	case TypeFloat64:
		return v.f64 == o.f64
	case TypeBoolean:
		return v.b == o.b
	case TypeString:
		return v.str == o.str
	case TypeTimestamp:
		return v.ts == o.ts
	case TypeVector:
		if len(v.vec) != len(o.vec) {
			return false
		}
		for i := range v.vec {
			if v.vec[i] != o.vec[i] {
				return false
			}
		}
		return true
	case TypeCustom:
		return customEqual(v.cust, o.cust)
	case TypeException:
		return v.exc.Kind == o.exc.Kind && v.exc.Message == o.exc.Message
	default:
		return false
	}
}

func customEqual(a, b *CustomValue) bool {
	if a.TypeName != b.TypeName || len(a.Fields) != len(b.Fields) {
		return false
	}
	for k, av := range a.Fields {
		bv, ok := b.Fields[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

// Compare orders v against o. Ordering is defined only for matching
// tags; the second return value is false when the tag differs or the
// type is not orderable (exception). -1/0/1 matches the sign of a
// conventional comparator.
func (v Value) Compare(o Value) (int, bool) {
	if v.Type != o.Type {
		return 0, false
	}
	switch v.Type {
	case TypeInt32:
		return cmpOrdered(v.i32, o.i32), true
	case TypeInt64:
		return cmpOrdered(v.i64, o.i64), true
	case TypeFloat32:
		return cmpOrdered(v.f32, o.f32), true
	case TypeFloat64:
		return cmpOrdered(v.f64, o.f64), true
	case TypeBoolean:
		return cmpOrdered(boolToInt(v.b), boolToInt(o.b)), true
	case TypeString:
		return cmpOrdered(v.str, o.str), true
	case TypeTimestamp:
		return cmpOrdered(v.ts, o.ts), true
	case TypeVector:
		return compareVector(v.vec, o.vec), true
	case TypeCustom:
		return compareCustom(v.cust, o.cust), true
	case TypeException:
		return 0, false
	default:
		return 0, false
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type ordered interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareVector orders lexicographically by shared prefix, then by length.
func compareVector(a, b []float32) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return cmpOrdered(len(a), len(b))
}

// compareCustom orders by field count, then by sorted key names.
func compareCustom(a, b *CustomValue) int {
	if c := cmpOrdered(len(a.Fields), len(b.Fields)); c != 0 {
		return c
	}
	aKeys := sortedKeys(a.Fields)
	bKeys := sortedKeys(b.Fields)
	for i := range aKeys {
		if c := cmpOrdered(aKeys[i], bKeys[i]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Hash returns a stable wyhash(seed=0) of the tag and contents.
func (v Value) Hash() uint64 {
	var buf [9]byte
	buf[0] = byte(v.Type)
	switch v.Type {
	case TypeInt32:
		binary.LittleEndian.PutUint32(buf[1:5], uint32(v.i32))
		return wyhash.Hash(buf[:5], HashSeed)
	case TypeInt64:
		binary.LittleEndian.PutUint64(buf[1:9], uint64(v.i64))
		return wyhash.Hash(buf[:9], HashSeed)
	case TypeFloat32:
		binary.LittleEndian.PutUint32(buf[1:5], math.Float32bits(v.f32))
		return wyhash.Hash(buf[:5], HashSeed)
	case TypeFloat64:
		binary.LittleEndian.PutUint64(buf[1:9], math.Float64bits(v.f64))
		return wyhash.Hash(buf[:9], HashSeed)
	case TypeBoolean:
		buf[1] = byte(boolToInt(v.b))
		return wyhash.Hash(buf[:2], HashSeed)
	case TypeString:
		b := make([]byte, 1+len(v.str))
		b[0] = byte(v.Type)
		copy(b[1:], v.str)
		return wyhash.Hash(b, HashSeed)
	case TypeTimestamp:
		binary.LittleEndian.PutUint64(buf[1:9], uint64(v.ts))
		return wyhash.Hash(buf[:9], HashSeed)
	case TypeVector:
		b := make([]byte, 1+4*len(v.vec))
		b[0] = byte(v.Type)
		for i, f := range v.vec {
			binary.LittleEndian.PutUint32(b[1+4*i:], math.Float32bits(f))
		}
		return wyhash.Hash(b, HashSeed)
	case TypeCustom:
		h := wyhash.Hash([]byte{byte(v.Type)}, HashSeed)
		h = wyhash.Hash([]byte(v.cust.TypeName), h)
		for _, k := range sortedKeys(v.cust.Fields) {
			h = wyhash.Hash([]byte(k), h)
			h ^= v.cust.Fields[k].Hash()
		}
		return h
	case TypeException:
		b := []byte(v.exc.Kind + "\x00" + v.exc.Message)
		full := make([]byte, 1+len(b))
		full[0] = byte(v.Type)
		copy(full[1:], b)
		return wyhash.Hash(full, HashSeed)
	default:
		return wyhash.Hash(buf[:1], HashSeed)
	}
}

// CheckType returns a TypeMismatch error if v is not of type t.
func (v Value) CheckType(t DataType) error {
	if v.Type != t {
		return grizzlyerr.Newf(grizzlyerr.TypeMismatch, "expected %s, got %s", t, v.Type)
	}
	return nil
}

func (v Value) String() string {
	switch v.Type {
	case TypeInt32:
		return fmt.Sprintf("%d", v.i32)
	case TypeInt64:
		return fmt.Sprintf("%d", v.i64)
	case TypeFloat32:
		return fmt.Sprintf("%v", v.f32)
	case TypeFloat64:
		return fmt.Sprintf("%v", v.f64)
	case TypeBoolean:
		return fmt.Sprintf("%v", v.b)
	case TypeString:
		return v.str
	case TypeTimestamp:
		return fmt.Sprintf("ts(%d)", v.ts)
	case TypeVector:
		return fmt.Sprintf("vec(%d)", len(v.vec))
	case TypeCustom:
		return fmt.Sprintf("custom(%s)", v.cust.TypeName)
	case TypeException:
		return fmt.Sprintf("exception(%s: %s)", v.exc.Kind, v.exc.Message)
	default:
		return "?"
	}
}
