package codec

import (
	"testing"

	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
	"github.com/stretchr/testify/require"
)

func TestGrizzly_Codec_BitpackInt32Roundtrip(t *testing.T) {
	t.Parallel()
	c := column.New("x", value.TypeInt32, 0)
	for _, v := range []int32{1000, 1010, 1020} {
		require.NoError(t, c.Append(value.Int32(v)))
	}
	require.Equal(t, Bitpack, ChooseCodec(c))

	blob, err := Encode(c, Bitpack)
	require.NoError(t, err)
	require.Equal(t, uint8(5), blob[0]) // bits needed for delta range [0,20]

	decoded, err := Decode(blob, Bitpack, c.Len(), "x", value.TypeInt32, 0)
	require.NoError(t, err)
	for i := 0; i < c.Len(); i++ {
		got, err := decoded.Get(i)
		require.NoError(t, err)
		want, err := c.Get(i)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	}
}

func TestGrizzly_Codec_BitpackAllEqualValuesRoundtrip(t *testing.T) {
	t.Parallel()
	c := column.New("x", value.TypeInt32, 0)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Append(value.Int32(42)))
	}
	// An all-equal column's delta range is 0, so ChooseCodec picks Raw;
	// BITPACK is only exercised here when forced directly.
	require.Equal(t, Raw, ChooseCodec(c))

	blob, err := Encode(c, Bitpack)
	require.NoError(t, err)
	require.Equal(t, uint8(1), blob[0]) // all-equal still emits 1 bit per row

	decoded, err := Decode(blob, Bitpack, c.Len(), "x", value.TypeInt32, 0)
	require.NoError(t, err)
	for i := 0; i < c.Len(); i++ {
		got, err := decoded.Get(i)
		require.NoError(t, err)
		want, err := c.Get(i)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	}
}

func TestGrizzly_Codec_DictionaryStringRoundtrip(t *testing.T) {
	t.Parallel()
	c := column.New("name", value.TypeString, 0)
	for _, s := range []string{"apple", "banana", "apple", "cherry", "banana"} {
		require.NoError(t, c.Append(value.String(s)))
	}

	blob, err := encodeDictionary(c)
	require.NoError(t, err)

	dictLen := leU32(blob[0:4])
	require.Equal(t, uint32(3), dictLen)

	decoded, err := decodeDictionary(blob, c.Len(), "name", value.TypeString, 0)
	require.NoError(t, err)
	for i := 0; i < c.Len(); i++ {
		got, err := decoded.Get(i)
		require.NoError(t, err)
		want, err := c.Get(i)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	}
}

func TestGrizzly_Codec_DictionaryInvalidIndex(t *testing.T) {
	t.Parallel()
	// dict_len=1 ("a"), index_count=1, index=5 (out of range).
	blob := []byte{
		1, 0, 0, 0, // dict_len
		1, 0, 0, 0, 'a', // entry 0: len=1, "a"
		1, 0, 0, 0, // index_count
		5, 0, 0, 0, // index 5, invalid
	}
	_, err := decodeDictionary(blob, 1, "x", value.TypeString, 0)
	require.Error(t, err)
	require.True(t, grizzlyerr.IsKind(err, grizzlyerr.InvalidDictionaryIndex))
}

func TestGrizzly_Codec_RLEBooleanRoundtrip(t *testing.T) {
	t.Parallel()
	c := column.New("flag", value.TypeBoolean, 0)
	for _, b := range []bool{true, true, true, false, false, true} {
		require.NoError(t, c.Append(value.Boolean(b)))
	}
	require.Equal(t, RLE, ChooseCodec(c))

	blob, err := Encode(c, RLE)
	require.NoError(t, err)
	// Three runs: (3,true) (2,false) (1,true) = 3 records * 5 bytes.
	require.Len(t, blob, 15)
	require.Equal(t, uint32(3), leU32(blob[0:4]))
	require.Equal(t, byte(1), blob[4])
	require.Equal(t, uint32(2), leU32(blob[5:9]))
	require.Equal(t, byte(0), blob[9])
	require.Equal(t, uint32(1), leU32(blob[10:14]))
	require.Equal(t, byte(1), blob[14])

	decoded, err := Decode(blob, RLE, c.Len(), "flag", value.TypeBoolean, 0)
	require.NoError(t, err)
	for i := 0; i < c.Len(); i++ {
		got, err := decoded.Get(i)
		require.NoError(t, err)
		want, err := c.Get(i)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	}
}

func TestGrizzly_Codec_RawRoundtripAllScalarTypes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		dataType value.DataType
		values   []value.Value
	}{
		{"f64", value.TypeFloat64, []value.Value{value.Float64(1.5), value.Float64(-2.25)}},
		{"ts", value.TypeTimestamp, []value.Value{value.Timestamp(100), value.Timestamp(200)}},
		{"vec", value.TypeVector, []value.Value{value.Vector([]float32{1, 2, 3}), value.Vector([]float32{4, 5, 6})}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			vectorDim := 0
			if tc.dataType == value.TypeVector {
				vectorDim = 3
			}
			c := column.New(tc.name, tc.dataType, vectorDim)
			for _, v := range tc.values {
				require.NoError(t, c.Append(v))
			}
			blob, err := Encode(c, Raw)
			require.NoError(t, err)
			decoded, err := Decode(blob, Raw, c.Len(), tc.name, tc.dataType, vectorDim)
			require.NoError(t, err)
			for i := 0; i < c.Len(); i++ {
				got, err := decoded.Get(i)
				require.NoError(t, err)
				want, err := c.Get(i)
				require.NoError(t, err)
				require.True(t, want.Equal(got))
			}
		})
	}
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
