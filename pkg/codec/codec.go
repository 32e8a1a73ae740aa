// Package codec implements Grizzly's per-column compression codecs
// (spec §3, §4.3 C4): RAW, RLE, DICTIONARY, BITPACK, plus the codec
// chooser consulted once per column at snapshot time.
package codec

import (
	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
)

// Tag is the codec tag byte, stable per spec §6.
type Tag uint8

const (
	Raw Tag = iota
	RLE
	Dictionary
	Bitpack
)

func (t Tag) String() string {
	switch t {
	case Raw:
		return "RAW"
	case RLE:
		return "RLE"
	case Dictionary:
		return "DICTIONARY"
	case Bitpack:
		return "BITPACK"
	default:
		return "UNKNOWN"
	}
}

// Encode encodes col's [0, length) rows with the given codec.
func Encode(col *column.Column, tag Tag) ([]byte, error) {
	switch tag {
	case Raw:
		return encodeRaw(col)
	case RLE:
		return encodeRLE(col)
	case Dictionary:
		return encodeDictionary(col)
	case Bitpack:
		return encodeBitpack(col)
	default:
		return nil, grizzlyerr.Newf(grizzlyerr.InternalError, "unknown codec tag %d", tag)
	}
}

// Decode reconstructs a fresh Column of dataType (and vectorDim, for
// vector columns) from blob, which must contain exactly `length` rows
// encoded with tag.
func Decode(blob []byte, tag Tag, length int, name string, dataType value.DataType, vectorDim int) (*column.Column, error) {
	switch tag {
	case Raw:
		return decodeRaw(blob, length, name, dataType, vectorDim)
	case RLE:
		return decodeRLE(blob, length, name, dataType, vectorDim)
	case Dictionary:
		return decodeDictionary(blob, length, name, dataType, vectorDim)
	case Bitpack:
		return decodeBitpack(blob, length, name, dataType, vectorDim)
	default:
		return nil, grizzlyerr.Newf(grizzlyerr.InternalError, "unknown codec tag %d", tag)
	}
}
