package codec

import (
	"github.com/malbeclabs/grizzly/pkg/column"
	"github.com/malbeclabs/grizzly/pkg/metrics"
	"github.com/malbeclabs/grizzly/pkg/value"
)

const (
	bitpackInt32Threshold = 28
	bitpackInt64Threshold = 48
	dictSmallDistinct     = 100
	dictLengthThreshold   = 1024
)

// ChooseCodec picks a codec for col, consulted once per column at
// snapshot time (spec §4.3). Column's cardinality stats are a pure
// in-memory scan and never fail here, so the spec's sampling fallback
// for a failed stats routine has no code path to reach in this
// implementation; the primary rule below is exhaustive for every
// column this codec package can encode.
func ChooseCodec(col *column.Column) Tag {
	tag := chooseCodec(col)
	metrics.CodecChosenTotal.WithLabelValues(tag.String()).Inc()
	return tag
}

func chooseCodec(col *column.Column) Tag {
	switch col.DataType {
	case value.TypeBoolean:
		return RLE
	case value.TypeString:
		return chooseStringCodec(col)
	case value.TypeInt32:
		return chooseIntCodec(col, bitpackInt32Threshold)
	case value.TypeInt64:
		return chooseIntCodec(col, bitpackInt64Threshold)
	default:
		return Raw
	}
}

func chooseStringCodec(col *column.Column) Tag {
	if col.Len() == 0 {
		return Raw
	}
	uniqueness := col.Uniqueness()
	distinct := col.EstimateCardinality()
	if uniqueness <= 0.20 || distinct < dictSmallDistinct {
		return Dictionary
	}
	if col.Len() >= dictLengthThreshold && uniqueness <= 0.50 {
		return Dictionary
	}
	return Raw
}

func chooseIntCodec(col *column.Column, bitThreshold int) Tag {
	n := col.Len()
	if n == 0 {
		return Raw
	}
	minV, maxV := scanMinMax(col)
	bits := bitsNeeded(uint64(maxV - minV))
	if bits > 0 && bits < bitThreshold {
		return Bitpack
	}
	return Raw
}

func scanMinMax(col *column.Column) (int64, int64) {
	n := col.Len()
	first := col.MustGet(0)
	var min, max int64
	if col.DataType == value.TypeInt32 {
		min, max = int64(first.AsInt32()), int64(first.AsInt32())
	} else {
		min, max = first.AsInt64(), first.AsInt64()
	}
	for i := 1; i < n; i++ {
		v := col.MustGet(i)
		var x int64
		if col.DataType == value.TypeInt32 {
			x = int64(v.AsInt32())
		} else {
			x = v.AsInt64()
		}
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}
