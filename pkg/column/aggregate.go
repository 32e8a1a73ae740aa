package column

import (
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/value"
)

func (c *Column) requireNumeric(op string) error {
	switch c.DataType {
	case value.TypeInt32, value.TypeInt64, value.TypeFloat32, value.TypeFloat64:
		return nil
	default:
		return grizzlyerr.Newf(grizzlyerr.UnsupportedOperation, "%s is not supported on column type %s", op, c.DataType)
	}
}

// Sum computes the sum over [0, length), promoting int32 to int64.
func (c *Column) Sum() (value.Value, error) {
	if err := c.requireNumeric("sum"); err != nil {
		return value.Value{}, err
	}
	switch c.DataType {
	case value.TypeInt32:
		var sum int64
		for i := 0; i < c.length; i++ {
			sum += int64(c.MustGet(i).AsInt32())
		}
		return value.Int64(sum), nil
	case value.TypeInt64:
		var sum int64
		for i := 0; i < c.length; i++ {
			sum += c.MustGet(i).AsInt64()
		}
		return value.Int64(sum), nil
	case value.TypeFloat32:
		var sum float64
		for i := 0; i < c.length; i++ {
			sum += float64(c.MustGet(i).AsFloat32())
		}
		return value.Float64(sum), nil
	default: // float64
		var sum float64
		for i := 0; i < c.length; i++ {
			sum += c.MustGet(i).AsFloat64()
		}
		return value.Float64(sum), nil
	}
}

// Avg computes the arithmetic mean, promoted to float64.
func (c *Column) Avg() (value.Value, error) {
	if err := c.requireNumeric("avg"); err != nil {
		return value.Value{}, err
	}
	if c.length == 0 {
		return value.Value{}, grizzlyerr.New(grizzlyerr.EmptyColumn, "avg on empty column")
	}
	sum, err := c.Sum()
	if err != nil {
		return value.Value{}, err
	}
	var total float64
	switch sum.Type {
	case value.TypeInt64:
		total = float64(sum.AsInt64())
	case value.TypeFloat64:
		total = sum.AsFloat64()
	}
	return value.Float64(total / float64(c.length)), nil
}

// Min returns the smallest value in [0, length).
func (c *Column) Min() (value.Value, error) {
	return c.extremum("min", func(cmp int) bool { return cmp < 0 })
}

// Max returns the largest value in [0, length).
func (c *Column) Max() (value.Value, error) {
	return c.extremum("max", func(cmp int) bool { return cmp > 0 })
}

func (c *Column) extremum(op string, better func(cmp int) bool) (value.Value, error) {
	if err := c.requireNumeric(op); err != nil {
		return value.Value{}, err
	}
	if c.length == 0 {
		return value.Value{}, grizzlyerr.Newf(grizzlyerr.EmptyColumn, "%s on empty column", op)
	}
	best := c.MustGet(0)
	for i := 1; i < c.length; i++ {
		v := c.MustGet(i)
		cmp, ok := v.Compare(best)
		if ok && better(cmp) {
			best = v
		}
	}
	return best, nil
}
