package dson

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TypeFloat64 is the user-defined marker for the integer-scaled double
// codec below. This resolves the open question of how DSON represents
// floating point: rather than a mantissa+exponent scheme, a double is
// scaled by floatScale and truncated to an int64, matching the original's
// GPS-coordinate-precision convention. It is registered as an ordinary user
// type, not a reserved one.
const TypeFloat64 TypeMarker = markerFloor + 2

// floatScale is the fixed-point scale applied before truncation to int64.
// 1e7 gives seven decimal digits of precision, enough for GPS-grade
// coordinates, which is what this encoding was designed for.
const floatScale = 10000000.0

func init() {
	RegisterConverter(TypeFloat64, flip64, flip64)
}

// NewFloat64 creates a value wrapping a double using the integer-scaled
// codec. Values outside what int64 can hold after scaling saturate to
// MaxInt64/MinInt64 rather than silently wrapping.
func NewFloat64(key int32, v float64) *Dson {
	scaled := scaleToInt64(v)
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, uint64(scaled))
	return NewValue(key, TypeFloat64, buf)
}

func scaleToInt64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	scaled := v * floatScale
	if scaled >= math.MaxInt64 {
		return math.MaxInt64
	}
	if scaled <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(scaled)
}

// ToFloat64 reads obj back out as a double.
func ToFloat64(obj DsonObj) (float64, error) {
	buf, typ, err := payloadOf(obj)
	if err != nil {
		return 0, err
	}
	if typ != TypeFloat64 || len(buf) < 8 {
		return 0, fmt.Errorf("%w: not a float64", ErrMisuse)
	}
	scaled := int64(binary.NativeEndian.Uint64(buf))
	return float64(scaled) / floatScale, nil
}
