package transform

import (
	"math"
	"strconv"
	"strings"
)

// Matrix4 is a 4x4 homogeneous matrix stored row-major.
type Matrix4 [16]float64

const (
	// precision is number of decimal digits kept when rendering components.
	precision = 6
	// epsilon is the magnitude below which a rounded component renders as 0.
	epsilon = 1e-6
)

// Identity returns the 4x4 identity matrix.
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Multiply returns a*b. Composition always keeps the accumulated matrix on
// the left: result = Multiply(acc, next).
func Multiply(a, b Matrix4) Matrix4 {
	var result Matrix4
	for r := range 4 {
		for c := range 4 {
			var sum float64
			for i := range 4 {
				sum += a[r*4+i] * b[i*4+c]
			}
			result[r*4+c] = sum
		}
	}
	return result
}

// Format renders every component of m rounded to 6 decimal digits. Values
// which round below 1e-6 in magnitude are rendered as "0", integral values
// have no fractional part.
func Format(m Matrix4) [16]string {
	var out [16]string
	for i, v := range m {
		out[i] = FormatNumber(v)
	}
	return out
}

// FormatNumber renders single value the same way Format does.
func FormatNumber(v float64) string {
	rounded := v
	// above 2^53 there is no fractional part and scaling could overflow
	if math.Abs(v) < 1<<53 {
		scale := math.Pow10(precision)
		rounded = math.Round(v*scale) / scale
	}
	if math.Abs(rounded) < epsilon {
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func (m Matrix4) finite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String returns CSS matrix3d() function for the matrix, components are
// emitted in storage order.
func (m Matrix4) String() string {
	values := Format(m)
	return "matrix3d(" + strings.Join(values[:], ", ") + ")"
}
