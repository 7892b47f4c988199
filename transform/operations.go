package transform

import (
	"maps"
	"math"
	"slices"
)

// OperationSpec describes single CSS transform function.
type OperationSpec struct {
	// Required is the minimal number of arguments which must be present.
	Required int
	// Defaults has one entry per parameter, its length is the arity. Entries
	// for required parameters are never used.
	Defaults []float64
	// Angles is set when every parameter is an angle.
	Angles bool
	// Fill, when present, replaces Defaults for missing optional parameters.
	// It receives supplied values and returns complete parameter list.
	Fill func(params []float64) []float64
	// Matrix builds transformation matrix from complete parameter list.
	Matrix func(params []float64) Matrix4
}

// Arity returns total number of parameters the operation accepts.
func (s OperationSpec) Arity() int {
	return len(s.Defaults)
}

// complete fills missing trailing parameters.
func (s OperationSpec) complete(params []float64) []float64 {
	if s.Fill != nil {
		return s.Fill(params)
	}
	out := make([]float64, 0, s.Arity())
	out = append(out, params...)
	for len(out) < s.Arity() {
		out = append(out, s.Defaults[len(out)])
	}
	return out
}

func degToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func translation(x, y, z float64) Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

func scaling(x, y, z float64) Matrix4 {
	return Matrix4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

func rotationZ(degrees float64) Matrix4 {
	rad := degToRad(degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix4{
		cos, sin, 0, 0,
		-sin, cos, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func rotationX(degrees float64) Matrix4 {
	rad := degToRad(degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix4{
		1, 0, 0, 0,
		0, cos, sin, 0,
		0, -sin, cos, 0,
		0, 0, 0, 1,
	}
}

func rotationY(degrees float64) Matrix4 {
	rad := degToRad(degrees)
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix4{
		cos, 0, -sin, 0,
		0, 1, 0, 0,
		sin, 0, cos, 0,
		0, 0, 0, 1,
	}
}

func skewing(x, y float64) Matrix4 {
	return Matrix4{
		1, math.Tan(degToRad(x)), 0, 0,
		math.Tan(degToRad(y)), 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

var operations = map[string]OperationSpec{
	"translate": {
		// 2D only, z is always 0
		Required: 2,
		Defaults: []float64{0, 0},
		Matrix:   func(p []float64) Matrix4 { return translation(p[0], p[1], 0) },
	},
	"translateX": {
		Required: 1,
		Defaults: []float64{0},
		Matrix:   func(p []float64) Matrix4 { return translation(p[0], 0, 0) },
	},
	"translateY": {
		Required: 1,
		Defaults: []float64{0},
		Matrix:   func(p []float64) Matrix4 { return translation(0, p[0], 0) },
	},
	"translateZ": {
		Required: 1,
		Defaults: []float64{0},
		Matrix:   func(p []float64) Matrix4 { return translation(0, 0, p[0]) },
	},
	"translate3d": {
		Required: 3,
		Defaults: []float64{0, 0, 0},
		Matrix:   func(p []float64) Matrix4 { return translation(p[0], p[1], p[2]) },
	},
	"scale": {
		Required: 1,
		Defaults: []float64{1, 1},
		// scale(sx) is scale(sx, sx)
		Fill: func(p []float64) []float64 {
			if len(p) == 1 {
				return []float64{p[0], p[0]}
			}
			return slices.Clone(p)
		},
		Matrix: func(p []float64) Matrix4 { return scaling(p[0], p[1], 1) },
	},
	"scaleX": {
		Required: 1,
		Defaults: []float64{1},
		Matrix:   func(p []float64) Matrix4 { return scaling(p[0], 1, 1) },
	},
	"scaleY": {
		Required: 1,
		Defaults: []float64{1},
		Matrix:   func(p []float64) Matrix4 { return scaling(1, p[0], 1) },
	},
	"scaleZ": {
		Required: 1,
		Defaults: []float64{1},
		Matrix:   func(p []float64) Matrix4 { return scaling(1, 1, p[0]) },
	},
	"scale3d": {
		Required: 3,
		Defaults: []float64{1, 1, 1},
		Matrix:   func(p []float64) Matrix4 { return scaling(p[0], p[1], p[2]) },
	},
	"rotate": {
		Required: 1,
		Defaults: []float64{0},
		Angles:   true,
		Matrix:   func(p []float64) Matrix4 { return rotationZ(p[0]) },
	},
	"rotateX": {
		Required: 1,
		Defaults: []float64{0},
		Angles:   true,
		Matrix:   func(p []float64) Matrix4 { return rotationX(p[0]) },
	},
	"rotateY": {
		Required: 1,
		Defaults: []float64{0},
		Angles:   true,
		Matrix:   func(p []float64) Matrix4 { return rotationY(p[0]) },
	},
	"skew": {
		Required: 1,
		Defaults: []float64{0, 0},
		Angles:   true,
		Matrix:   func(p []float64) Matrix4 { return skewing(p[0], p[1]) },
	},
	"skewX": {
		Required: 1,
		Defaults: []float64{0},
		Angles:   true,
		Matrix:   func(p []float64) Matrix4 { return skewing(0, p[0]) },
	},
	"skewY": {
		Required: 1,
		Defaults: []float64{0},
		Angles:   true,
		Matrix:   func(p []float64) Matrix4 { return skewing(p[0], 0) },
	},
	"matrix": {
		Required: 6,
		Defaults: []float64{1, 0, 0, 1, 0, 0},
		Matrix: func(p []float64) Matrix4 {
			a, b, c, d, tx, ty := p[0], p[1], p[2], p[3], p[4], p[5]
			return Matrix4{
				a, b, 0, 0,
				c, d, 0, 0,
				0, 0, 1, 0,
				tx, ty, 0, 1,
			}
		},
	},
	"matrix3d": {
		Required: 16,
		Defaults: []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		Matrix:   func(p []float64) Matrix4 { return Matrix4(p) },
	},
}

func init() {
	// rotateZ is the same rotation as rotate
	rz := operations["rotate"]
	operations["rotateZ"] = rz
}

// Lookup returns specification of the named operation. Names are case
// sensitive.
func Lookup(name string) (OperationSpec, bool) {
	spec, ok := operations[name]
	return spec, ok
}

// Names returns sorted list of all supported operation names.
func Names() []string {
	return slices.Sorted(maps.Keys(operations))
}
