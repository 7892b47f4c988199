// Package transform resolves CSS transform function lists into a single
// matrix3d() value.
//
// # Supported functions
//
//   - translate, translateX, translateY, translateZ, translate3d
//   - scale, scaleX, scaleY, scaleZ, scale3d
//   - rotate, rotateX, rotateY, rotateZ
//   - skew, skewX, skewY
//   - matrix, matrix3d
//
// Arguments are plain numbers with optional unit suffix which is dropped.
// Angles are degrees unless given in rad, grad or turn.
//
// # Composition
//
// Every function produces a 4x4 matrix, matrices are multiplied left to right
// in declaration order starting from identity:
//
//	acc = Multiply(Multiply(Identity(), m0), m1) ...
//
// and the composite is rendered in storage order with 6 decimal digits.
//
// # Usage
//
//	conv := transform.NewConverter(logger)
//	res, err := conv.Convert("translateX(10px) rotate(90deg)", ".card")
//	if err != nil {
//	    // *transform.MalformedOperationError
//	}
//	fmt.Println(res.Matrix3D)
package transform
