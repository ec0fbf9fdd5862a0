package svgicon

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D represents the affine transform
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// Its field layout matches rasterx.Matrix2D, so backends may convert it directly.
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{A: 1, D: 1}

// Mult returns m * b.
func (m Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*b.A + m.C*b.B,
		B: m.B*b.A + m.D*b.B,
		C: m.A*b.C + m.C*b.D,
		D: m.B*b.C + m.D*b.D,
		E: m.A*b.E + m.C*b.F + m.E,
		F: m.B*b.E + m.D*b.F + m.F,
	}
}

// Translate returns m with a translation appended.
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, D: 1, E: x, F: y})
}

// Scale returns m with a scaling appended.
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: x, D: y})
}

// Rotate returns m with a rotation of theta radians appended.
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return m.Mult(Matrix2D{A: c, B: s, C: -s, D: c})
}

// SkewX returns m with a horizontal skew of theta radians appended.
func (m Matrix2D) SkewX(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, C: math.Tan(theta), D: 1})
}

// SkewY returns m with a vertical skew of theta radians appended.
func (m Matrix2D) SkewY(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, B: math.Tan(theta), D: 1})
}

// Invert returns the inverse of m. A singular matrix is returned unchanged.
func (m Matrix2D) Invert() Matrix2D {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return m
	}
	return Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}
}

// Transform applies m to the point (x, y).
func (m Matrix2D) Transform(x, y float64) (float64, float64) {
	return x*m.A + y*m.C + m.E, x*m.B + y*m.D + m.F
}

// TFixed applies m to a fixed point.
func (m Matrix2D) TFixed(p fixed.Point26_6) fixed.Point26_6 {
	x, y := m.Transform(float64(p.X)/64, float64(p.Y)/64)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func (m Matrix2D) trMove(op MoveTo) fixed.Point26_6 { return m.TFixed(fixed.Point26_6(op)) }

func (m Matrix2D) trLine(op LineTo) fixed.Point26_6 { return m.TFixed(fixed.Point26_6(op)) }

func (m Matrix2D) trQuad(op QuadTo) (fixed.Point26_6, fixed.Point26_6) {
	return m.TFixed(op[0]), m.TFixed(op[1])
}

func (m Matrix2D) trCubic(op CubicTo) (fixed.Point26_6, fixed.Point26_6, fixed.Point26_6) {
	return m.TFixed(op[0]), m.TFixed(op[1]), m.TFixed(op[2])
}

// matrixAdder appends to a path after applying M.
type matrixAdder struct {
	M    Matrix2D
	path *Path
}

func (a *matrixAdder) Start(p fixed.Point26_6) { a.path.Start(a.M.TFixed(p)) }

func (a *matrixAdder) Line(p fixed.Point26_6) { a.path.Line(a.M.TFixed(p)) }

func (a *matrixAdder) QuadBezier(b, c fixed.Point26_6) {
	a.path.QuadBezier(a.M.TFixed(b), a.M.TFixed(c))
}

func (a *matrixAdder) CubeBezier(b, c, d fixed.Point26_6) {
	a.path.CubeBezier(a.M.TFixed(b), a.M.TFixed(c), a.M.TFixed(d))
}

// meanScale is the geometric mean of the scale factors of m,
// used to map user space lengths such as stroke widths.
func (m Matrix2D) meanScale() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}
