package svgicon

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// This file computes the extent of the drawing, by
// finding the critical points of each segment.

type line [2]fixed.Point26_6

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(l[0])
	p1x, p1y := fixedTof(l[1])
	return bezierLine(p0x, p1x, t), bezierLine(p0y, p1y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type quadBezier [3]fixed.Point26_6

// quadratic polynomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])

	aX, bX := quadraticDerivative(p0x, p1x, p2x)
	aY, bY := quadraticDerivative(p0y, p1y, p2y)

	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	return bezierQuad(p0x, p1x, p2x, t), bezierQuad(p0y, p1y, p2y, t)
}

type cubicBezier [4]fixed.Point26_6

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	p1x, p1y := fixedTof(cu[0])
	c1x, c1y := fixedTof(cu[1])
	c2x, c2y := fixedTof(cu[2])
	p2x, p2y := fixedTof(cu[3])

	aX, bX, cX := cubicDerivative(p1x, c1x, c2x, p2x)
	aY, bY, cY := cubicDerivative(p1y, c1y, c2y, p2y)

	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	p3x, p3y := fixedTof(cu[3])
	return bezierSpline(p0x, p1x, p2x, p3x, t), bezierSpline(p0y, p1y, p2y, p3y, t)
}

// cubic polynomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// derivative of bezierSpline, as at^2 + bt + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

func fixedTof(p fixed.Point26_6) (float64, float64) {
	return float64(p.X) / 64, float64(p.Y) / 64
}

// extent accumulates the bounding box of segments.
type extent struct {
	minX, minY, maxX, maxY float64
}

func emptyExtent() extent {
	return extent{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
}

func (e extent) isEmpty() bool { return e.minX > e.maxX || e.minY > e.maxY }

func (e *extent) addPoint(x, y float64) {
	e.minX = math.Min(x, e.minX)
	e.minY = math.Min(y, e.minY)
	e.maxX = math.Max(x, e.maxX)
	e.maxY = math.Max(y, e.maxY)
}

func (e *extent) addCurve(curve bezier) {
	resX, resY := curve.criticalPoints()
	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		e.addPoint(curve.evaluateCurve(t))
	}
}

func (e *extent) union(o extent) {
	if o.isEmpty() {
		return
	}
	e.addPoint(o.minX, o.minY)
	e.addPoint(o.maxX, o.maxY)
}

func (e extent) bounds() Bounds {
	return Bounds{X: e.minX, Y: e.minY, W: e.maxX - e.minX, H: e.maxY - e.minY}
}

// boundsDrawer implements Filler and Stroker, and records the extent
// of every drawn path. Strokes are widened by half the line width.
type boundsDrawer struct {
	total   *extent
	current extent
	pen     fixed.Point26_6
	margin  float64
}

func (b *boundsDrawer) Clear()                  { b.current = emptyExtent() }
func (b *boundsDrawer) SetWinding(bool)         {}
func (b *boundsDrawer) SetColor(Pattern, float64) {}
func (b *boundsDrawer) Stop(bool)               {}

func (b *boundsDrawer) SetStrokeOptions(options StrokeOptions) {
	b.margin = float64(options.LineWidth) / 64 / 2
}

func (b *boundsDrawer) Start(a fixed.Point26_6) {
	b.pen = a
	b.current.addPoint(fixedTof(a))
}

func (b *boundsDrawer) Line(p fixed.Point26_6) {
	b.current.addCurve(line{b.pen, p})
	b.pen = p
}

func (b *boundsDrawer) QuadBezier(p1, p2 fixed.Point26_6) {
	b.current.addCurve(quadBezier{b.pen, p1, p2})
	b.pen = p2
}

func (b *boundsDrawer) CubeBezier(p1, p2, p3 fixed.Point26_6) {
	b.current.addCurve(cubicBezier{b.pen, p1, p2, p3})
	b.pen = p3
}

func (b *boundsDrawer) Draw() {
	if b.current.isEmpty() {
		return
	}
	c := b.current
	c.minX, c.minY = c.minX-b.margin, c.minY-b.margin
	c.maxX, c.maxY = c.maxX+b.margin, c.maxY+b.margin
	b.total.union(c)
}

// boundsDriver is a Driver measuring the painted area.
type boundsDriver struct {
	total           extent
	filler, stroker boundsDrawer
}

func newBoundsDriver() *boundsDriver {
	d := &boundsDriver{total: emptyExtent()}
	d.filler.total = &d.total
	d.stroker.total = &d.total
	return d
}

func (d *boundsDriver) SetupDrawers(willFill, willStroke bool) (f Filler, s Stroker) {
	if willFill {
		f = &d.filler
	}
	if willStroke {
		s = &d.stroker
	}
	return f, s
}

// ContentBounds returns the extent of the painted shapes, in the coordinates
// given by the current Transform, including stroke widths (miters excepted).
// Text is measured only when `fonts` is not nil.
// ok is false when nothing is painted.
func (s *SvgIcon) ContentBounds(fonts TextOutliner) (b Bounds, ok bool) {
	d := newBoundsDriver()
	s.Draw(d, 1, fonts)
	if d.total.isEmpty() {
		return Bounds{}, false
	}
	return d.total.bounds(), true
}
