package svgicon

import (
	"encoding/xml"
	"image/color"
	"strings"
)

// GradientUnits is the type for gradient units
type GradientUnits byte

// SVG bounds parameter constants
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification.
// Its layout matches rasterx.GradStop.
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	Direction gradientDirecter
	Stops     []GradStop
	Bounds    Bounds
	Matrix    Matrix2D
	Spread    SpreadMethod
	Units     GradientUnits

	href string // stops are inherited from this gradient when empty
}

// radial or linear
type gradientDirecter interface {
	isRadial() bool
}

// x1, y1, x2, y2
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// IsRadial reports whether the gradient is radial.
func (g Gradient) IsRadial() bool { return g.Direction != nil && g.Direction.isRadial() }

// inUserSpace returns a copy of g whose matrix also applies `m`,
// the transform in effect for the painted path.
func (g Gradient) inUserSpace(m Matrix2D) Gradient {
	if g.Units == UserSpaceOnUse {
		g.Matrix = m.Mult(g.Matrix)
	}
	return g
}

func (c *iconCursor) readGradAttr(attr xml.Attr) (err error) {
	switch attr.Name.Local {
	case "gradientTransform":
		c.grad.Matrix, err = c.parseTransformFrom(Identity, attr.Value)
	case "gradientUnits":
		switch strings.TrimSpace(attr.Value) {
		case "userSpaceOnUse":
			c.grad.Units = UserSpaceOnUse
		case "objectBoundingBox":
			c.grad.Units = ObjectBoundingBox
		}
	case "spreadMethod":
		switch strings.TrimSpace(attr.Value) {
		case "pad":
			c.grad.Spread = PadSpread
		case "reflect":
			c.grad.Spread = ReflectSpread
		case "repeat":
			c.grad.Spread = RepeatSpread
		}
	case "href":
		c.grad.href = strings.TrimPrefix(strings.TrimSpace(attr.Value), "#")
	}
	return err
}

// readGradURL resolves a "url(#id)" reference to a gradient defined earlier.
func (c *iconCursor) readGradURL(v string) (Gradient, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") || !strings.HasSuffix(v, ")") {
		return Gradient{}, false
	}
	urlStr := strings.Trim(strings.TrimSpace(v[4:len(v)-1]), `'"`)
	if !strings.HasPrefix(urlStr, "#") {
		return Gradient{}, false
	}
	g, ok := c.icon.grads[urlStr[1:]]
	if !ok {
		return Gradient{}, false
	}
	grad := *g
	for seen := 0; len(grad.Stops) == 0 && grad.href != "" && seen < len(c.icon.grads); seen++ {
		parent, ok := c.icon.grads[grad.href]
		if !ok {
			break
		}
		grad.Stops, grad.href = parent.Stops, parent.href
	}
	return grad, true
}
