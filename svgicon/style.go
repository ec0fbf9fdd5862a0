package svgicon

import (
	"encoding/xml"
	"image/color"
	"math"
	"strings"
)

const defaultFontSize = 16

// PathStyle holds the state of the SVG style
type PathStyle struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64
	UseNonZeroWinding        bool

	Join                    JoinOptions
	Dash                    DashOptions
	FillerColor, LinerColor Pattern // either PlainColor or Gradient

	// CurrentColor is the value of the "color" property,
	// used by the currentColor keyword.
	CurrentColor color.NRGBA

	Font   FontStyle
	Hidden bool // display:none or visibility:hidden

	transform Matrix2D // current transform
}

// Transform returns the user space to document transform in effect.
func (ps PathStyle) Transform() Matrix2D { return ps.transform }

// FontStyle groups the text properties inherited by <text> elements.
type FontStyle struct {
	Families []string
	Size     float64
	Weight   int // 100 to 900, 400 is normal
	Italic   bool
	Anchor   TextAnchor
}

// DefaultStyle sets the default PathStyle to fill black, winding rule,
// full opacity, no stroke, ButtCap line end and Bevel line connect.
var DefaultStyle = PathStyle{
	FillOpacity:       1.0,
	LineOpacity:       1.0,
	LineWidth:         1.0,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit:   fToFixed(4),
		LineJoin:     Bevel,
		TrailLineCap: ButtCap,
		LineGap:      FlatGap,
	},
	FillerColor:  NewPlainColor(0x00, 0x00, 0x00, 0xff),
	CurrentColor: color.NRGBA{A: 0xff},
	Font:         FontStyle{Size: defaultFontSize, Weight: 400},
	transform:    Identity,
}

func (c *iconCursor) readTransformAttr(m1 Matrix2D, k string) (Matrix2D, error) {
	ln := len(c.points)
	switch k {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(c.points[0] * math.Pi / 180)
		} else if ln == 3 {
			m1 = m1.Translate(c.points[1], c.points[2]).
				Rotate(c.points[0]*math.Pi/180).
				Translate(-c.points[1], -c.points[2])
		} else {
			return m1, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(c.points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(c.points[0], c.points[1])
		} else {
			return m1, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(c.points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(c.points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(c.points[0], c.points[0])
		} else if ln == 2 {
			m1 = m1.Scale(c.points[0], c.points[1])
		} else {
			return m1, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(Matrix2D{
				A: c.points[0],
				B: c.points[1],
				C: c.points[2],
				D: c.points[3],
				E: c.points[4],
				F: c.points[5]})
		} else {
			return m1, errParamMismatch
		}
	default:
		return m1, errParamMismatch
	}
	return m1, nil
}

// parseTransformFrom appends the transform list `v` to m1.
func (c *iconCursor) parseTransformFrom(m1 Matrix2D, v string) (Matrix2D, error) {
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(t)
		t = strings.TrimLeft(t, ", ")
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m1, errParamMismatch // badly formed transformation
		}
		err := c.getPoints(d[1])
		if err != nil {
			return m1, err
		}
		m1, err = c.readTransformAttr(m1, strings.ToLower(strings.TrimSpace(d[0])))
		if err != nil {
			return m1, err
		}
	}
	return m1, nil
}

func (c *iconCursor) readPaint(v string, current color.NRGBA) (Pattern, error) {
	if gradient, ok := c.readGradURL(v); ok {
		return gradient, nil
	}
	if strings.HasPrefix(strings.TrimSpace(v), "url(") {
		// unknown reference: SVG falls back to none
		return nil, nil
	}
	col, err := parseSVGColor(v)
	if err != nil {
		return nil, err
	}
	return col.asPattern(current), nil
}

func (c *iconCursor) readStyleAttr(curStyle *PathStyle, k, v string) error {
	switch k {
	case "fill":
		p, err := c.readPaint(v, curStyle.CurrentColor)
		if err != nil {
			return err
		}
		curStyle.FillerColor = p
	case "stroke":
		p, err := c.readPaint(v, curStyle.CurrentColor)
		if err != nil {
			return err
		}
		curStyle.LinerColor = p
	case "color":
		col, err := parseSVGColor(v)
		if err != nil {
			return err
		}
		if !col.current {
			curStyle.CurrentColor = col.color
		}
	case "fill-rule":
		curStyle.UseNonZeroWinding = v != "evenodd"
	case "stroke-linegap":
		switch v {
		case "flat":
			curStyle.Join.LineGap = FlatGap
		case "round":
			curStyle.Join.LineGap = RoundGap
		case "cubic":
			curStyle.Join.LineGap = CubicGap
		case "quadratic":
			curStyle.Join.LineGap = QuadraticGap
		}
	case "stroke-leadlinecap":
		curStyle.Join.LeadLineCap = parseCap(v, curStyle.Join.LeadLineCap)
	case "stroke-linecap":
		curStyle.Join.TrailLineCap = parseCap(v, curStyle.Join.TrailLineCap)
	case "stroke-linejoin":
		switch v {
		case "miter":
			curStyle.Join.LineJoin = Miter
		case "miter-clip":
			curStyle.Join.LineJoin = MiterClip
		case "arc-clip":
			curStyle.Join.LineJoin = ArcClip
		case "round":
			curStyle.Join.LineJoin = Round
		case "arc":
			curStyle.Join.LineJoin = Arc
		case "bevel":
			curStyle.Join.LineJoin = Bevel
		}
	case "stroke-miterlimit":
		mLimit, err := parseBasicFloat(v)
		if err != nil {
			return err
		}
		curStyle.Join.MiterLimit = fToFixed(mLimit)
	case "stroke-width":
		width, err := c.parseUnit(v, diagPercentage)
		if err != nil {
			return err
		}
		curStyle.LineWidth = width
	case "stroke-dashoffset":
		dashOffset, err := c.parseUnit(v, diagPercentage)
		if err != nil {
			return err
		}
		curStyle.Dash.DashOffset = dashOffset
	case "stroke-dasharray":
		if v == "none" {
			curStyle.Dash.Dash = nil
			break
		}
		dashes := splitOnCommaOrSpace(v)
		dList := make([]float64, len(dashes))
		for i, dstr := range dashes {
			d, err := c.parseUnit(dstr, diagPercentage)
			if err != nil {
				return err
			}
			dList[i] = d
		}
		curStyle.Dash.Dash = dList
	case "opacity", "stroke-opacity", "fill-opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		op = clamp01(op)
		if k != "stroke-opacity" {
			curStyle.FillOpacity *= op
		}
		if k != "fill-opacity" {
			curStyle.LineOpacity *= op
		}
	case "display":
		if v == "none" {
			curStyle.Hidden = true
		}
	case "visibility":
		if v == "hidden" || v == "collapse" {
			curStyle.Hidden = true
		}
	case "transform":
		m, err := c.parseTransformFrom(curStyle.transform, v)
		if err != nil {
			return err
		}
		curStyle.transform = m
	case "font-family":
		curStyle.Font.Families = parseFontFamilies(v)
	case "font-size":
		size, err := parseFontSize(v, curStyle.Font.Size)
		if err != nil {
			return err
		}
		curStyle.Font.Size = size
	case "font-weight":
		curStyle.Font.Weight = parseFontWeight(v, curStyle.Font.Weight)
	case "font-style":
		curStyle.Font.Italic = v == "italic" || v == "oblique"
	case "text-anchor":
		switch v {
		case "start":
			curStyle.Font.Anchor = AnchorStart
		case "middle":
			curStyle.Font.Anchor = AnchorMiddle
		case "end":
			curStyle.Font.Anchor = AnchorEnd
		}
	}
	return nil
}

func parseCap(v string, def CapMode) CapMode {
	switch v {
	case "butt":
		return ButtCap
	case "round":
		return RoundCap
	case "square":
		return SquareCap
	case "cubic":
		return CubicCap
	case "quadratic":
		return QuadraticCap
	}
	return def
}

// pushStyle parses the style element, and push it on the style stack.
// Both the contents of a style attribute and the presentation
// attributes are read; the style attribute takes precedence.
// Invalid values are reported through the error mode and ignored.
func (c *iconCursor) pushStyle(element string, attrs []xml.Attr) error {
	var pairs []string
	var styles []string
	for _, attr := range attrs {
		switch strings.ToLower(attr.Name.Local) {
		case "style":
			styles = append(styles, strings.Split(attr.Value, ";")...)
		default:
			pairs = append(pairs, attr.Name.Local+":"+attr.Value)
		}
	}
	pairs = append(pairs, styles...)
	// Make a copy of the top style
	curStyle := c.styleStack[len(c.styleStack)-1]
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if err := c.readStyleAttr(&curStyle, k, v); err != nil {
			if err = c.handleError(element, err); err != nil {
				return err
			}
		}
	}
	c.styleStack = append(c.styleStack, curStyle) // Push style onto stack
	return nil
}

func (c *iconCursor) popStyle() {
	if len(c.styleStack) > 1 {
		c.styleStack = c.styleStack[:len(c.styleStack)-1]
	}
}

func (c *iconCursor) currentStyle() PathStyle {
	return c.styleStack[len(c.styleStack)-1]
}
