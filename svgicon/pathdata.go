package svgicon

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/image/math/fixed"
)

// pathCursor compiles path data and basic shapes into a Path.
type pathCursor struct {
	path                   Path
	placeX, placeY         float64
	curX, curY             float64 // offset applied by <use x y>
	cntlPtX, cntlPtY       float64
	pathStartX, pathStartY float64
	points                 []float64
	lastKey                uint8
	errorMode              ErrorMode
	inPath                 bool
}

func (c *pathCursor) init() {
	c.placeX, c.placeY = 0, 0
	c.points = c.points[:0]
	c.lastKey = ' '
	c.path.Clear()
	c.inPath = false
}

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(x * 64)
	p.Y = fixed.Int26_6(y * 64)
	return
}

func (c *pathCursor) at(x, y float64) fixed.Point26_6 {
	return toFixedP(x+c.curX, y+c.curY)
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' }

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// scanNumber returns the end of the number starting at s[i],
// or i if there is none.
func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	digits := false
	for j < len(s) && isDigit(s[j]) {
		j++
		digits = true
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
			digits = true
		}
	}
	if !digits {
		return i
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigit(s[k]) {
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

// getPoints reads a list of numbers separated by commas, spaces,
// or nothing at all when the sign or the dot is enough ("1-2.5.5").
func (c *pathCursor) getPoints(dataPoints string) error {
	c.points = c.points[:0]
	for i := 0; i < len(dataPoints); {
		if ch := dataPoints[i]; ch == ',' || isSpace(ch) {
			i++
			continue
		}
		j := scanNumber(dataPoints, i)
		if j == i {
			return fmt.Errorf("invalid number list %q", dataPoints)
		}
		f, err := strconv.ParseFloat(dataPoints[i:j], 64)
		if err != nil {
			return err
		}
		c.points = append(c.points, f)
		i = j
	}
	return nil
}

func isCommand(b byte) bool {
	switch b {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// compilePath translates the svgPath description string into a path.
func (c *pathCursor) compilePath(svgPath string) error {
	c.init()
	lastIndex := -1
	for i := 0; i < len(svgPath); i++ {
		if !isCommand(svgPath[i]) {
			continue
		}
		if lastIndex != -1 {
			if err := c.addSeg(svgPath[lastIndex:i]); err != nil {
				return err
			}
		}
		lastIndex = i
	}
	if lastIndex != -1 {
		if err := c.addSeg(svgPath[lastIndex:]); err != nil {
			return err
		}
	}
	return nil
}

// reflect sets the control point to the reflection of the previous one
// when the previous command was of the same family.
func (c *pathCursor) reflect(family string) {
	for i := 0; i < len(family); i++ {
		if c.lastKey == family[i] {
			c.cntlPtX, c.cntlPtY = 2*c.placeX-c.cntlPtX, 2*c.placeY-c.cntlPtY
			return
		}
	}
	c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
}

// valsToAbs adds the current point to relative coordinates.
func (c *pathCursor) valsToAbs(last float64) {
	for i := 0; i < len(c.points); i++ {
		last += c.points[i]
		c.points[i] = last
	}
}

// pointsToAbs makes the groups of `sz` coordinates absolute,
// each group being relative to the end of the previous one.
func (c *pathCursor) pointsToAbs(sz int) {
	lastX, lastY := c.placeX, c.placeY
	for j := 0; j < len(c.points); j += sz {
		for i := 0; i < sz; i += 2 {
			c.points[i+j] += lastX
			c.points[i+1+j] += lastY
		}
		lastX, lastY = c.points[j+sz-2], c.points[j+sz-1]
	}
}

// hasSetsOrMore checks that there is at least one group of `sz` points
// and that the count is a multiple of sz.
func (c *pathCursor) hasSetsOrMore(sz int, rel bool) bool {
	if !(len(c.points) >= sz && len(c.points)%sz == 0) {
		return false
	}
	if rel {
		c.pointsToAbs(sz)
	}
	return true
}

func (c *pathCursor) ensureStarted() {
	if !c.inPath {
		c.path.Start(c.at(c.placeX, c.placeY))
		c.pathStartX, c.pathStartY = c.placeX, c.placeY
		c.inPath = true
	}
}

// addSeg decodes an SVG segment string into the path.
func (c *pathCursor) addSeg(segString string) error {
	if err := c.getPoints(segString[1:]); err != nil {
		return err
	}
	l := len(c.points)
	k := segString[0]
	rel := false
	switch k {
	case 'z', 'Z':
		if l != 0 {
			return errParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
			c.placeX, c.placeY = c.pathStartX, c.pathStartY
			c.inPath = false
		}
	case 'm':
		rel = true
		fallthrough
	case 'M':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		c.pathStartX, c.pathStartY = c.points[0], c.points[1]
		c.inPath = true
		c.path.Start(c.at(c.pathStartX, c.pathStartY))
		for i := 2; i < l-1; i += 2 {
			c.path.Line(c.at(c.points[i], c.points[i+1]))
		}
		c.placeX, c.placeY = c.points[l-2], c.points[l-1]
	case 'l':
		rel = true
		fallthrough
	case 'L':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		c.ensureStarted()
		for i := 0; i < l-1; i += 2 {
			c.path.Line(c.at(c.points[i], c.points[i+1]))
		}
		c.placeX, c.placeY = c.points[l-2], c.points[l-1]
	case 'v':
		c.valsToAbs(c.placeY)
		fallthrough
	case 'V':
		if l == 0 {
			return errParamMismatch
		}
		c.ensureStarted()
		for _, p := range c.points {
			c.path.Line(c.at(c.placeX, p))
		}
		c.placeY = c.points[l-1]
	case 'h':
		c.valsToAbs(c.placeX)
		fallthrough
	case 'H':
		if l == 0 {
			return errParamMismatch
		}
		c.ensureStarted()
		for _, p := range c.points {
			c.path.Line(c.at(p, c.placeY))
		}
		c.placeX = c.points[l-1]
	case 'q':
		rel = true
		fallthrough
	case 'Q':
		if !c.hasSetsOrMore(4, rel) {
			return errParamMismatch
		}
		c.ensureStarted()
		for i := 0; i < l-3; i += 4 {
			c.path.QuadBezier(c.at(c.points[i], c.points[i+1]), c.at(c.points[i+2], c.points[i+3]))
		}
		c.cntlPtX, c.cntlPtY = c.points[l-4], c.points[l-3]
		c.placeX, c.placeY = c.points[l-2], c.points[l-1]
	case 't':
		rel = true
		fallthrough
	case 'T':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		c.ensureStarted()
		for i := 0; i < l-1; i += 2 {
			c.reflect("QqTt")
			c.path.QuadBezier(c.at(c.cntlPtX, c.cntlPtY), c.at(c.points[i], c.points[i+1]))
			c.lastKey = k
			c.placeX, c.placeY = c.points[i], c.points[i+1]
		}
	case 'c':
		rel = true
		fallthrough
	case 'C':
		if !c.hasSetsOrMore(6, rel) {
			return errParamMismatch
		}
		c.ensureStarted()
		for i := 0; i < l-5; i += 6 {
			c.path.CubeBezier(c.at(c.points[i], c.points[i+1]), c.at(c.points[i+2], c.points[i+3]),
				c.at(c.points[i+4], c.points[i+5]))
		}
		c.cntlPtX, c.cntlPtY = c.points[l-4], c.points[l-3]
		c.placeX, c.placeY = c.points[l-2], c.points[l-1]
	case 's':
		rel = true
		fallthrough
	case 'S':
		if !c.hasSetsOrMore(4, rel) {
			return errParamMismatch
		}
		c.ensureStarted()
		for i := 0; i < l-3; i += 4 {
			c.reflect("CcSs")
			c.path.CubeBezier(c.at(c.cntlPtX, c.cntlPtY), c.at(c.points[i], c.points[i+1]),
				c.at(c.points[i+2], c.points[i+3]))
			c.lastKey = k
			c.cntlPtX, c.cntlPtY = c.points[i], c.points[i+1]
			c.placeX, c.placeY = c.points[i+2], c.points[i+3]
		}
	case 'a', 'A':
		if !(l >= 7 && l%7 == 0) {
			return errParamMismatch
		}
		c.ensureStarted()
		for i := 0; i < l-6; i += 7 {
			if k == 'a' {
				c.points[i+5] += c.placeX
				c.points[i+6] += c.placeY
			}
			c.addArcSeg(c.points[i : i+7])
		}
	default:
		return fmt.Errorf("unknown path command %q", k)
	}
	c.lastKey = k
	return nil
}

// addArcSeg adds the elliptical arc described by the 7 absolute
// parameters rx ry x-axis-rotation large-arc sweep x y.
func (c *pathCursor) addArcSeg(arc []float64) {
	endX, endY := arc[5], arc[6]
	if endX == c.placeX && endY == c.placeY {
		return // omitted, as required for identical end points
	}
	arc[0], arc[1] = math.Abs(arc[0]), math.Abs(arc[1])
	if arc[0] == 0 || arc[1] == 0 {
		c.path.Line(c.at(endX, endY))
		c.placeX, c.placeY = endX, endY
		return
	}
	rotX := arc[2] * math.Pi / 180
	cx, cy := findEllipseCenter(&arc[0], &arc[1], rotX, c.placeX, c.placeY, endX, endY,
		arc[4] == 0, arc[3] == 0)
	q := &matrixAdder{M: Identity.Translate(c.curX, c.curY), path: &c.path}
	c.placeX, c.placeY = addArc(q, arc, cx, cy, c.placeX, c.placeY)
}

// ellipseAt adds a closed ellipse centered at (cx, cy).
func (c *pathCursor) ellipseAt(cx, cy, rx, ry float64) {
	c.placeX, c.placeY = cx+rx, cy
	arc := []float64{rx, ry, 0.0, 1.0, 0.0, c.placeX, c.placeY}
	c.path.Start(c.at(c.placeX, c.placeY))
	q := &matrixAdder{M: Identity.Translate(c.curX, c.curY), path: &c.path}
	c.placeX, c.placeY = addArc(q, arc, cx, cy, c.placeX, c.placeY)
	c.path.Stop(true)
}
