package svgicon

import (
	"encoding/xml"
	"errors"
	"image/color"
	"strings"
)

func init() {
	// avoids cyclical static declaration
	// called on package initialization
	drawFuncs["use"] = useF
}

type svgFunc func(c *iconCursor, attrs []xml.Attr) error

var drawFuncs = map[string]svgFunc{
	"svg":            svgF,
	"g":              gF,
	"a":              gF,
	"switch":         gF,
	"line":           lineF,
	"stop":           stopF,
	"rect":           rectF,
	"circle":         circleF,
	"ellipse":        circleF, // circleF handles ellipse also
	"polyline":       polylineF,
	"polygon":        polygonF,
	"path":           pathF,
	"desc":           descF,
	"defs":           defsF,
	"title":          titleF,
	"linearGradient": linearGradientF,
	"radialGradient": radialGradientF,
	"text":           textF,
	"tspan":          tspanF,
}

func svgF(c *iconCursor, attrs []xml.Attr) error {
	if len(c.styleStack) > 2 {
		return nil // nested <svg>: only its style applies
	}
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "viewBox":
			err = c.getPoints(attr.Value)
			if err == nil && len(c.points) != 4 {
				err = errParamMismatch
			}
			if err == nil && (c.points[2] < 0 || c.points[3] < 0) {
				err = errors.New("negative view box size")
			}
			if err != nil {
				// an invalid view box is ignored, as if absent
				err = c.handleError("svg", err)
				break
			}
			c.icon.ViewBox = Bounds{X: c.points[0], Y: c.points[1], W: c.points[2], H: c.points[3]}
			c.icon.HasViewBox = true
		case "width", "height":
			v := strings.TrimSpace(attr.Value)
			if strings.HasSuffix(v, "%") || v == "auto" {
				break // relative to a viewport we don't know
			}
			var l float64
			l, err = parseLength(v)
			if attr.Name.Local == "width" {
				c.icon.Width = l
			} else {
				c.icon.Height = l
			}
		case "preserveAspectRatio":
			c.icon.AspectRatio, err = parsePreserveAspectRatio(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if !c.icon.HasViewBox {
		c.icon.ViewBox.W, c.icon.ViewBox.H = c.icon.Width, c.icon.Height
	}
	return nil
}

func gF(*iconCursor, []xml.Attr) error { return nil } // g does nothing but push the style

func rectF(c *iconCursor, attrs []xml.Attr) error {
	var x, y, w, h, rx, ry float64
	var hasRx, hasRy bool
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		case "rx":
			hasRx = true
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			hasRy = true
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	// a single radius applies to both axes
	if hasRx && !hasRy {
		ry = rx
	} else if hasRy && !hasRx {
		rx = ry
	}
	c.path.addRoundRect(x+c.curX, y+c.curY, w+x+c.curX, h+y+c.curY, rx, ry, 0)
	return nil
}

func circleF(c *iconCursor, attrs []xml.Attr) error {
	var cx, cy, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "cx":
			cx, err = c.parseUnit(attr.Value, widthPercentage)
		case "cy":
			cy, err = c.parseUnit(attr.Value, heightPercentage)
		case "r":
			rx, err = c.parseUnit(attr.Value, diagPercentage)
			ry = rx
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	c.ellipseAt(cx, cy, rx, ry)
	return nil
}

func lineF(c *iconCursor, attrs []xml.Attr) error {
	var x1, x2, y1, y2 float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x1":
			x1, err = c.parseUnit(attr.Value, widthPercentage)
		case "x2":
			x2, err = c.parseUnit(attr.Value, widthPercentage)
		case "y1":
			y1, err = c.parseUnit(attr.Value, heightPercentage)
		case "y2":
			y2, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	c.path.Start(c.at(x1, y1))
	c.path.Line(c.at(x2, y2))
	return nil
}

func polylineF(c *iconCursor, attrs []xml.Attr) error {
	c.points = c.points[:0]
	for _, attr := range attrs {
		if attr.Name.Local != "points" {
			continue
		}
		if err := c.getPoints(attr.Value); err != nil {
			return err
		}
		if len(c.points)%2 != 0 {
			return errors.New("polygon has odd number of points")
		}
	}
	if len(c.points) >= 4 {
		c.path.Start(c.at(c.points[0], c.points[1]))
		for i := 2; i < len(c.points)-1; i += 2 {
			c.path.Line(c.at(c.points[i], c.points[i+1]))
		}
	}
	return nil
}

func polygonF(c *iconCursor, attrs []xml.Attr) error {
	err := polylineF(c, attrs)
	if len(c.path) > 0 {
		c.path.Stop(true)
	}
	return err
}

func pathF(c *iconCursor, attrs []xml.Attr) error {
	for _, attr := range attrs {
		if attr.Name.Local == "d" {
			if err := c.compilePath(attr.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func descF(c *iconCursor, attrs []xml.Attr) error {
	c.inDescText = true
	c.icon.Descriptions = append(c.icon.Descriptions, "")
	return nil
}

func titleF(c *iconCursor, attrs []xml.Attr) error {
	c.inTitleText = true
	c.icon.Titles = append(c.icon.Titles, "")
	return nil
}

func defsF(c *iconCursor, attrs []xml.Attr) error {
	c.inDefs = true
	return nil
}

func gradientID(attrs []xml.Attr) (string, error) {
	for _, attr := range attrs {
		if attr.Name.Local == "id" {
			if attr.Value == "" {
				return "", errZeroLengthID
			}
			return attr.Value, nil
		}
	}
	return "", nil
}

func linearGradientF(c *iconCursor, attrs []xml.Attr) error {
	c.inGrad = true
	direction := Linear{0, 0, 1, 0}
	c.grad = &Gradient{Bounds: c.icon.ViewBox, Matrix: Identity}
	id, err := gradientID(attrs)
	if err != nil {
		return err
	}
	if id != "" {
		c.icon.grads[id] = c.grad
	}
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "id":
		case "x1":
			direction[0], err = readFraction(attr.Value)
		case "y1":
			direction[1], err = readFraction(attr.Value)
		case "x2":
			direction[2], err = readFraction(attr.Value)
		case "y2":
			direction[3], err = readFraction(attr.Value)
		default:
			err = c.readGradAttr(attr)
		}
		if err != nil {
			return err
		}
	}
	c.grad.Direction = direction
	return nil
}

func radialGradientF(c *iconCursor, attrs []xml.Attr) error {
	c.inGrad = true
	direction := Radial{0.5, 0.5, 0.5, 0.5, 0.5, 0}
	c.grad = &Gradient{Bounds: c.icon.ViewBox, Matrix: Identity}
	id, err := gradientID(attrs)
	if err != nil {
		return err
	}
	if id != "" {
		c.icon.grads[id] = c.grad
	}
	var setFx, setFy bool
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "id":
		case "cx":
			direction[0], err = readFraction(attr.Value)
		case "cy":
			direction[1], err = readFraction(attr.Value)
		case "fx":
			setFx = true
			direction[2], err = readFraction(attr.Value)
		case "fy":
			setFy = true
			direction[3], err = readFraction(attr.Value)
		case "r":
			direction[4], err = readFraction(attr.Value)
		case "fr":
			direction[5], err = readFraction(attr.Value)
		default:
			err = c.readGradAttr(attr)
		}
		if err != nil {
			return err
		}
	}
	if !setFx { // set fx to cx by default
		direction[2] = direction[0]
	}
	if !setFy { // set fy to cy by default
		direction[3] = direction[1]
	}
	c.grad.Direction = direction
	return nil
}

func stopF(c *iconCursor, attrs []xml.Attr) error {
	if !c.inGrad {
		return nil
	}
	stop := GradStop{Opacity: 1.0, StopColor: DefaultStyle.CurrentColor}
	current := c.currentStyle().CurrentColor
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "offset":
			stop.Offset, err = readFraction(attr.Value)
			stop.Offset = clamp01(stop.Offset)
		case "stop-color":
			var col colorValue
			col, err = parseSVGColor(attr.Value)
			stop.StopColor = col.asColor(current)
		case "stop-opacity":
			stop.Opacity, err = readFraction(attr.Value)
		case "style":
			err = readStopStyle(&stop, attr.Value, current)
		}
		if err != nil {
			return err
		}
	}
	c.grad.Stops = append(c.grad.Stops, stop)
	return nil
}

// readStopStyle handles stops written as style="stop-color:...;stop-opacity:..."
func readStopStyle(stop *GradStop, style string, current color.NRGBA) error {
	for _, pair := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.TrimSpace(k) {
		case "stop-color":
			col, err := parseSVGColor(v)
			if err != nil {
				return err
			}
			stop.StopColor = col.asColor(current)
		case "stop-opacity":
			op, err := readFraction(v)
			if err != nil {
				return err
			}
			stop.Opacity = op
		}
	}
	return nil
}

func useF(c *iconCursor, attrs []xml.Attr) error {
	var (
		href string
		x, y float64
		err  error
	)
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "href":
			href = attr.Value
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if href == "" {
		return errors.New("only use tags with href is supported")
	}
	if !strings.HasPrefix(href, "#") {
		return errors.New("only the ID CSS selector is supported")
	}
	defs, ok := c.icon.defs[href[1:]]
	if !ok {
		return errors.New("href ID in use statement was not found in saved defs")
	}
	c.curX, c.curY = c.curX+x, c.curY+y
	defer func() {
		c.curX, c.curY = c.curX-x, c.curY-y
	}()
	depth := len(c.styleStack)
	defer func() {
		c.styleStack = c.styleStack[:depth] // unbalanced definitions
	}()
	for _, def := range defs {
		if def.Tag == "endg" {
			c.popStyle()
			continue
		}
		if err = c.pushStyle(def.Tag, def.Attrs); err != nil {
			return err
		}
		if def.Tag == "g" || def.Tag == "symbol" {
			continue // popped by the matching endg
		}
		df, ok := drawFuncs[def.Tag]
		if !ok || def.Tag == "use" || def.Tag == "text" || def.Tag == "tspan" {
			if err = c.handleError(def.Tag, errors.New("unsupported element in <use>")); err != nil {
				return err
			}
		} else if err = df(c, def.Attrs); err != nil {
			return err
		} else {
			c.flushPath()
		}
		c.popStyle()
	}
	return nil
}
