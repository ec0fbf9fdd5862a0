package svgicon

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// TextAnchor aligns a text span relatively to its position.
type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

// TextSpan is a run of text sharing one position and one font.
// Its glyph outlines are only resolved when drawing, by a TextOutliner.
type TextSpan struct {
	Text string
	X, Y float64 // position of the baseline origin, in user units
	Font FontStyle
}

// TextOutliner converts text to vector outlines, expressed in
// the user space of the span.
type TextOutliner interface {
	OutlineText(span TextSpan) (Path, error)
}

// HasText reports whether the document contains text to draw.
func (s *SvgIcon) HasText() bool {
	for _, p := range s.SVGPaths {
		if p.Text != nil && !p.Style.Hidden {
			return true
		}
	}
	return false
}

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "math": true, "emoji": true,
}

// parseFontFamilies splits a font-family list, removing quotes.
func parseFontFamilies(v string) []string {
	var out []string
	for _, f := range strings.Split(v, ",") {
		f = strings.Trim(strings.TrimSpace(f), `"'`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// IsGenericFamily reports whether name is a CSS generic family.
func IsGenericFamily(name string) bool { return genericFamilies[strings.ToLower(name)] }

var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32,
}

func parseFontSize(v string, inherited float64) (float64, error) {
	if s, ok := fontSizeKeywords[v]; ok {
		return s, nil
	}
	switch {
	case strings.HasSuffix(v, "%"):
		f, err := readFraction(v)
		return f * inherited, err
	case strings.HasSuffix(v, "em") && !strings.HasSuffix(v, "rem"):
		f, err := parseBasicFloat(strings.TrimSuffix(v, "em"))
		return f * inherited, err
	}
	return parseLength(v)
}

func parseFontWeight(v string, inherited int) int {
	switch v {
	case "normal":
		return 400
	case "bold":
		return 700
	case "bolder":
		return min(inherited+300, 900)
	case "lighter":
		return max(inherited-300, 100)
	}
	if w, err := strconv.Atoi(v); err == nil && w >= 1 && w <= 1000 {
		return w
	}
	return inherited
}

// readTextPosition reads the x, y, dx and dy attributes of a text element.
// Only the first value of a coordinate list is used.
func (c *iconCursor) readTextPosition(attrs []xml.Attr) (x, y float64, hasX, hasY bool, err error) {
	var dx, dy float64
	first := func(v string, ref unitReference) (float64, error) {
		fields := splitOnCommaOrSpace(v)
		if len(fields) == 0 {
			return 0, nil
		}
		return c.parseUnit(fields[0], ref)
	}
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x":
			hasX = true
			x, err = first(attr.Value, widthPercentage)
		case "y":
			hasY = true
			y, err = first(attr.Value, heightPercentage)
		case "dx":
			dx, err = first(attr.Value, widthPercentage)
		case "dy":
			dy, err = first(attr.Value, heightPercentage)
		}
		if err != nil {
			return 0, 0, false, false, err
		}
	}
	return x + dx, y + dy, hasX || dx != 0, hasY || dy != 0, nil
}

func textF(c *iconCursor, attrs []xml.Attr) error {
	c.flushText()
	x, y, _, _, err := c.readTextPosition(attrs)
	if err != nil {
		return err
	}
	style := c.currentStyle()
	c.text = &TextSpan{X: x + c.curX, Y: y + c.curY, Font: style.Font}
	c.textStyle = style
	return nil
}

// tspanF starts a new span when the tspan is positioned,
// otherwise its content joins the enclosing text.
func tspanF(c *iconCursor, attrs []xml.Attr) error {
	if c.text == nil {
		return nil
	}
	x, y, hasX, hasY, err := c.readTextPosition(attrs)
	if err != nil {
		return err
	}
	if !hasX && !hasY {
		return nil
	}
	prev := *c.text
	c.flushText()
	style := c.currentStyle()
	span := &TextSpan{X: prev.X, Y: prev.Y, Font: style.Font}
	if hasX {
		span.X = x + c.curX
	}
	if hasY {
		span.Y = y + c.curY
	}
	c.text = span
	c.textStyle = style
	return nil
}
