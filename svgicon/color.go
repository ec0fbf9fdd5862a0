package svgicon

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Pattern is either a PlainColor or a Gradient.
// A nil Pattern disables filling or stroking.
type Pattern interface {
	isPattern()
}

// PlainColor is a uniform, non premultiplied color.
type PlainColor struct {
	color.NRGBA
}

func (PlainColor) isPattern() {}

func (Gradient) isPattern() {}

func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{color.NRGBA{R: r, G: g, B: b, A: a}}
}

// colorValue is the result of parsing a color attribute
type colorValue struct {
	none    bool // "none": disables painting
	current bool // "currentColor": resolved against the "color" property
	color   color.NRGBA
}

func (c colorValue) resolve(current color.NRGBA) color.NRGBA {
	if c.current {
		return current
	}
	return c.color
}

func (c colorValue) asPattern(current color.NRGBA) Pattern {
	if c.none {
		return nil
	}
	return PlainColor{c.resolve(current)}
}

func (c colorValue) asColor(current color.NRGBA) color.Color {
	if c.none {
		return color.NRGBA{}
	}
	return c.resolve(current)
}

// parseSVGColor parses an SVG color: a named color, #rgb, #rrggbb,
// rgb(), rgba(), "none" or "currentColor".
func parseSVGColor(colorStr string) (colorValue, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	switch v {
	case "none", "transparent":
		return colorValue{none: v == "none"}, nil
	case "currentcolor":
		return colorValue{current: true}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return colorValue{color: color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}}, nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	if strings.HasPrefix(v, "rgb") {
		return parseRGBColor(v)
	}
	return colorValue{}, fmt.Errorf("invalid color %q", colorStr)
}

func parseHexColor(hex string) (colorValue, error) {
	switch len(hex) {
	case 3, 4: // #rgb, #rgba
		var cs [4]uint8
		cs[3] = 0xf
		for i := range hex {
			n, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return colorValue{}, fmt.Errorf("invalid hex color #%s", hex)
			}
			cs[i] = uint8(n)
		}
		return colorValue{color: color.NRGBA{R: cs[0] * 17, G: cs[1] * 17, B: cs[2] * 17, A: cs[3] * 17}}, nil
	case 6, 8: // #rrggbb, #rrggbbaa
		if len(hex) == 6 {
			hex += "ff"
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return colorValue{}, fmt.Errorf("invalid hex color #%s", hex)
		}
		return colorValue{color: color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}}, nil
	}
	return colorValue{}, fmt.Errorf("invalid hex color #%s", hex)
}

// parseRGBColor parses rgb(r, g, b) and rgba(r, g, b, a), with
// components either in [0, 255] or as percentages.
func parseRGBColor(v string) (colorValue, error) {
	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return colorValue{}, fmt.Errorf("invalid color %q", v)
	}
	args := strings.FieldsFunc(v[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(args) != 3 && len(args) != 4 {
		return colorValue{}, fmt.Errorf("invalid color %q", v)
	}
	var cs [4]uint8
	cs[3] = 0xff
	for i, arg := range args {
		f, err := readFraction(arg)
		if err != nil {
			return colorValue{}, err
		}
		switch {
		case i == 3: // alpha is always a fraction
		case strings.HasSuffix(arg, "%"):
		default:
			f /= 255
		}
		cs[i] = uint8(clamp01(f)*255 + 0.5)
	}
	return colorValue{color: color.NRGBA{R: cs[0], G: cs[1], B: cs[2], A: cs[3]}}, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ParseColor parses a color as written in SVG paint attributes.
// "none" and "transparent" give the zero color.
func ParseColor(s string) (color.NRGBA, error) {
	v, err := parseSVGColor(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	if v.current {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: currentColor has no value here", s)
	}
	return v.color, nil
}
