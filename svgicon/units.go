package svgicon

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// percentage references, as defined by the SVG units section
type unitReference uint8

const (
	widthPercentage unitReference = iota
	heightPercentage
	diagPercentage
)

// absolute units, converted to user units at 96 dpi
var unitFactors = map[string]float64{
	"px": 1,
	"pt": 96. / 72,
	"pc": 96. / 6,
	"mm": 96. / 25.4,
	"cm": 96. / 2.54,
	"in": 96,
	"em": defaultFontSize,
	"ex": defaultFontSize / 2,
}

func parseBasicFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// parseLength parses a number with an optional absolute unit.
// Percentages are rejected.
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for unit, factor := range unitFactors {
		if strings.HasSuffix(s, unit) {
			f, err := parseBasicFloat(strings.TrimSuffix(s, unit))
			return f * factor, err
		}
	}
	if strings.HasSuffix(s, "%") {
		return 0, fmt.Errorf("unexpected percentage %q", s)
	}
	return parseBasicFloat(s)
}

// parseUnit parses a length, resolving percentages against the
// current view box.
func (c *iconCursor) parseUnit(s string, ref unitReference) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return parseLength(s)
	}
	f, err := parseBasicFloat(strings.TrimSuffix(s, "%"))
	if err != nil {
		return 0, err
	}
	f /= 100
	vb := c.icon.ViewBox
	switch ref {
	case widthPercentage:
		return f * vb.W, nil
	case heightPercentage:
		return f * vb.H, nil
	default:
		return f * math.Sqrt(vb.W*vb.W+vb.H*vb.H) / math.Sqrt2, nil
	}
}

func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = parseBasicFloat(v)
	f /= d
	return
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}
