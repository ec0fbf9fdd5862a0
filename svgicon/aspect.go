package svgicon

import (
	"fmt"
	"strings"
)

// Align is the alignment part of a preserveAspectRatio attribute.
type Align uint8

const (
	AlignXMidYMid Align = iota // default value
	AlignNone
	AlignXMinYMin
	AlignXMidYMin
	AlignXMaxYMin
	AlignXMinYMid
	AlignXMaxYMid
	AlignXMinYMax
	AlignXMidYMax
	AlignXMaxYMax
)

var alignNames = map[string]Align{
	"none":     AlignNone,
	"xMinYMin": AlignXMinYMin,
	"xMidYMin": AlignXMidYMin,
	"xMaxYMin": AlignXMaxYMin,
	"xMinYMid": AlignXMinYMid,
	"xMidYMid": AlignXMidYMid,
	"xMaxYMid": AlignXMaxYMid,
	"xMinYMax": AlignXMinYMax,
	"xMidYMax": AlignXMidYMax,
	"xMaxYMax": AlignXMaxYMax,
}

// PreserveAspectRatio controls how the view box is fitted into the viewport.
type PreserveAspectRatio struct {
	Align Align
	Slice bool // "slice" instead of the default "meet"
}

func parsePreserveAspectRatio(v string) (PreserveAspectRatio, error) {
	fields := strings.Fields(v)
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return PreserveAspectRatio{}, fmt.Errorf("invalid preserveAspectRatio %q", v)
	}
	align, ok := alignNames[fields[0]]
	if !ok {
		return PreserveAspectRatio{}, fmt.Errorf("invalid preserveAspectRatio %q", v)
	}
	out := PreserveAspectRatio{Align: align}
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return PreserveAspectRatio{}, fmt.Errorf("invalid preserveAspectRatio %q", v)
		}
	}
	return out, nil
}

// factors returns the horizontal and vertical alignment, in [0, 1].
func (a Align) factors() (fx, fy float64) {
	switch a {
	case AlignXMinYMin:
		return 0, 0
	case AlignXMidYMin:
		return 0.5, 0
	case AlignXMaxYMin:
		return 1, 0
	case AlignXMinYMid:
		return 0, 0.5
	case AlignXMaxYMid:
		return 1, 0.5
	case AlignXMinYMax:
		return 0, 1
	case AlignXMidYMax:
		return 0.5, 1
	case AlignXMaxYMax:
		return 1, 1
	default:
		return 0.5, 0.5
	}
}

// ViewBoxTransform returns the transform mapping the view box `vb`
// into the viewport (x, y, w, h).
func (par PreserveAspectRatio) ViewBoxTransform(vb Bounds, x, y, w, h float64) Matrix2D {
	if vb.W <= 0 || vb.H <= 0 {
		return Identity.Translate(x, y)
	}
	sx, sy := w/vb.W, h/vb.H
	if par.Align == AlignNone {
		return Identity.Translate(x, y).Scale(sx, sy).Translate(-vb.X, -vb.Y)
	}
	s := min(sx, sy)
	if par.Slice {
		s = max(sx, sy)
	}
	fx, fy := par.Align.factors()
	tx := x + (w-vb.W*s)*fx
	ty := y + (h-vb.H*s)*fy
	return Identity.Translate(tx, ty).Scale(s, s).Translate(-vb.X, -vb.Y)
}
