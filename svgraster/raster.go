// Package svgraster renders parsed SVG documents to bitmaps, by wrapping rasterx.
package svgraster

import (
	"image/draw"

	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/svgimg/svgicon"
)

var _ svgicon.Driver = (*Renderer)(nil) // assert interface conformance

// Renderer is a svgicon.Driver painting into a draw.Image.
// The filler and the dasher share one scanner: svgicon always
// fills then strokes, so their paths never interleave.
type Renderer struct {
	filler  fillDrawer
	stroker strokeDrawer
}

// NewRenderer returns a renderer drawing on dst, using a rasterx.ScannerGV.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
func NewRenderer(dst draw.Image) *Renderer {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, bounds)
	return &Renderer{
		filler:  fillDrawer{rasterx.NewFiller(w, h, scanner)},
		stroker: strokeDrawer{rasterx.NewDasher(w, h, scanner)},
	}
}

// SetupDrawers implements svgicon.Driver.
func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (f svgicon.Filler, s svgicon.Stroker) {
	if willFill {
		f = rd.filler
	}
	if willStroke {
		s = rd.stroker
	}
	return f, s
}

type fillDrawer struct {
	*rasterx.Filler
}

func (fd fillDrawer) SetColor(color svgicon.Pattern, opacity float64) {
	setColorFromPattern(color, opacity, fd.Scanner)
}

type strokeDrawer struct {
	*rasterx.Dasher
}

func (sd strokeDrawer) SetColor(color svgicon.Pattern, opacity float64) {
	setColorFromPattern(color, opacity, sd.Scanner)
}

func (sd strokeDrawer) SetStrokeOptions(options svgicon.StrokeOptions) {
	sd.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

func toRasterxGradient(grad svgicon.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch dir := grad.Direction.(type) {
	case svgicon.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
	case svgicon.Radial:
		// rasterx ignores the focal radius
		points[0], points[1], points[2], points[3], points[4] = dir[0], dir[1], dir[2], dir[3], dir[4]
		isRadial = true
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Bounds:   grad.Bounds,
		Matrix:   rasterx.Matrix2D(grad.Matrix),
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: isRadial,
	}
}

// setColorFromPattern resolves plain colors and gradients for the scanner.
// Object bounding box gradients are mapped on the extent of the
// current path, in device space.
func setColorFromPattern(color svgicon.Pattern, opacity float64, scanner rasterx.Scanner) {
	switch pattern := color.(type) {
	case svgicon.PlainColor:
		scanner.SetColor(rasterx.ApplyOpacity(pattern, opacity))
	case svgicon.Gradient:
		if len(pattern.Stops) == 0 {
			// no stops: nothing is painted
			scanner.SetColor(rasterx.ApplyOpacity(svgicon.PlainColor{}, 0))
			return
		}
		if pattern.Units == svgicon.ObjectBoundingBox {
			fRect := scanner.GetPathExtent()
			mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
			mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
			pattern.Bounds.X, pattern.Bounds.Y = mnx, mny
			pattern.Bounds.W, pattern.Bounds.H = mxx-mnx, mxy-mny
		}
		grad := toRasterxGradient(pattern)
		scanner.SetColor(grad.GetColorFunction(opacity))
	}
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgicon.Round:     rasterx.Round,
		svgicon.Bevel:     rasterx.Bevel,
		svgicon.Miter:     rasterx.Miter,
		svgicon.MiterClip: rasterx.MiterClip,
		svgicon.Arc:       rasterx.Arc,
		svgicon.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgicon.ButtCap:      rasterx.ButtCap,
		svgicon.SquareCap:    rasterx.SquareCap,
		svgicon.RoundCap:     rasterx.RoundCap,
		svgicon.CubicCap:     rasterx.CubicCap,
		svgicon.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgicon.FlatGap:      rasterx.FlatGap,
		svgicon.RoundGap:     rasterx.RoundGap,
		svgicon.CubicGap:     rasterx.CubicGap,
		svgicon.QuadraticGap: rasterx.QuadraticGap,
	}
)
