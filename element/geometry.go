package element

import (
	"fmt"
	"image"
	"math"
)

// Pixels is a length in device independent pixels.
type Pixels float64

func (p Pixels) Floor() Pixels { return Pixels(math.Floor(float64(p))) }

func (p Pixels) Ceil() Pixels { return Pixels(math.Ceil(float64(p))) }

// Point is a position, with Y going down.
type Point struct {
	X, Y Pixels
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Size is a width and a height.
type Size struct {
	Width, Height Pixels
}

// IsEmpty returns true if one of the dimensions is zero or negative.
func (s Size) IsEmpty() bool { return !(s.Width > 0) || !(s.Height > 0) }

// Bounds is an axis aligned rectangle.
type Bounds struct {
	Origin Point
	Size   Size
}

// BoundsFromLTWH returns the bounds with origin (left, top).
func BoundsFromLTWH(left, top, width, height Pixels) Bounds {
	return Bounds{Origin: Point{left, top}, Size: Size{width, height}}
}

func (b Bounds) Right() Pixels  { return b.Origin.X + b.Size.Width }
func (b Bounds) Bottom() Pixels { return b.Origin.Y + b.Size.Height }

// Contains returns true if `p` is inside b. The right and bottom
// edges are excluded.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Origin.X && p.X < b.Right() && p.Y >= b.Origin.Y && p.Y < b.Bottom()
}

// Scale returns the bounds of b in a space scaled by `factor`.
func (b Bounds) Scale(factor float64) Bounds {
	f := Pixels(factor)
	return BoundsFromLTWH(b.Origin.X*f, b.Origin.Y*f, b.Size.Width*f, b.Size.Height*f)
}

// ImageRect returns the smallest integer rectangle containing b.
func (b Bounds) ImageRect() image.Rectangle {
	return image.Rect(
		int(b.Origin.X.Floor()), int(b.Origin.Y.Floor()),
		int(b.Right().Ceil()), int(b.Bottom().Ceil()),
	)
}

func (b Bounds) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", b.Origin.X, b.Origin.Y, b.Size.Width, b.Size.Height)
}

// FitAndCenter returns the bounds of an image of logical size `logical`
// drawn inside `bounds`: the aspect ratio is kept, the image is centered
// and never scaled up. The origin is floored and the size ceiled to
// whole pixels.
func FitAndCenter(bounds Bounds, logical Size) Bounds {
	if logical.IsEmpty() {
		return Bounds{Origin: bounds.Origin}
	}
	ratio := math.Min(1, math.Min(
		float64(bounds.Size.Width/logical.Width),
		float64(bounds.Size.Height/logical.Height),
	))
	ratio = math.Max(ratio, 0)
	scaled := Size{logical.Width * Pixels(ratio), logical.Height * Pixels(ratio)}
	origin := Point{
		X: bounds.Origin.X + (bounds.Size.Width-scaled.Width)/2,
		Y: bounds.Origin.Y + (bounds.Size.Height-scaled.Height)/2,
	}
	return Bounds{
		Origin: Point{origin.X.Floor(), origin.Y.Floor()},
		Size:   Size{scaled.Width.Ceil(), scaled.Height.Ceil()},
	}
}
