// Package surface is an offscreen host for elements: it implements
// element.Window over an in-memory image, and drives the frame phases.
package surface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/element"
	"github.com/benoitkugler/svgimg/svglog"
	"github.com/benoitkugler/svgimg/svgraster"
)

var _ element.Window = (*Surface)(nil)

type mouseHandler struct {
	hitbox  element.Hitbox
	kind    element.MouseEventKind
	handler func(element.MouseEvent)
}

// Option configures a Surface.
type Option func(*Surface)

// WithScale sets the number of device pixels per logical pixel (default 1).
func WithScale(scale float64) Option {
	return func(s *Surface) { s.scale = scale }
}

// WithBackground sets the color the image is cleared with
// before each frame (default transparent).
func WithBackground(c color.Color) Option {
	return func(s *Surface) { s.background = c }
}

// WithPadding sets the margin around the laid out elements.
func WithPadding(p element.Pixels) Option {
	return func(s *Surface) { s.padding = p }
}

// WithGap sets the vertical space between elements.
func WithGap(g element.Pixels) Option {
	return func(s *Surface) { s.gap = g }
}

// FrameStats describes a frame.
type FrameStats struct {
	Elements int // elements laid out
	Pending  int // assets still loading
	Painted  int // images painted
	Failed   int // rejected paint calls
}

// Surface renders elements into an *image.RGBA.
// Elements are stacked in a column, see Frame.
//
// The frame methods are not safe for concurrent use; only the
// notification of completed loads comes from other goroutines.
type Surface struct {
	loader     *asset.Loader
	size       element.Size
	scale      float64
	background color.Color
	padding    element.Pixels
	gap        element.Pixels

	img *image.RGBA

	dirty chan struct{}

	// frame state
	nodes    []layoutNode
	hitboxes []element.Hitbox
	handlers []mouseHandler
	stats    FrameStats
}

// New returns a surface of logical size width x height, loading its
// images with `loader`.
func New(width, height element.Pixels, loader *asset.Loader, opts ...Option) *Surface {
	s := &Surface{
		loader:     loader,
		size:       element.Size{Width: width, Height: height},
		scale:      1,
		background: color.Transparent,
		dirty:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	w := int(math.Ceil(float64(width) * s.scale))
	h := int(math.Ceil(float64(height) * s.scale))
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return s
}

// Image returns the rendered image, valid until the next frame.
func (s *Surface) Image() *image.RGBA { return s.img }

// Loader returns the asset loader of the surface.
func (s *Surface) Loader() *asset.Loader { return s.loader }

// Invalidated is signaled when a load started by a frame completes:
// the surface should then be rendered again.
func (s *Surface) Invalidated() <-chan struct{} { return s.dirty }

func (s *Surface) invalidate() {
	select {
	case s.dirty <- struct{}{}:
	default: // already signaled
	}
}

// Frame runs the layout, prepaint and paint phases on `elements`.
func (s *Surface) Frame(elements ...element.Element) FrameStats {
	s.nodes = s.nodes[:0]
	s.hitboxes = s.hitboxes[:0]
	s.handlers = s.handlers[:0]
	s.stats = FrameStats{Elements: len(elements)}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)

	layoutIDs := make([]element.LayoutID, len(elements))
	layoutStates := make([]element.RequestLayoutState, len(elements))
	for i, el := range elements {
		layoutIDs[i], layoutStates[i] = el.RequestLayout(s)
	}

	area := element.BoundsFromLTWH(s.padding, s.padding, s.size.Width-2*s.padding, s.size.Height-2*s.padding)
	layoutColumn(s.nodes, area, s.gap)

	bounds := make([]element.Bounds, len(elements))
	prepaintStates := make([]element.PrepaintState, len(elements))
	for i, el := range elements {
		bounds[i] = s.boundsOf(layoutIDs[i])
		prepaintStates[i] = el.Prepaint(s, bounds[i], layoutStates[i])
	}
	for i, el := range elements {
		el.Paint(s, bounds[i], layoutStates[i], prepaintStates[i])
	}

	svglog.Logger().Debug("surface: frame",
		"elements", s.stats.Elements, "pending", s.stats.Pending, "painted", s.stats.Painted)
	return s.stats
}

// Render runs frames until no asset is pending, waiting for the loads
// between frames.
func (s *Surface) Render(ctx context.Context, elements ...element.Element) (FrameStats, error) {
	for {
		// drop a stale signal: this frame sees every completed load
		select {
		case <-s.dirty:
		default:
		}
		stats := s.Frame(elements...)
		if stats.Pending == 0 {
			return stats, nil
		}
		select {
		case <-s.dirty:
		case <-ctx.Done():
			return stats, fmt.Errorf("surface: %d assets still loading: %w", stats.Pending, ctx.Err())
		}
	}
}

func (s *Surface) boundsOf(id element.LayoutID) element.Bounds {
	if i := int(id) - 1; i >= 0 && i < len(s.nodes) {
		return s.nodes[i].bounds
	}
	return element.Bounds{}
}

// RequestLayout implements element.Window.
func (s *Surface) RequestLayout(style element.Style, children []element.LayoutID) element.LayoutID {
	s.nodes = append(s.nodes, layoutNode{style: style, children: children})
	return element.LayoutID(len(s.nodes))
}

// InsertHitbox implements element.Window.
func (s *Surface) InsertHitbox(bounds element.Bounds) element.Hitbox {
	h := element.Hitbox{ID: element.HitboxID(len(s.hitboxes) + 1), Bounds: bounds}
	s.hitboxes = append(s.hitboxes, h)
	return h
}

// UseAsset implements element.Window, by requesting the asset to the loader.
// Completed loads signal Invalidated.
func (s *Surface) UseAsset(key asset.SizedSource) (*svgraster.Bitmap, error, bool) {
	bmp, err, ready := s.loader.Request(key, s.invalidate)
	if !ready {
		s.stats.Pending++
	}
	return bmp, err, ready
}

// PaintImage implements element.Window. The bitmap is scaled with
// a Catmull-Rom filter and composited over the image.
// Only frame 0 exists.
func (s *Surface) PaintImage(bounds element.Bounds, cornerRadius element.Pixels, bmp *svgraster.Bitmap, frame int, flip bool) error {
	err := s.paintImage(bounds, cornerRadius, bmp, frame, flip)
	if err != nil {
		s.stats.Failed++
	} else {
		s.stats.Painted++
	}
	return err
}

func (s *Surface) paintImage(bounds element.Bounds, cornerRadius element.Pixels, bmp *svgraster.Bitmap, frame int, flip bool) error {
	if bmp == nil {
		return errors.New("no bitmap")
	}
	if frame != 0 {
		return fmt.Errorf("frame %d out of range", frame)
	}
	src := bmp.ToNRGBA()
	if flip {
		flipRows(src)
	}
	dst := bounds.Scale(s.scale).ImageRect()
	if dst.Empty() {
		return nil
	}
	var opts *xdraw.Options
	if cornerRadius > 0 {
		opts = &xdraw.Options{DstMask: roundedRect{dst, float64(cornerRadius) * s.scale}}
	}
	xdraw.CatmullRom.Scale(s.img, dst, src, src.Bounds(), xdraw.Over, opts)
	return nil
}

func flipRows(img *image.NRGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

// OnMouse implements element.Window.
func (s *Surface) OnMouse(hitbox element.Hitbox, kind element.MouseEventKind, handler func(element.MouseEvent)) {
	s.handlers = append(s.handlers, mouseHandler{hitbox, kind, handler})
}

// Dispatch sends `ev` to the handlers registered during the last frame.
func (s *Surface) Dispatch(ev element.MouseEvent) {
	for _, h := range s.handlers {
		if h.kind == ev.Kind {
			h.handler(ev)
		}
	}
}

// HitboxAt returns the last inserted hitbox containing `p`.
func (s *Surface) HitboxAt(p element.Point) (element.Hitbox, bool) {
	for i := len(s.hitboxes) - 1; i >= 0; i-- {
		if s.hitboxes[i].Bounds.Contains(p) {
			return s.hitboxes[i], true
		}
	}
	return element.Hitbox{}, false
}

// roundedRect is an alpha mask for a rectangle with rounded corners.
type roundedRect struct {
	rect   image.Rectangle
	radius float64
}

func (r roundedRect) ColorModel() color.Model { return color.AlphaModel }

func (r roundedRect) Bounds() image.Rectangle { return r.rect }

func (r roundedRect) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(r.rect)) {
		return color.Transparent
	}
	rad := math.Min(r.radius, math.Min(float64(r.rect.Dx()), float64(r.rect.Dy()))/2)
	px, py := float64(x)+0.5, float64(y)+0.5
	cx := math.Max(float64(r.rect.Min.X)+rad, math.Min(px, float64(r.rect.Max.X)-rad))
	cy := math.Max(float64(r.rect.Min.Y)+rad, math.Min(py, float64(r.rect.Max.Y)-rad))
	d := math.Hypot(px-cx, py-cy)
	switch {
	case d <= math.Max(rad-0.5, 0):
		return color.Opaque
	case d >= rad+0.5:
		return color.Transparent
	default:
		return color.Alpha{A: uint8((rad + 0.5 - d) * 0xff)}
	}
}
