package element

import (
	"sync"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/imgerr"
	"github.com/benoitkugler/svgimg/svglog"
)

// SvgImg displays an SVG document, rasterized for its original size and
// fitted into the element bounds: the aspect ratio is kept, the image is
// centered, and never upscaled.
//
// Documents are loaded through Window.UseAsset; until the bitmap is
// available, or when it fails to load, nothing is painted.
type SvgImg struct {
	Interactivity

	source    asset.SizedSource
	hasSource bool
	size      Size
}

var _ Element = (*SvgImg)(nil)

// NewSvgImg returns an element without source.
func NewSvgImg() *SvgImg { return &SvgImg{} }

// Source sets the document to display. `width` and `height` are the
// original size of the document.
func (s *SvgImg) Source(src asset.Source, width, height Pixels) *SvgImg {
	s.size = Size{width, height}
	s.source = asset.SizedSource{Source: src, Width: float64(width), Height: float64(height)}
	s.hasSource = true
	return s
}

// SourceData is a shortcut for Source(asset.Data(data), width, height).
func (s *SvgImg) SourceData(data []byte, width, height Pixels) *SvgImg {
	return s.Source(asset.Data(data), width, height)
}

// SourcePath is a shortcut for Source(asset.Path(path), width, height),
// the path being resolved by the host.
func (s *SvgImg) SourcePath(path string, width, height Pixels) *SvgImg {
	return s.Source(asset.Path(path), width, height)
}

// GetSource returns the source set by Source.
func (s *SvgImg) GetSource() (asset.SizedSource, bool) { return s.source, s.hasSource }

// Size returns the original size of the document.
func (s *SvgImg) Size() Size { return s.size }

// Clone returns a copy with the same source, without
// identifier, style or handlers.
func (s *SvgImg) Clone() *SvgImg {
	return &SvgImg{source: s.source, hasSource: s.hasSource, size: s.size}
}

func (s *SvgImg) WithID(id ElementID) *SvgImg {
	s.ElementID = id
	return s
}

func (s *SvgImg) W(width Pixels) *SvgImg {
	s.BaseStyle.Width = Px(width)
	return s
}

func (s *SvgImg) H(height Pixels) *SvgImg {
	s.BaseStyle.Height = Px(height)
	return s
}

// SizeFull sets both the style width and height.
func (s *SvgImg) SizeFull(width, height Pixels) *SvgImg {
	return s.W(width).H(height)
}

// Flex sets the flex grow factor.
func (s *SvgImg) Flex(grow float64) *SvgImg {
	s.BaseStyle.FlexGrow = grow
	return s
}

func (s *SvgImg) OnClick(handler func(MouseEvent)) *SvgImg {
	s.Interactivity.OnClick(handler)
	return s
}

func (s *SvgImg) OnHover(handler func(hovered bool)) *SvgImg {
	s.Interactivity.OnHover(handler)
	return s
}

func (s *SvgImg) ID() ElementID { return s.ElementID }

func (s *SvgImg) RequestLayout(w Window) (LayoutID, RequestLayoutState) {
	id := s.Interactivity.RequestLayout(w, func(style Style, w Window) LayoutID {
		return w.RequestLayout(style, nil)
	})

	var st RequestLayoutState
	if !s.hasSource {
		return id, st
	}
	bmp, err, ready := w.UseAsset(s.source)
	switch {
	case !ready:
		// loading again, after an eviction or for the first time
		reported.Delete(s.source.Key())
	case err != nil:
		reportLoadFailure(s.source.Key(), err)
	default:
		reported.Delete(s.source.Key())
		st.Bitmap = bmp
	}
	return id, st
}

func (s *SvgImg) Prepaint(w Window, bounds Bounds, st RequestLayoutState) PrepaintState {
	hitbox := s.Interactivity.Prepaint(w, bounds)
	return PrepaintState{Hitbox: hitbox, Bitmap: st.Bitmap}
}

func (s *SvgImg) Paint(w Window, bounds Bounds, _ RequestLayoutState, ps PrepaintState) {
	s.Interactivity.Paint(w, bounds, ps.Hitbox, func(w Window) {
		if ps.Bitmap == nil {
			return
		}
		imgBounds := FitAndCenter(bounds, s.size)
		if err := w.PaintImage(imgBounds, 0, ps.Bitmap, 0, false); err != nil {
			err = imgerr.New("element.SvgImg.Paint", imgerr.KindPaintSurface, err)
			svglog.Logger().Warn("failed to paint svg image",
				"element", s.ElementID, "bounds", imgBounds, "error", err)
		}
	})
}

// reported holds the keys whose current failure has been logged.
// A key is dropped as soon as it is pending or loaded again.
var reported sync.Map // asset.Key -> struct{}

// reportLoadFailure logs `err` the first time it is seen for `key`.
func reportLoadFailure(key asset.Key, err error) {
	if _, seen := reported.LoadOrStore(key, struct{}{}); seen {
		return
	}
	svglog.Logger().Debug("element: svg image unavailable", "key", key, "error", err)
}
