package svgraster

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/benoitkugler/svgimg/imgerr"
	"github.com/benoitkugler/svgimg/svgfont"
	"github.com/benoitkugler/svgimg/svgicon"
	"github.com/benoitkugler/svgimg/svglog"
)

// Scale is the oversampling factor: a document of logical size (w, h)
// is rendered in a ceil(w*Scale) x ceil(h*Scale) pixel buffer.
const Scale = 2

// MaxPixels is the default limit on the pixel count of a bitmap.
const MaxPixels = 1 << 26

type options struct {
	fonts     svgicon.TextOutliner
	errorMode svgicon.ErrorMode
	maxPixels int
}

// Option configures Rasterize.
type Option func(*options)

// WithFonts sets the outliner used for <text> elements, instead of
// the system font index.
func WithFonts(fonts svgicon.TextOutliner) Option {
	return func(o *options) { o.fonts = fonts }
}

// WithErrorMode sets how unsupported elements are handled.
// The default, svgicon.WarnErrorMode, skips them and logs at debug level.
func WithErrorMode(mode svgicon.ErrorMode) Option {
	return func(o *options) { o.errorMode = mode }
}

// WithMaxPixels overrides MaxPixels.
func WithMaxPixels(n int) Option {
	return func(o *options) { o.maxPixels = n }
}

var errNoSize = errors.New("document has no intrinsic size")

// Rasterize parses the SVG document `data` and renders it for a logical
// size of width x height. The returned bitmap has ceil(width*Scale) x
// ceil(height*Scale) pixels, in straight alpha BGRA, and one reference.
//
// The document is drawn at its intrinsic size (as given by its width, height
// and viewBox attributes) multiplied by Scale; width and height only size the
// pixel buffer. Callers are expected to request the document's own size.
//
// Errors are *imgerr.Error values of kind KindInvalidSize,
// KindInvalidDocument or KindAllocationFailure.
func Rasterize(data []byte, width, height float64, opts ...Option) (*Bitmap, error) {
	const op = "svgraster.Rasterize"

	cfg := options{errorMode: svgicon.WarnErrorMode, maxPixels: MaxPixels}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !validDimension(width) || !validDimension(height) {
		return nil, imgerr.Errorf(op, imgerr.KindInvalidSize, "invalid size %gx%g", width, height)
	}
	pw, ph := math.Ceil(width*Scale), math.Ceil(height*Scale)
	if pw*ph > float64(cfg.maxPixels) {
		return nil, imgerr.Errorf(op, imgerr.KindAllocationFailure,
			"%gx%g pixels exceed the limit of %d", pw, ph, cfg.maxPixels)
	}

	icon, err := svgicon.Parse(data, cfg.errorMode)
	if err != nil {
		return nil, imgerr.New(op, imgerr.KindInvalidDocument, err)
	}
	iw, ih, ok := icon.IntrinsicSize()
	if !ok {
		return nil, imgerr.New(op, imgerr.KindInvalidDocument, errNoSize)
	}

	img, err := allocate(int(pw), int(ph))
	if err != nil {
		return nil, imgerr.New(op, imgerr.KindAllocationFailure, err)
	}

	fonts := cfg.fonts
	if fonts == nil && icon.HasText() {
		fonts = svgfont.System()
	}
	icon.FitTarget(0, 0, iw*Scale, ih*Scale)
	if err := drawIcon(icon, img, fonts); err != nil {
		return nil, imgerr.New(op, imgerr.KindInvalidDocument, err)
	}

	toStraightBGRA(img.Pix)
	svglog.Logger().Debug("svgraster: rasterized", "width", img.Rect.Dx(), "height", img.Rect.Dy())
	return newBitmap(img.Pix, img.Rect.Dx(), img.Rect.Dy(), img.Stride), nil
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// allocate returns a new image, converting allocation panics to errors.
func allocate(w, h int) (img *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("allocating %dx%d pixels: %v", w, h, r)
		}
	}()
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func drawIcon(icon *svgicon.SvgIcon, img *image.RGBA, fonts svgicon.TextOutliner) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering failed: %v", r)
		}
	}()
	icon.Draw(NewRenderer(img), 1, fonts)
	return nil
}
