// Package svgfont resolves the text of SVG documents to glyph outlines,
// using the fonts installed on the system or embedded by the application.
package svgfont

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgimg/svgicon"
	"github.com/benoitkugler/svgimg/svglog"
)

// ErrNoFace is returned when no font of the index can render a text.
var ErrNoFace = errors.New("svgfont: no font face available")

const defaultFamily = fontscan.SansSerif

// Index is a collection of fonts able to shape and outline text spans.
// It implements svgicon.TextOutliner, and is safe for concurrent use:
// the underlying font map and shaper are guarded by a mutex.
type Index struct {
	mu       sync.Mutex
	fontMap  *fontscan.FontMap
	shaper   shaping.HarfbuzzShaper
	splitter shaping.Segmenter
	fonts    int
}

// NewIndex returns an index without any font.
// Use UseSystemFonts or AddFS to populate it.
func NewIndex() *Index {
	return &Index{fontMap: fontscan.NewFontMap(nil)}
}

// System returns the index of the fonts installed on the machine.
// It is built on first use, which may take a while the first
// time since the font directories are scanned; later runs use
// the cache stored in the user cache directory.
var System = sync.OnceValue(func() *Index {
	ix := NewIndex()
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	start := time.Now()
	if err := ix.UseSystemFonts(cacheDir); err != nil {
		svglog.Logger().Warn("svgfont: loading system fonts", "err", err)
	}
	svglog.Logger().Info("svgfont: system font index ready", "elapsed", time.Since(start))
	return ix
})

// UseSystemFonts adds the system fonts to the index, caching
// the scan result in cacheDir.
func (ix *Index) UseSystemFonts(cacheDir string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.fontMap.UseSystemFonts(cacheDir); err != nil {
		return err
	}
	ix.fonts++
	return nil
}

// AddFS adds every font file found in fsys.
// Files which are not fonts are reported in the returned error,
// but do not prevent the other files from being added.
func (ix *Index) AddFS(fsys fs.FS) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var errs []error
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := fsys.Open(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		defer f.Close()
		resource, ok := f.(opentype.Resource)
		if !ok {
			errs = append(errs, fmt.Errorf("file %q cannot be used as a font resource", path))
			return nil
		}
		if err := ix.fontMap.AddFont(resource, path, ""); err != nil {
			errs = append(errs, fmt.Errorf("font %q: %w", path, err))
			return nil
		}
		ix.fonts++
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Empty reports whether no font source has been added.
func (ix *Index) Empty() bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.fonts == 0
}

func queryFor(style svgicon.FontStyle) fontscan.Query {
	families := style.Families
	if len(families) == 0 {
		families = []string{defaultFamily}
	}
	aspect := font.Aspect{Style: font.StyleNormal, Weight: font.WeightNormal, Stretch: font.StretchNormal}
	if style.Italic {
		aspect.Style = font.StyleItalic
	}
	if style.Weight > 0 {
		aspect.Weight = font.Weight(style.Weight)
	}
	return fontscan.Query{Families: families, Aspect: aspect}
}

// anchorShift returns the horizontal offset applied to a text
// of the given advance.
func anchorShift(anchor svgicon.TextAnchor, advance float64) float64 {
	switch anchor {
	case svgicon.AnchorMiddle:
		return -advance / 2
	case svgicon.AnchorEnd:
		return -advance
	default:
		return 0
	}
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// shape splits the span into runs with a single face and shapes them.
// It must be called with ix.mu held.
func (ix *Index) shape(span svgicon.TextSpan) []shaping.Output {
	ix.fontMap.SetQuery(queryFor(span.Font))
	runes := []rune(span.Text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Size:      fixed.Int26_6(span.Font.Size * 64),
		Script:    language.LookupScript(runes[0]),
		Language:  language.NewLanguage("en"),
	}
	var outs []shaping.Output
	for _, in := range ix.splitter.Split(input, ix.fontMap) {
		if in.Face == nil {
			continue
		}
		outs = append(outs, ix.shaper.Shape(in))
	}
	return outs
}

// OutlineText implements svgicon.TextOutliner: it returns the
// outlines of the glyphs of span, laid out on a single line starting
// at the span position and aligned according to its anchor.
func (ix *Index) OutlineText(span svgicon.TextSpan) (svgicon.Path, error) {
	if span.Text == "" || span.Font.Size <= 0 {
		return nil, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	outs := ix.shape(span)
	if len(outs) == 0 {
		return nil, ErrNoFace
	}

	var advance fixed.Int26_6
	for _, out := range outs {
		advance += out.Advance
	}
	penX := span.X + anchorShift(span.Font.Anchor, fixedToFloat(advance))

	var path svgicon.Path
	for _, out := range outs {
		scale := float32(span.Font.Size / float64(out.Face.Upem()))
		for _, g := range out.Glyphs {
			outline, ok := out.Face.GlyphData(g.GlyphID).(font.GlyphOutline)
			if ok {
				x := float32(penX + fixedToFloat(g.XOffset))
				y := float32(span.Y - fixedToFloat(g.YOffset))
				appendOutline(&path, outline, scale, x, y)
			}
			penX += fixedToFloat(g.XAdvance)
		}
	}
	return path, nil
}

func toPoint(p opentype.SegmentPoint, scale, x, y float32) fixed.Point26_6 {
	// font units go upward
	return fixed.Point26_6{
		X: fixed.Int26_6((p.X*scale + x) * 64),
		Y: fixed.Int26_6((-p.Y*scale + y) * 64),
	}
}

// appendOutline adds the glyph contours, scaled and positioned, to path.
func appendOutline(path *svgicon.Path, outline font.GlyphOutline, scale, x, y float32) {
	open := false
	for _, s := range outline.Segments {
		switch s.Op {
		case opentype.SegmentOpMoveTo:
			if open {
				path.Stop(true)
			}
			path.Start(toPoint(s.Args[0], scale, x, y))
			open = true
		case opentype.SegmentOpLineTo:
			path.Line(toPoint(s.Args[0], scale, x, y))
		case opentype.SegmentOpQuadTo:
			path.QuadBezier(toPoint(s.Args[0], scale, x, y), toPoint(s.Args[1], scale, x, y))
		case opentype.SegmentOpCubeTo:
			path.CubeBezier(toPoint(s.Args[0], scale, x, y), toPoint(s.Args[1], scale, x, y),
				toPoint(s.Args[2], scale, x, y))
		}
	}
	if open {
		path.Stop(true)
	}
}
