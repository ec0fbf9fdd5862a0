package gallery

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/element"
	"github.com/benoitkugler/svgimg/surface"
	"github.com/benoitkugler/svgimg/svgfont"
	"github.com/benoitkugler/svgimg/svglog"
	"github.com/benoitkugler/svgimg/svgraster"
)

// Loader returns an asset loader resolving the story paths
// against the manifest directory. When the manifest has a font
// directory, text is outlined with these fonts only.
// `opts` are applied last.
func (m *Manifest) Loader(opts ...asset.LoaderOption) (*asset.Loader, error) {
	base := []asset.LoaderOption{asset.WithResolver(m.Resolver())}
	if m.Fonts != "" {
		fonts, err := m.loadFonts()
		if err != nil {
			return nil, err
		}
		base = append(base, asset.WithRasterizer(func(data []byte, w, h float64) (*svgraster.Bitmap, error) {
			return svgraster.Rasterize(data, w, h, svgraster.WithFonts(fonts))
		}))
	}
	return asset.NewLoader(append(base, opts...)...), nil
}

func (m *Manifest) loadFonts() (*svgfont.Index, error) {
	dir := m.Fonts
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(m.Dir, dir)
	}
	ix := svgfont.NewIndex()
	if err := ix.AddFS(os.DirFS(dir)); err != nil {
		if ix.Empty() {
			return nil, fmt.Errorf("no usable font in %s: %w", dir, err)
		}
		svglog.Logger().Warn("gallery: skipping font files", "dir", dir, "error", err)
	}
	return ix, nil
}

// Elements returns one image element per story, identified by the story name.
func (m *Manifest) Elements() []element.Element {
	out := make([]element.Element, len(m.Stories))
	for i, st := range m.Stories {
		img := element.NewSvgImg().
			WithID(element.ElementID(st.Name)).
			Source(st.Source(), element.Pixels(st.Width), element.Pixels(st.Height)).
			Flex(st.Flex)
		if st.BoxWidth > 0 {
			img.W(element.Pixels(st.BoxWidth))
		}
		if st.BoxHeight > 0 {
			img.H(element.Pixels(st.BoxHeight))
		}
		out[i] = img
	}
	return out
}

// NewSurface returns a surface with the size and appearance
// of the manifest, which must be resolved.
func (m *Manifest) NewSurface(loader *asset.Loader) *surface.Surface {
	return surface.New(element.Pixels(m.Width), element.Pixels(m.Height), loader,
		surface.WithScale(m.Scale),
		surface.WithBackground(m.background),
		surface.WithPadding(element.Pixels(m.Padding)),
		surface.WithGap(element.Pixels(m.Gap)),
	)
}

// Render draws the stories on a new surface and waits for their loads.
// The manifest must be resolved.
func (m *Manifest) Render(ctx context.Context, loader *asset.Loader) (*image.RGBA, surface.FrameStats, error) {
	s := m.NewSurface(loader)
	stats, err := s.Render(ctx, m.Elements()...)
	if err != nil {
		return nil, stats, err
	}
	return s.Image(), stats, nil
}
