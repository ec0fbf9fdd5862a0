package surface

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/element"
	"github.com/benoitkugler/svgimg/svgraster"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
	<rect width="10" height="10" fill="red"/>
</svg>`

func render(t *testing.T, s *Surface, elements ...element.Element) FrameStats {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := s.Render(ctx, elements...)
	require.NoError(t, err)
	return stats
}

func TestRenderWaitsForLoads(t *testing.T) {
	s := New(20, 40, asset.NewLoader())
	img := element.NewSvgImg().Source(asset.String(redSquare), 10, 10).H(20)

	first := s.Frame(img)
	assert.Equal(t, 1, first.Pending)
	assert.Equal(t, 0, first.Painted)

	stats := render(t, s, img)
	assert.Equal(t, FrameStats{Elements: 1, Painted: 1}, stats)

	out := s.Image()
	assert.Equal(t, image.Rect(0, 0, 20, 40), out.Bounds())
	c := out.RGBAAt(10, 10)
	assert.GreaterOrEqual(t, c.R, uint8(250))
	assert.Equal(t, uint8(0xff), c.A)
	assert.Equal(t, color.RGBA{}, out.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(10, 30))
}

func TestRenderScaleAndBackground(t *testing.T) {
	s := New(10, 10, asset.NewLoader(), WithScale(2), WithBackground(color.White))
	stats := render(t, s, element.NewSvgImg().Source(asset.String(redSquare), 10, 10).Flex(1))
	assert.Equal(t, 1, stats.Painted)

	out := s.Image()
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())
	c := out.RGBAAt(10, 10)
	assert.GreaterOrEqual(t, c.R, uint8(250))
	assert.LessOrEqual(t, c.G, uint8(5))
}

func TestRenderFailedLoad(t *testing.T) {
	s := New(10, 10, asset.NewLoader(asset.WithResolver(asset.Map{})), WithBackground(color.White))
	stats := render(t, s, element.NewSvgImg().SourcePath("missing.svg", 10, 10).Flex(1))
	assert.Equal(t, FrameStats{Elements: 1}, stats)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, s.Image().RGBAAt(5, 5))
}

func TestLayoutColumn(t *testing.T) {
	nodes := []layoutNode{
		{style: element.Style{Width: element.Px(40), Height: element.Px(20)}},
		{style: element.Style{FlexGrow: 1}},
		{style: element.Style{Height: element.Px(30), MaxHeight: element.Px(10)}},
	}
	layoutColumn(nodes, element.BoundsFromLTWH(0, 0, 100, 100), 10)
	assert.Equal(t, element.BoundsFromLTWH(0, 0, 40, 20), nodes[0].bounds)
	assert.Equal(t, element.BoundsFromLTWH(0, 30, 100, 50), nodes[1].bounds)
	assert.Equal(t, element.BoundsFromLTWH(0, 90, 100, 10), nodes[2].bounds)
}

func TestLayoutChildren(t *testing.T) {
	nodes := []layoutNode{
		{style: element.Style{Height: element.Px(5)}},
		{style: element.Style{Height: element.Px(20)}, children: []element.LayoutID{1}},
		{style: element.Style{Height: element.Px(10), MinWidth: element.Px(200)}},
	}
	layoutColumn(nodes, element.BoundsFromLTWH(5, 5, 90, 90), 0)
	assert.Equal(t, element.BoundsFromLTWH(5, 5, 90, 20), nodes[1].bounds)
	assert.Equal(t, nodes[1].bounds, nodes[0].bounds)
	assert.Equal(t, element.BoundsFromLTWH(5, 25, 200, 10), nodes[2].bounds)
}

func TestDispatch(t *testing.T) {
	clicks := 0
	img := element.NewSvgImg().H(10).OnClick(func(element.MouseEvent) { clicks++ })
	s := New(20, 20, asset.NewLoader(), WithPadding(2))
	s.Frame(img)

	h, ok := s.HitboxAt(element.Point{X: 5, Y: 5})
	require.True(t, ok)
	assert.Equal(t, element.BoundsFromLTWH(2, 2, 16, 10), h.Bounds)
	_, ok = s.HitboxAt(element.Point{X: 5, Y: 15})
	assert.False(t, ok)

	p := element.Point{X: 5, Y: 5}
	s.Dispatch(element.MouseEvent{Kind: element.MouseDown, Position: p})
	s.Dispatch(element.MouseEvent{Kind: element.MouseUp, Position: p})
	assert.Equal(t, 1, clicks)
}

func TestPaintImageErrors(t *testing.T) {
	s := New(10, 10, asset.NewLoader())
	bounds := element.BoundsFromLTWH(0, 0, 10, 10)
	bmp := svgraster.NewBitmap([]byte{0, 0, 0xff, 0xff}, 1, 1, 4)

	assert.Error(t, s.PaintImage(bounds, 0, nil, 0, false))
	assert.Error(t, s.PaintImage(bounds, 0, bmp, 1, false))
	assert.NoError(t, s.PaintImage(element.Bounds{}, 0, bmp, 0, false))
	// a holder may still paint a bitmap its cache has let go of
	bmp.Release()
	assert.NoError(t, s.PaintImage(bounds, 0, bmp, 0, false))
}

func TestPaintImageCorners(t *testing.T) {
	s := New(20, 20, asset.NewLoader())
	pix := make([]byte, 4*4*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+3] = 0xff, 0xff // opaque blue
	}
	bmp := svgraster.NewBitmap(pix, 4, 4, 16)
	require.NoError(t, s.PaintImage(element.BoundsFromLTWH(0, 0, 20, 20), 8, bmp, 0, false))

	out := s.Image()
	assert.Equal(t, color.RGBA{}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, out.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, out.RGBAAt(10, 0))
}

func TestFlipRows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 3))
	copy(img.Pix, []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3})
	flipRows(img)
	assert.Equal(t, []byte{3, 3, 3, 3, 2, 2, 2, 2, 1, 1, 1, 1}, img.Pix)
}

func TestRoundedRect(t *testing.T) {
	m := roundedRect{image.Rect(0, 0, 20, 10), 4}
	assert.Equal(t, color.Transparent, m.At(0, 0))
	assert.Equal(t, color.Opaque, m.At(10, 5))
	assert.Equal(t, color.Opaque, m.At(0, 5))
	assert.Equal(t, color.Transparent, m.At(-1, 5))
	_, isPartial := m.At(1, 1).(color.Alpha)
	assert.True(t, isPartial)
}
