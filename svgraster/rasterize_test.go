package svgraster

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgimg/imgerr"
	"github.com/benoitkugler/svgimg/svgicon"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
	<rect width="10" height="10" fill="red"/>
</svg>`

func pixel(b *Bitmap, x, y int) [4]byte {
	i := y*b.Stride() + x*4
	pix := b.Pix()
	return [4]byte{pix[i], pix[i+1], pix[i+2], pix[i+3]}
}

func TestRasterizeDimensions(t *testing.T) {
	for _, tc := range []struct {
		w, h   float64
		pw, ph int
	}{
		{10, 10, 20, 20},
		{10, 5, 20, 10},
		{10.3, 5.2, 21, 11},
		{0.1, 0.1, 1, 1},
	} {
		bmp, err := Rasterize([]byte(redSquare), tc.w, tc.h)
		require.NoError(t, err)
		assert.Equal(t, tc.pw, bmp.Width())
		assert.Equal(t, tc.ph, bmp.Height())
		assert.Equal(t, tc.pw*4, bmp.Stride())
		assert.Len(t, bmp.Pix(), tc.pw*tc.ph*4)
		assert.Equal(t, 1, bmp.Refs())
	}
}

func TestRasterizeRedSquare(t *testing.T) {
	bmp, err := Rasterize([]byte(redSquare), 10, 10)
	require.NoError(t, err)

	for _, p := range [][2]int{{1, 1}, {10, 10}, {18, 18}} {
		assert.Equal(t, [4]byte{0, 0, 0xff, 0xff}, pixel(bmp, p[0], p[1]))
	}
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, bmp.At(10, 10))
	assert.Equal(t, color.NRGBA{}, bmp.At(-1, 0))
	assert.Equal(t, color.NRGBA{}, bmp.At(20, 0))
}

func TestRasterizeIntrinsicSize(t *testing.T) {
	// the document keeps its own size: the extra area stays transparent
	bmp, err := Rasterize([]byte(redSquare), 20, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, bmp.Width())
	assert.Equal(t, [4]byte{0, 0, 0xff, 0xff}, pixel(bmp, 10, 10))
	assert.Equal(t, [4]byte{}, pixel(bmp, 30, 30))
}

func TestRasterizeViewBox(t *testing.T) {
	doc := `<svg viewBox="0 0 100 100"><rect x="50" width="50" height="100" fill="#0000ff"/></svg>`
	bmp, err := Rasterize([]byte(doc), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{}, pixel(bmp, 50, 100))
	assert.Equal(t, [4]byte{0xff, 0, 0, 0xff}, pixel(bmp, 150, 100))
}

func TestRasterizeInvalidSize(t *testing.T) {
	for _, size := range [][2]float64{
		{0, 10}, {10, 0}, {-1, 10}, {math.NaN(), 10}, {10, math.Inf(1)},
	} {
		bmp, err := Rasterize([]byte(redSquare), size[0], size[1])
		assert.Nil(t, bmp)
		assert.Equal(t, imgerr.KindInvalidSize, imgerr.KindOf(err), size)
		assert.True(t, errors.Is(err, imgerr.ErrInvalidSize))
	}
}

func TestRasterizeInvalidDocument(t *testing.T) {
	for _, doc := range []string{
		"",
		"not an svg document <<<",
		"<html><body/></html>",
		`<svg width="10" height="10"><rect></svg>`,
		`<svg><rect width="1" height="1"/></svg>`, // no size
		"\x89PNG\r\n\x1a\n",
	} {
		bmp, err := Rasterize([]byte(doc), 10, 10)
		assert.Nil(t, bmp)
		assert.Equal(t, imgerr.KindInvalidDocument, imgerr.KindOf(err), doc)
	}
}

func TestRasterizeMaxPixels(t *testing.T) {
	_, err := Rasterize([]byte(redSquare), 10, 10, WithMaxPixels(100))
	assert.Equal(t, imgerr.KindAllocationFailure, imgerr.KindOf(err))

	_, err = Rasterize([]byte(redSquare), 10, 10, WithMaxPixels(400))
	assert.NoError(t, err)
}

func TestRasterizeStrictMode(t *testing.T) {
	doc := `<svg width="10" height="10"><blink/></svg>`
	_, err := Rasterize([]byte(doc), 10, 10)
	assert.NoError(t, err)

	_, err = Rasterize([]byte(doc), 10, 10, WithErrorMode(svgicon.StrictErrorMode))
	assert.Equal(t, imgerr.KindInvalidDocument, imgerr.KindOf(err))
}

func TestRasterizeStroke(t *testing.T) {
	doc := `<svg width="10" height="10">
		<line x1="0" y1="5" x2="10" y2="5" stroke="black" stroke-width="2"/>
	</svg>`
	bmp, err := Rasterize([]byte(doc), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0, 0, 0, 0xff}, pixel(bmp, 10, 10))
	assert.Equal(t, [4]byte{}, pixel(bmp, 10, 2))
}

func TestRasterizeOpacity(t *testing.T) {
	doc := `<svg width="10" height="10"><rect width="10" height="10" fill="red" fill-opacity="0.5"/></svg>`
	bmp, err := Rasterize([]byte(doc), 10, 10)
	require.NoError(t, err)
	p := pixel(bmp, 10, 10)
	assert.InDelta(t, 128, int(p[3]), 2)
	assert.GreaterOrEqual(t, int(p[2]), 250) // straight alpha red
	assert.Equal(t, byte(0), p[0])
}

func TestRasterizeGradient(t *testing.T) {
	doc := `<svg width="10" height="10">
		<defs>
			<linearGradient id="g">
				<stop offset="0" stop-color="red"/>
				<stop offset="1" stop-color="blue"/>
			</linearGradient>
		</defs>
		<rect width="10" height="10" fill="url(#g)"/>
	</svg>`
	bmp, err := Rasterize([]byte(doc), 10, 10)
	require.NoError(t, err)
	left, right := bmp.NRGBAAt(1, 10), bmp.NRGBAAt(18, 10)
	assert.Greater(t, left.R, left.B)
	assert.Greater(t, right.B, right.R)
	assert.Equal(t, uint8(0xff), left.A)
}

func fixedPoint(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

type squareFonts struct{ calls int }

func (s *squareFonts) OutlineText(span svgicon.TextSpan) (svgicon.Path, error) {
	s.calls++
	var p svgicon.Path
	p.Start(fixedPoint(span.X, span.Y-4))
	p.Line(fixedPoint(span.X+4, span.Y-4))
	p.Line(fixedPoint(span.X+4, span.Y))
	p.Line(fixedPoint(span.X, span.Y))
	p.Stop(true)
	return p, nil
}

func TestRasterizeText(t *testing.T) {
	doc := `<svg width="10" height="10"><text x="2" y="6" fill="lime">A</text></svg>`
	fonts := &squareFonts{}
	bmp, err := Rasterize([]byte(doc), 10, 10, WithFonts(fonts))
	require.NoError(t, err)
	assert.Equal(t, 1, fonts.calls)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, bmp.NRGBAAt(8, 8))
	assert.Equal(t, color.NRGBA{}, bmp.NRGBAAt(1, 1))
}

func TestStraightBGRA(t *testing.T) {
	pix := []byte{
		128, 0, 0, 128,
		0, 0, 0, 0,
		10, 20, 30, 255,
		64, 32, 0, 128,
		50, 0, 0, 100,
		200, 0, 0, 100, // out of gamut: clamped
	}
	toStraightBGRA(pix)
	assert.Equal(t, []byte{
		0, 0, 255, 128,
		0, 0, 0, 0,
		30, 20, 10, 255,
		0, 63, 127, 128, // truncated
		0, 0, 127, 100,
		0, 0, 255, 100,
	}, pix)
}

func TestBitmapRefCount(t *testing.T) {
	bmp := NewBitmap([]byte{1, 2, 3, 4}, 1, 1, 4)
	assert.Equal(t, 1, bmp.Refs())
	assert.Equal(t, color.NRGBA{R: 3, G: 2, B: 1, A: 4}, bmp.At(0, 0))

	assert.Same(t, bmp, bmp.Retain())
	assert.Equal(t, 2, bmp.Refs())
	bmp.Release()
	bmp.Release()
	assert.Equal(t, 0, bmp.Refs())
	// pixels outlive the last release
	assert.Equal(t, []byte{1, 2, 3, 4}, bmp.Pix())
	assert.Equal(t, color.NRGBA{R: 3, G: 2, B: 1, A: 4}, bmp.At(0, 0))

	bmp.Release()
	assert.Equal(t, 0, bmp.Refs())
}

func TestBitmapToNRGBA(t *testing.T) {
	bmp := NewBitmap([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 2, 1, 8)
	img := bmp.ToNRGBA()
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8}, img.Pix)
}
