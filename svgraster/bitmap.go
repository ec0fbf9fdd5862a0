package svgraster

import (
	"image"
	"image/color"
	"sync/atomic"
)

// Bitmap is an immutable image with straight (non premultiplied) alpha,
// stored as BGRA bytes, row by row.
//
// A Bitmap counts its holders: it is created with one reference,
// Retain adds one and Release drops one. The count only tracks sharing
// (a cache may drop bitmaps nobody else holds); the pixels are never
// modified nor freed while the Bitmap is reachable.
// Bitmaps are safe for concurrent use.
type Bitmap struct {
	pix           []byte
	width, height int
	stride        int
	refs          atomic.Int32
}

var _ image.Image = (*Bitmap)(nil)

func newBitmap(pix []byte, width, height, stride int) *Bitmap {
	b := &Bitmap{pix: pix, width: width, height: height, stride: stride}
	b.refs.Store(1)
	return b
}

// NewBitmap returns a bitmap copying the straight alpha BGRA pixels `pix`,
// whose rows are `stride` bytes long.
func NewBitmap(pix []byte, width, height, stride int) *Bitmap {
	return newBitmap(append([]byte(nil), pix...), width, height, stride)
}

// Width returns the width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Stride returns the length of a row, in bytes.
func (b *Bitmap) Stride() int { return b.stride }

// Pix returns the BGRA pixels, which must not be modified.
func (b *Bitmap) Pix() []byte { return b.pix }

// Retain adds a reference and returns b.
func (b *Bitmap) Retain() *Bitmap {
	b.refs.Add(1)
	return b
}

// Release drops a reference. Extra releases are ignored.
func (b *Bitmap) Release() {
	for {
		n := b.refs.Load()
		if n <= 0 || b.refs.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// Refs returns the current reference count.
func (b *Bitmap) Refs() int { return int(b.refs.Load()) }

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// At implements image.Image, returning a color.NRGBA.
func (b *Bitmap) At(x, y int) color.Color {
	return b.NRGBAAt(x, y)
}

// NRGBAAt returns the color of the pixel at (x, y), or
// transparent outside the bounds.
func (b *Bitmap) NRGBAAt(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return color.NRGBA{}
	}
	i := y*b.stride + x*4
	return color.NRGBA{B: b.pix[i], G: b.pix[i+1], R: b.pix[i+2], A: b.pix[i+3]}
}

// ToNRGBA returns a copy of the bitmap as an *image.NRGBA.
func (b *Bitmap) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(b.Bounds())
	pix := b.pix
	for y := 0; y < b.height; y++ {
		src := pix[y*b.stride : y*b.stride+b.width*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.width*4]
		for i := 0; i < len(src); i += 4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], src[i+3]
		}
	}
	return out
}
