package svgraster

// toStraightBGRA converts, in place, premultiplied RGBA pixels
// (as found in image.RGBA) to straight alpha BGRA.
// Channels of fully transparent pixels are swapped but not scaled.
func toStraightBGRA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a != 0 && a != 0xff {
			r, g, b = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a)
		}
		pix[i], pix[i+1], pix[i+2] = b, g, r
	}
}

// unpremultiply returns c * 255 / a, truncated and clamped to 255.
func unpremultiply(c, a uint8) uint8 {
	v := uint32(c) * 0xff / uint32(a)
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}
