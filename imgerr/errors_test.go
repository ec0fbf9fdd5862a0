package imgerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	err := New("asset.Load", KindSourceUnavailable, fs.ErrNotExist)
	assert.Equal(t, "asset.Load [source unavailable]: file does not exist", err.Error())
	assert.Equal(t, "invalid size", ErrInvalidSize.Error())
	assert.Equal(t, "svgraster.Rasterize [invalid size]", (&Error{Op: "svgraster.Rasterize", Kind: KindInvalidSize}).Error())
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("loading icon: %w", Errorf("svgicon.Parse", KindInvalidDocument, "missing <svg> root"))

	assert.True(t, errors.Is(err, ErrInvalidDocument))
	assert.False(t, errors.Is(err, ErrInvalidSize))
	assert.Equal(t, KindInvalidDocument, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	wrapped := New("asset.Load", KindSourceUnavailable, fs.ErrNotExist)
	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindUnknown:           "unknown",
		KindInvalidSize:       "invalid size",
		KindInvalidDocument:   "invalid document",
		KindSourceUnavailable: "source unavailable",
		KindAllocationFailure: "allocation failure",
		KindPaintSurface:      "paint surface",
	} {
		assert.Equal(t, want, kind.String())
	}
}
