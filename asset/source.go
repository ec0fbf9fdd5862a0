// Package asset loads SVG documents and caches their rasterizations,
// keyed by source identity and logical size.
package asset

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/benoitkugler/svgimg/imgerr"
)

type sourceKind uint8

const (
	dataSource sourceKind = iota
	pathSource
)

// Source is an SVG document, given either by its bytes
// or by a path resolved through a Resolver. The zero value is
// an empty document.
type Source struct {
	kind sourceKind
	data []byte
	path string
}

// Data returns a source for the document bytes `b`, which are
// shared and must not be modified afterwards.
func Data(b []byte) Source { return Source{kind: dataSource, data: b} }

// String returns a source for the document text `s`.
func String(s string) Source { return Data([]byte(s)) }

// Path returns a source resolved by name, see Resolver.
func Path(p string) Source { return Source{kind: pathSource, path: p} }

// IsPath returns true for sources created with Path.
func (s Source) IsPath() bool { return s.kind == pathSource }

// PathName returns the path of a Path source, or an empty string.
func (s Source) PathName() string { return s.path }

// Bytes returns the bytes of a Data source, or nil.
func (s Source) Bytes() []byte { return s.data }

// SourceID identifies a Source: two sources with the same
// bytes (or the same path) have the same ID.
type SourceID struct {
	kind sourceKind
	hash uint64
	size int
	path string
}

// ID returns the identity of the source. It does not depend on any size.
func (s Source) ID() SourceID {
	if s.kind == pathSource {
		return SourceID{kind: pathSource, path: s.path}
	}
	h := fnv.New64a()
	_, _ = h.Write(s.data) // never fails
	return SourceID{kind: dataSource, hash: h.Sum64(), size: len(s.data)}
}

func (id SourceID) String() string {
	if id.kind == pathSource {
		return "path:" + id.path
	}
	return fmt.Sprintf("data:%016x:%d", id.hash, id.size)
}

func (s Source) String() string {
	if s.kind == pathSource {
		return s.path
	}
	return fmt.Sprintf("<%d bytes>", len(s.data))
}

// SizedSource is a source rendered at a logical size,
// in device independent pixels.
type SizedSource struct {
	Source        Source
	Width, Height float64
}

// Key is the comparable cache key of a SizedSource.
type Key struct {
	Source        SourceID
	Width, Height float64
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%gx%g", k.Source, k.Width, k.Height)
}

// Key returns the cache key of s.
func (s SizedSource) Key() Key {
	return Key{Source: s.Source.ID(), Width: s.Width, Height: s.Height}
}

// Validate returns an error of kind imgerr.KindInvalidSize
// if the size is not strictly positive and finite.
func (s SizedSource) Validate() error {
	if !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 1) || math.IsInf(s.Height, 1) {
		return imgerr.Errorf("asset.SizedSource", imgerr.KindInvalidSize,
			"invalid size %gx%g for %s", s.Width, s.Height, s.Source)
	}
	return nil
}
