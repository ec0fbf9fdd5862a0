// Package imgerr defines the error kinds reported while turning an SVG
// source into a bitmap and painting it.
package imgerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindInvalidSize indicates a zero, negative or non finite target size.
	KindInvalidSize
	// KindInvalidDocument indicates bytes that are not a usable SVG document.
	KindInvalidDocument
	// KindSourceUnavailable indicates a path that the resolver cannot load.
	KindSourceUnavailable
	// KindAllocationFailure indicates the pixel buffer could not be allocated,
	// or would exceed the configured pixel limit.
	KindAllocationFailure
	// KindPaintSurface indicates the host rejected a paint call.
	KindPaintSurface
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSize:
		return "invalid size"
	case KindInvalidDocument:
		return "invalid document"
	case KindSourceUnavailable:
		return "source unavailable"
	case KindAllocationFailure:
		return "allocation failure"
	case KindPaintSurface:
		return "paint surface"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is.
var (
	ErrInvalidSize       = &Error{Kind: KindInvalidSize}
	ErrInvalidDocument   = &Error{Kind: KindInvalidDocument}
	ErrSourceUnavailable = &Error{Kind: KindSourceUnavailable}
	ErrAllocationFailure = &Error{Kind: KindAllocationFailure}
	ErrPaintSurface      = &Error{Kind: KindPaintSurface}
)

// Error is the structured error returned by the rasterizer, the asset loader
// and the image element.
type Error struct {
	// Op is the operation that failed (e.g., "svgraster.Rasterize").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error, if any.
	Err error
}

// New returns an *Error wrapping err.
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf returns an *Error with a formatted message.
func Errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s [%s]", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("[%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so that
// errors.Is(err, ErrInvalidSize) holds for every invalid size error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf returns the kind of the first *Error found in the chain of err,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
