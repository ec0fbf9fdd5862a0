package svgicon

import (
	"errors"
	"fmt"

	"github.com/benoitkugler/svgimg/svglog"
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements and invalid attributes.
	IgnoreErrorMode ErrorMode = iota

	// WarnErrorMode skips them too, and reports them on the package logger.
	WarnErrorMode

	// StrictErrorMode returns an error on the first unparsed element or
	// invalid attribute.
	StrictErrorMode
)

var (
	errParamMismatch = errors.New("param mismatch")
	errZeroLengthID  = errors.New("zero length id")
	errNoSVGRoot     = errors.New("missing <svg> root element")
	errEmptyDocument = errors.New("empty svg document")
)

// handleError applies the error mode to a recoverable problem
// found while parsing `element`.
func (c *iconCursor) handleError(element string, err error) error {
	switch c.errorMode {
	case StrictErrorMode:
		return fmt.Errorf("svg element <%s>: %w", element, err)
	case WarnErrorMode:
		svglog.Logger().Debug("svgicon: skipping element", "element", element, "reason", err)
	}
	return nil
}
