// Package svgicon parses SVG documents into an abstract representation
// (paths, styles, gradients and text spans), which can then be consumed
// by painting drivers such as svgraster.
//
// Only the static subset of SVG needed by icons and illustrations is
// supported: shapes, paths, groups, definitions and <use>, linear and
// radial gradients, and simple text.
package svgicon

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// SvgPath binds a style to a path, or to a text span
// which is outlined at drawing time.
type SvgPath struct {
	Path  Path
	Style PathStyle
	Text  *TextSpan
}

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// SvgIcon holds data from parsed SVGs.
// See the `Draw` methods to use it.
type SvgIcon struct {
	// ViewBox defaults to (0, 0, Width, Height) when the
	// root element has no viewBox attribute.
	ViewBox     Bounds
	HasViewBox  bool
	AspectRatio PreserveAspectRatio

	// Width and Height are the root width and height attributes,
	// converted to user units. Zero means absent or relative.
	Width, Height float64

	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	SVGPaths     []SvgPath
	Transform    Matrix2D

	grads map[string]*Gradient
	defs  map[string][]definition
}

type (
	// iconCursor is used while parsing SVG files
	iconCursor struct {
		pathCursor
		icon                                    *SvgIcon
		styleStack                              []PathStyle
		grad                                    *Gradient
		inTitleText, inDescText, inGrad, inDefs bool
		currentDef                              []definition

		seenRoot bool
		skip     int // depth inside an element whose content is not rendered

		text      *TextSpan // pending <text> content
		textStyle PathStyle
	}

	// definition is used to store what's given in a def tag
	definition struct {
		ID, Tag string
		Attrs   []xml.Attr
	}
)

// nonRendered lists the containers whose children must not be drawn
// directly.
var nonRendered = map[string]bool{
	"clipPath": true, "mask": true, "pattern": true, "marker": true,
	"symbol": true, "filter": true, "metadata": true, "style": true,
	"script": true, "foreignObject": true,
}

// ReadIconStream reads the Icon from the given io.Reader.
// This only supports a sub-set of SVG, but
// is enough to draw many icons. errMode determines if the icon ignores, errors out, or logs a warning
// if it does not handle an element or an attribute found in the icon file.
// Malformed XML and a missing <svg> root element are always errors.
func ReadIconStream(stream io.Reader, errMode ErrorMode) (*SvgIcon, error) {
	icon := &SvgIcon{defs: make(map[string][]definition), grads: make(map[string]*Gradient), Transform: Identity}
	cursor := &iconCursor{styleStack: []PathStyle{DefaultStyle}, icon: icon}
	cursor.errorMode = errMode
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			if cursor.skip > 0 {
				cursor.skip++
				continue
			}
			if !cursor.seenRoot {
				if se.Name.Local != "svg" {
					return nil, errNoSVGRoot
				}
				cursor.seenRoot = true
			}
			// Reads all recognized style attributes from the start element
			// and places it on top of the styleStack
			if err = cursor.pushStyle(se.Name.Local, se.Attr); err != nil {
				return nil, err
			}
			if err = cursor.readStartElement(se); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if cursor.skip > 0 {
				cursor.skip--
				if cursor.skip == 0 {
					cursor.popStyle()
				}
				continue
			}
			cursor.readEndElement(se)
		case xml.CharData:
			cursor.readCharData(se)
		}
	}
	if !cursor.seenRoot {
		return nil, errEmptyDocument
	}
	return icon, nil
}

// ReadIcon reads the Icon from the named file.
// See ReadIconStream for the supported features.
func ReadIcon(iconFile string, errMode ErrorMode) (*SvgIcon, error) {
	fin, errf := os.Open(iconFile)
	if errf != nil {
		return nil, errf
	}
	defer fin.Close()
	return ReadIconStream(fin, errMode)
}

// Parse is a convenience wrapper for ReadIconStream on in-memory data.
func Parse(data []byte, errMode ErrorMode) (*SvgIcon, error) {
	return ReadIconStream(bytes.NewReader(data), errMode)
}

func (c *iconCursor) readStartElement(se xml.StartElement) (err error) {
	name := se.Name.Local
	skipDef := name == "radialGradient" || name == "linearGradient" || c.inGrad
	if c.inDefs && !skipDef {
		id := ""
		for _, attr := range se.Attr {
			if attr.Name.Local == "id" {
				id = attr.Value
			}
		}
		if id != "" && len(c.currentDef) > 0 {
			c.icon.defs[c.currentDef[0].ID] = c.currentDef
			c.currentDef = make([]definition, 0)
		}
		c.currentDef = append(c.currentDef, definition{
			ID:    id,
			Tag:   name,
			Attrs: se.Attr,
		})
		return nil
	}
	if nonRendered[name] {
		c.skip = 1
		return nil
	}
	df, ok := drawFuncs[name]
	if !ok {
		return c.handleError(name, errors.New("unsupported element"))
	}
	if err = df(c, se.Attr); err != nil {
		c.path.Clear()
		return c.handleError(name, err)
	}
	c.flushPath()
	return nil
}

// flushPath moves the path compiled from the current element to the icon.
func (c *iconCursor) flushPath() {
	if len(c.path) == 0 {
		return
	}
	pathCopy := append(Path{}, c.path...)
	c.icon.SVGPaths = append(c.icon.SVGPaths, SvgPath{Path: pathCopy, Style: c.currentStyle()})
	c.path = c.path[:0]
}

func (c *iconCursor) readEndElement(se xml.EndElement) {
	switch se.Name.Local {
	case "g", "symbol":
		if c.inDefs {
			c.currentDef = append(c.currentDef, definition{
				Tag: "endg",
			})
		}
	case "title":
		c.inTitleText = false
	case "desc":
		c.inDescText = false
	case "defs":
		if len(c.currentDef) > 0 {
			c.icon.defs[c.currentDef[0].ID] = c.currentDef
			c.currentDef = make([]definition, 0)
		}
		c.inDefs = false
	case "radialGradient", "linearGradient":
		c.inGrad = false
	case "text":
		c.flushText()
	}
	c.popStyle()
}

func (c *iconCursor) readCharData(data xml.CharData) {
	icon := c.icon
	switch {
	case c.inTitleText:
		icon.Titles[len(icon.Titles)-1] += string(data)
	case c.inDescText:
		icon.Descriptions[len(icon.Descriptions)-1] += string(data)
	case c.text != nil:
		c.text.Text += string(data)
	}
}

// flushText emits the pending text span, with collapsed white spaces.
func (c *iconCursor) flushText() {
	if c.text == nil {
		return
	}
	span := c.text
	c.text = nil
	span.Text = strings.Join(strings.Fields(span.Text), " ")
	if span.Text == "" {
		return
	}
	c.icon.SVGPaths = append(c.icon.SVGPaths, SvgPath{Style: c.textStyle, Text: span})
}

// IntrinsicSize returns the size of the document in user units:
// the width and height attributes, completed by the view box aspect ratio,
// or the view box size. ok is false when no positive size can be found.
func (s *SvgIcon) IntrinsicSize() (w, h float64, ok bool) {
	w, h = s.Width, s.Height
	vb := s.ViewBox
	switch {
	case w > 0 && h > 0:
	case w > 0 && s.HasViewBox && vb.W > 0 && vb.H > 0:
		h = w * vb.H / vb.W
	case h > 0 && s.HasViewBox && vb.W > 0 && vb.H > 0:
		w = h * vb.W / vb.H
	default:
		w, h = vb.W, vb.H
	}
	return w, h, w > 0 && h > 0
}

// SetTarget sets the Transform matrix to draw within the bounds of the rectangle arguments,
// stretching the view box if needed.
func (s *SvgIcon) SetTarget(x, y, w, h float64) {
	scaleW := w / s.ViewBox.W
	scaleH := h / s.ViewBox.H
	s.Transform = Identity.Translate(x, y).Scale(scaleW, scaleH).Translate(-s.ViewBox.X, -s.ViewBox.Y)
}

// FitTarget sets the Transform matrix to draw the view box into the rectangle arguments,
// honoring the preserveAspectRatio attribute of the document.
func (s *SvgIcon) FitTarget(x, y, w, h float64) {
	s.Transform = s.AspectRatio.ViewBoxTransform(s.ViewBox, x, y, w, h)
}
