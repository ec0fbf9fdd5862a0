// Package element implements an SVG image element for a retained mode
// GUI, driven by the host through three phases per frame:
// layout request, prepaint and paint.
package element

import (
	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/svgraster"
)

// ElementID is an optional, host unique, element name.
type ElementID string

// LayoutID identifies a node of the host layout tree.
type LayoutID int

// HitboxID identifies a hitbox inserted during prepaint.
type HitboxID int

// Hitbox is a mouse sensitive area.
type Hitbox struct {
	ID     HitboxID
	Bounds Bounds
}

// Dimension is an optional length: the zero value means auto.
type Dimension struct {
	Value   Pixels
	Defined bool
}

// Px returns a defined dimension.
func Px(v Pixels) Dimension { return Dimension{Value: v, Defined: true} }

// Style is the layout request of an element.
type Style struct {
	Width, Height       Dimension
	MinWidth, MinHeight Dimension
	MaxWidth, MaxHeight Dimension
	FlexGrow            float64
}

// Refine returns s with the defined fields of `other` applied.
func (s Style) Refine(other Style) Style {
	apply := func(dst *Dimension, src Dimension) {
		if src.Defined {
			*dst = src
		}
	}
	apply(&s.Width, other.Width)
	apply(&s.Height, other.Height)
	apply(&s.MinWidth, other.MinWidth)
	apply(&s.MinHeight, other.MinHeight)
	apply(&s.MaxWidth, other.MaxWidth)
	apply(&s.MaxHeight, other.MaxHeight)
	if other.FlexGrow != 0 {
		s.FlexGrow = other.FlexGrow
	}
	return s
}

// MouseEventKind is the type of a mouse event.
type MouseEventKind uint8

const (
	MouseDown MouseEventKind = iota
	MouseUp
	MouseMove
)

func (k MouseEventKind) String() string {
	switch k {
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	case MouseMove:
		return "move"
	default:
		return "unknown"
	}
}

// MouseEvent is dispatched by the host to the handlers registered
// with Window.OnMouse.
type MouseEvent struct {
	Kind     MouseEventKind
	Position Point
}

// Window is the host, seen from an element.
type Window interface {
	// RequestLayout adds a layout node and returns its id.
	// The bounds of the node are then given to Prepaint and Paint.
	RequestLayout(style Style, children []LayoutID) LayoutID

	// InsertHitbox registers a mouse sensitive area for the current frame.
	InsertHitbox(bounds Bounds) Hitbox

	// UseAsset returns the bitmap for `key`, starting its load if
	// needed. When ready is false the load is pending, and the host
	// schedules a new frame when it completes.
	UseAsset(key asset.SizedSource) (bmp *svgraster.Bitmap, err error, ready bool)

	// PaintImage draws `bmp` scaled into `bounds`.
	PaintImage(bounds Bounds, cornerRadius Pixels, bmp *svgraster.Bitmap, frame int, flip bool) error

	// OnMouse registers `handler` for every event of the given kind,
	// until the next frame. Handlers check the hitbox themselves.
	OnMouse(hitbox Hitbox, kind MouseEventKind, handler func(MouseEvent))
}

// RequestLayoutState is produced by RequestLayout and passed
// to Prepaint and Paint.
type RequestLayoutState struct {
	// Bitmap is nil when there is nothing to paint.
	Bitmap *svgraster.Bitmap
}

// PrepaintState is produced by Prepaint and passed to Paint.
type PrepaintState struct {
	Hitbox Hitbox
	Bitmap *svgraster.Bitmap
}

// Element takes part in the frame phases of the host.
type Element interface {
	ID() ElementID
	RequestLayout(w Window) (LayoutID, RequestLayoutState)
	Prepaint(w Window, bounds Bounds, st RequestLayoutState) PrepaintState
	Paint(w Window, bounds Bounds, st RequestLayoutState, ps PrepaintState)
}
