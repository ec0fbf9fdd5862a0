package element

// Interactivity holds the state shared by interactive elements:
// identifier, style refinement and mouse handlers.
// Its zero value is ready to use.
type Interactivity struct {
	ElementID ElementID
	BaseStyle Style

	clickHandlers []func(MouseEvent)
	hoverHandlers []func(hovered bool)

	hovered bool
	pressed bool
}

// RequestLayout asks for a layout node through `request`,
// which receives the refined style.
func (it *Interactivity) RequestLayout(w Window, request func(style Style, w Window) LayoutID) LayoutID {
	return request(Style{}.Refine(it.BaseStyle), w)
}

// Prepaint inserts the hitbox covering `bounds`.
func (it *Interactivity) Prepaint(w Window, bounds Bounds) Hitbox {
	return w.InsertHitbox(bounds)
}

// Paint registers the mouse handlers on `hitbox`, then calls `content`.
func (it *Interactivity) Paint(w Window, bounds Bounds, hitbox Hitbox, content func(w Window)) {
	if len(it.clickHandlers) != 0 {
		w.OnMouse(hitbox, MouseDown, func(ev MouseEvent) {
			it.pressed = hitbox.Bounds.Contains(ev.Position)
		})
		w.OnMouse(hitbox, MouseUp, func(ev MouseEvent) {
			clicked := it.pressed && hitbox.Bounds.Contains(ev.Position)
			it.pressed = false
			if !clicked {
				return
			}
			for _, h := range it.clickHandlers {
				h(ev)
			}
		})
	}
	if len(it.hoverHandlers) != 0 {
		w.OnMouse(hitbox, MouseMove, func(ev MouseEvent) {
			in := hitbox.Bounds.Contains(ev.Position)
			if in == it.hovered {
				return
			}
			it.hovered = in
			for _, h := range it.hoverHandlers {
				h(in)
			}
		})
	}
	content(w)
}

// OnClick adds a handler called when the mouse is pressed and
// released inside the element.
func (it *Interactivity) OnClick(handler func(MouseEvent)) {
	it.clickHandlers = append(it.clickHandlers, handler)
}

// OnHover adds a handler called when the mouse enters or leaves the element.
func (it *Interactivity) OnHover(handler func(hovered bool)) {
	it.hoverHandlers = append(it.hoverHandlers, handler)
}
