package surface

import (
	"math"

	"github.com/benoitkugler/svgimg/element"
)

type layoutNode struct {
	style    element.Style
	children []element.LayoutID
	bounds   element.Bounds
}

// resolveLength clamps `v` by the optional min and max.
func resolveLength(v element.Pixels, min, max element.Dimension) element.Pixels {
	if max.Defined && v > max.Value {
		v = max.Value
	}
	if min.Defined && v < min.Value {
		v = min.Value
	}
	return element.Pixels(math.Max(0, float64(v)))
}

// layoutColumn stacks the root nodes (the ones which are not the
// child of another node) from top to bottom inside `area`, separated
// by `gap`. Auto widths fill the area, auto heights are zero;
// the remaining height is shared by flex grow factors.
// Children, which are requested before their parent, are given
// the bounds of their parent.
func layoutColumn(nodes []layoutNode, area element.Bounds, gap element.Pixels) {
	isChild := make([]bool, len(nodes))
	for _, n := range nodes {
		for _, c := range n.children {
			if i := int(c) - 1; i >= 0 && i < len(nodes) {
				isChild[i] = true
			}
		}
	}
	var roots []int
	for i := range nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		return
	}

	widths := make([]element.Pixels, len(roots))
	heights := make([]element.Pixels, len(roots))
	var (
		used      element.Pixels
		totalFlex float64
	)
	for j, i := range roots {
		st := nodes[i].style
		w := area.Size.Width
		if st.Width.Defined {
			w = st.Width.Value
		}
		widths[j] = resolveLength(w, st.MinWidth, st.MaxWidth)
		var h element.Pixels
		if st.Height.Defined {
			h = st.Height.Value
		}
		heights[j] = resolveLength(h, st.MinHeight, st.MaxHeight)
		used += heights[j]
		totalFlex += st.FlexGrow
	}
	used += gap * element.Pixels(len(roots)-1)

	if free := area.Size.Height - used; free > 0 && totalFlex > 0 {
		for j, i := range roots {
			st := nodes[i].style
			if st.FlexGrow <= 0 {
				continue
			}
			grown := heights[j] + free*element.Pixels(st.FlexGrow/totalFlex)
			heights[j] = resolveLength(grown, st.MinHeight, st.MaxHeight)
		}
	}

	y := area.Origin.Y
	for j, i := range roots {
		nodes[i].bounds = element.BoundsFromLTWH(area.Origin.X, y, widths[j], heights[j])
		y += heights[j] + gap
		placeChildren(nodes, i)
	}
}

func placeChildren(nodes []layoutNode, parent int) {
	for _, c := range nodes[parent].children {
		i := int(c) - 1
		if i < 0 || i >= parent {
			continue
		}
		nodes[i].bounds = nodes[parent].bounds
		placeChildren(nodes, i)
	}
}
