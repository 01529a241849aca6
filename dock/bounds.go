// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/bounds.go
// Summary: Converts node weights into screen rectangles.
// Usage: Used by renderers and hit testing to place stacks on screen.

package dock

// Bounds lays the tree out inside area and returns the rectangle of every node
// keyed by id. Along a box axis each child gets a share proportional to its
// weight; the last child takes whatever rounding left over.
func Bounds(l *Layout, area Rect) map[string]Rect {
	out := make(map[string]Rect)
	if l != nil {
		layoutNode(l.Root, area, out)
	}
	return out
}

func layoutNode(n *Node, r Rect, out map[string]Rect) {
	if n == nil {
		return
	}
	out[n.ID] = r
	if !n.IsBox() || len(n.Children) == 0 {
		return
	}

	total := 0.0
	for _, child := range n.Children {
		if child.Weight > 0 {
			total += child.Weight
		}
	}
	share := func(child *Node) float64 {
		if total <= 0 {
			return 1 / float64(len(n.Children))
		}
		if child.Weight <= 0 {
			return 0
		}
		return child.Weight / total
	}

	last := len(n.Children) - 1
	if n.Direction == Row {
		x := r.X
		for i, child := range n.Children {
			w := int(float64(r.W) * share(child))
			if i == last {
				w = r.W - (x - r.X)
			}
			layoutNode(child, Rect{X: x, Y: r.Y, W: w, H: r.H}, out)
			x += w
		}
		return
	}
	y := r.Y
	for i, child := range n.Children {
		h := int(float64(r.H) * share(child))
		if i == last {
			h = r.H - (y - r.Y)
		}
		layoutNode(child, Rect{X: r.X, Y: y, W: r.W, H: h}, out)
		y += h
	}
}

// StackAt returns the stack whose rectangle contains (x, y) and that rectangle.
func StackAt(l *Layout, area Rect, x, y int) (*Node, Rect, bool) {
	bounds := Bounds(l, area)
	for _, s := range l.Stacks() {
		if r, ok := bounds[s.ID]; ok && r.Contains(x, y) {
			return s, r, true
		}
	}
	return nil, Rect{}, false
}
