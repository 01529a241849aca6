// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/zone.go
// Summary: Drop zone detection and overlay placement.
// Usage: Used by DragSession while a drag hovers a stack.

package dock

import "fmt"

// Zone is where a drop lands relative to a target stack.
type Zone int

const (
	ZoneCenter Zone = iota
	ZoneLeft
	ZoneRight
	ZoneTop
	ZoneBottom
)

// EdgeThreshold is the fraction of a dimension treated as an edge zone.
const EdgeThreshold = 0.2

var zoneNames = [...]string{"center", "left", "right", "top", "bottom"}

func (z Zone) String() string {
	if z < 0 || int(z) >= len(zoneNames) {
		return fmt.Sprintf("Zone(%d)", int(z))
	}
	return zoneNames[z]
}

// ParseZone maps a zone name back to a Zone.
func ParseZone(s string) (Zone, bool) {
	for i, name := range zoneNames {
		if name == s {
			return Zone(i), true
		}
	}
	return ZoneCenter, false
}

// IsEdge reports whether z splits rather than merges.
func (z Zone) IsEdge() bool {
	return z >= ZoneLeft && z <= ZoneBottom
}

// Direction returns the box direction an edge zone splits along.
func (z Zone) Direction() Direction {
	if z == ZoneTop || z == ZoneBottom {
		return Column
	}
	return Row
}

// before reports whether the new node goes before the target.
func (z Zone) before() bool {
	return z == ZoneLeft || z == ZoneTop
}

// DetectZone maps a pointer position inside a w x h rectangle to a zone.
// Horizontal edges are checked first, so corners resolve to left or right.
// The threshold lines themselves belong to the center side.
func DetectZone(x, y, w, h float64) Zone {
	switch {
	case x < w*EdgeThreshold:
		return ZoneLeft
	case x > w*(1-EdgeThreshold):
		return ZoneRight
	case y < h*EdgeThreshold:
		return ZoneTop
	case y > h*(1-EdgeThreshold):
		return ZoneBottom
	}
	return ZoneCenter
}

// Rect is an integer rectangle in screen cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// DetectZone resolves an absolute pointer position against r.
func (r Rect) DetectZone(x, y int) Zone {
	return DetectZone(float64(x-r.X), float64(y-r.Y), float64(r.W), float64(r.H))
}

// Placement is the overlay rectangle previewing a drop into r:
// the whole rect for center, the matching half for an edge.
func (z Zone) Placement(r Rect) Rect {
	switch z {
	case ZoneLeft:
		return Rect{X: r.X, Y: r.Y, W: r.W / 2, H: r.H}
	case ZoneRight:
		half := r.W / 2
		return Rect{X: r.X + r.W - half, Y: r.Y, W: half, H: r.H}
	case ZoneTop:
		return Rect{X: r.X, Y: r.Y, W: r.W, H: r.H / 2}
	case ZoneBottom:
		half := r.H / 2
		return Rect{X: r.X, Y: r.Y + r.H - half, W: r.W, H: half}
	}
	return r
}
