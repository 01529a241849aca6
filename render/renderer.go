// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/renderer.go
// Summary: Draws a dock layout onto a canvas and maps screen cells back to panes.
// Usage: Called by the run loop on every redraw and mouse event.

package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texeldock/dock"
)

const (
	maxTitleWidth = 24
	closeGlyph    = '×'
	borderGlyph   = '│'
)

// Styles groups every style the renderer uses.
type Styles struct {
	Body        tcell.Style
	TabBar      tcell.Style
	Tab         tcell.Style
	ActiveTab   tcell.Style
	FocusedTab  tcell.Style
	Border      tcell.Style
	Placeholder tcell.Style
	Overlay     tcell.Style
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	base := tcell.StyleDefault
	return Styles{
		Body:        base,
		TabBar:      base.Background(tcell.ColorDarkSlateGray),
		Tab:         base.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorSilver),
		ActiveTab:   base.Background(tcell.ColorSteelBlue).Foreground(tcell.ColorWhite),
		FocusedTab:  base.Background(tcell.ColorDodgerBlue).Foreground(tcell.ColorWhite).Bold(true),
		Border:      base.Foreground(tcell.ColorDarkSlateGray),
		Placeholder: base.Foreground(tcell.ColorGray),
		Overlay:     base.Background(tcell.ColorNavy).Foreground(tcell.ColorLightCyan),
	}
}

// View is everything one redraw needs.
type View struct {
	Layout  *dock.Layout
	Area    dock.Rect
	FocusID string
	Overlay *dock.Overlay
}

// Renderer draws views using content from a Registry.
type Renderer struct {
	registry *Registry
	styles   Styles
}

// NewRenderer returns a renderer resolving pane bodies through reg.
func NewRenderer(reg *Registry, styles Styles) *Renderer {
	return &Renderer{registry: reg, styles: styles}
}

// TabSpan is the horizontal extent of one tab in a stack's tab bar.
// CloseX is -1 when the pane cannot be closed.
type TabSpan struct {
	PaneID string
	X, W   int
	CloseX int
	Label  string
}

// Frame splits a stack's rectangle into tab bar and body.
type Frame struct {
	Stack  *dock.Node
	Rect   dock.Rect
	TabBar dock.Rect
	Body   dock.Rect
	Border bool
	Tabs   []TabSpan
}

// FrameFor computes the frame of stack inside area. Stacks not touching the
// right edge of area give up their last column to a border.
func FrameFor(stack *dock.Node, r, area dock.Rect) Frame {
	f := Frame{Stack: stack, Rect: r}
	w := r.W
	if r.X+r.W < area.X+area.W && w > 1 {
		f.Border = true
		w--
	}
	if r.H > 0 {
		f.TabBar = dock.Rect{X: r.X, Y: r.Y, W: w, H: 1}
		f.Body = dock.Rect{X: r.X, Y: r.Y + 1, W: w, H: r.H - 1}
	}
	f.Tabs = tabSpans(stack, f.TabBar)
	return f
}

func tabSpans(stack *dock.Node, bar dock.Rect) []TabSpan {
	var spans []TabSpan
	x := bar.X
	for _, p := range stack.Panes {
		label := " " + runewidth.Truncate(p.Title, maxTitleWidth, "…") + " "
		w := runewidth.StringWidth(label)
		closeX := -1
		if p.Closable {
			closeX = x + w
			w += 2
		}
		if x+w > bar.X+bar.W {
			break
		}
		spans = append(spans, TabSpan{PaneID: p.ID, X: x, W: w, CloseX: closeX, Label: label})
		x += w
	}
	return spans
}

// Frames returns the frame of every stack in l.
func Frames(l *dock.Layout, area dock.Rect) []Frame {
	bounds := dock.Bounds(l, area)
	stacks := l.Stacks()
	frames := make([]Frame, 0, len(stacks))
	for _, s := range stacks {
		frames = append(frames, FrameFor(s, bounds[s.ID], area))
	}
	return frames
}

// Draw renders v onto c.
func (r *Renderer) Draw(c Canvas, v View) {
	if v.Layout == nil {
		return
	}
	for _, f := range Frames(v.Layout, v.Area) {
		r.drawFrame(c, f, f.Stack.ID == v.FocusID)
	}
	if v.Overlay != nil {
		r.drawOverlay(c, v.Overlay.Rect, v.Area)
	}
}

func (r *Renderer) drawFrame(c Canvas, f Frame, focused bool) {
	st := r.styles
	fill(c, f.TabBar, st.TabBar)
	for _, tab := range f.Tabs {
		style := st.Tab
		if tab.PaneID == f.Stack.ActiveID {
			style = st.ActiveTab
			if focused {
				style = st.FocusedTab
			}
		}
		fill(c, dock.Rect{X: tab.X, Y: f.TabBar.Y, W: tab.W, H: 1}, style)
		drawString(c, tab.X, f.TabBar.Y, tab.W, tab.Label, style)
		if tab.CloseX >= 0 {
			c.SetContent(tab.CloseX, f.TabBar.Y, closeGlyph, nil, style)
		}
	}

	if f.Border {
		x := f.Rect.X + f.Rect.W - 1
		for y := f.Rect.Y; y < f.Rect.Y+f.Rect.H; y++ {
			c.SetContent(x, y, borderGlyph, nil, st.Border)
		}
	}

	if f.Body.H <= 0 {
		return
	}
	active := f.Stack.ActivePane()
	if active == nil {
		fill(c, f.Body, st.Body)
		drawCentered(c, f.Body, "drop a pane here", st.Placeholder)
		return
	}
	r.registry.Get(active.ContentID, active.ID).Draw(c, f.Body, st.Body)
}

func (r *Renderer) drawOverlay(c Canvas, o, area dock.Rect) {
	for y := o.Y; y < o.Y+o.H; y++ {
		for x := o.X; x < o.X+o.W; x++ {
			if !area.Contains(x, y) {
				continue
			}
			ch, comb, _, _ := c.GetContent(x, y)
			if ch == 0 {
				ch = ' '
			}
			c.SetContent(x, y, ch, comb, r.styles.Overlay)
		}
	}
}

// Region classifies the part of a stack a cell belongs to.
type Region int

const (
	RegionNone Region = iota
	RegionTab
	RegionClose
	RegionTabBar
	RegionBody
	RegionBorder
)

// Hit is the result of mapping a screen cell onto the layout.
type Hit struct {
	Region Region
	Frame  Frame
	PaneID string
}

// HitTest reports what lies under (x, y).
func HitTest(l *dock.Layout, area dock.Rect, x, y int) Hit {
	stack, rect, ok := dock.StackAt(l, area, x, y)
	if !ok {
		return Hit{}
	}
	f := FrameFor(stack, rect, area)
	switch {
	case f.Border && x == f.Rect.X+f.Rect.W-1:
		return Hit{Region: RegionBorder, Frame: f}
	case f.TabBar.Contains(x, y):
		for _, tab := range f.Tabs {
			if x == tab.CloseX {
				return Hit{Region: RegionClose, Frame: f, PaneID: tab.PaneID}
			}
			if x >= tab.X && x < tab.X+tab.W {
				return Hit{Region: RegionTab, Frame: f, PaneID: tab.PaneID}
			}
		}
		return Hit{Region: RegionTabBar, Frame: f}
	default:
		return Hit{Region: RegionBody, Frame: f}
	}
}
