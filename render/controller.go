// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/controller.go
// Summary: Turns tcell mouse and key events into dock operations and drag sessions.
// Usage: The run loop feeds every event to HandleEvent and redraws afterwards.

package render

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/framegrace/texeldock/dock"
)

var dragTypes = []string{dock.DragMIMEType}

type press struct {
	x, y int
	hit  Hit
}

type resize struct {
	boxID string
	index int
}

// Controller owns focus and pointer state for one dock on one screen.
type Controller struct {
	engine   *dock.Engine
	drag     *dock.DragSession
	registry *Registry
	renderer *Renderer
	logger   *log.Logger

	area       dock.Rect
	focusID    string
	press      *press
	resize     *resize
	paneSeq    int
	newContent string
}

// NewController wires a controller to e. New panes opened from the keyboard
// use contentID.
func NewController(e *dock.Engine, reg *Registry, styles Styles, contentID string, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		engine:     e,
		drag:       dock.NewDragSession(e),
		registry:   reg,
		renderer:   NewRenderer(reg, styles),
		logger:     logger,
		newContent: contentID,
	}
}

// SetSize updates the screen area the dock fills.
func (c *Controller) SetSize(w, h int) {
	c.area = dock.Rect{W: w, H: h}
}

// Drag exposes the drag session, mainly for tests.
func (c *Controller) Drag() *dock.DragSession { return c.drag }

// Focused returns the focused stack, falling back to the first stack when
// the previous focus no longer exists.
func (c *Controller) Focused() *dock.Node {
	l := c.engine.Layout()
	if n := l.Find(c.focusID); n.IsStack() {
		return n
	}
	stacks := l.Stacks()
	if len(stacks) == 0 {
		return nil
	}
	c.focusID = stacks[0].ID
	return stacks[0]
}

// View returns what should be on screen now.
func (c *Controller) View() View {
	v := View{Layout: c.engine.Layout(), Area: c.area}
	if f := c.Focused(); f != nil {
		v.FocusID = f.ID
	}
	if o, ok := c.drag.Overlay(); ok {
		v.Overlay = &o
	}
	return v
}

// Draw renders the current view onto canvas.
func (c *Controller) Draw(canvas Canvas) {
	c.renderer.Draw(canvas, c.View())
}

// HandleEvent applies ev and reports whether the user asked to quit.
func (c *Controller) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		c.SetSize(ev.Size())
	case *tcell.EventMouse:
		x, y := ev.Position()
		c.handleMouse(x, y, ev.Buttons()&tcell.Button1 != 0)
	case *tcell.EventKey:
		return c.handleKey(ev)
	}
	return false
}

func (c *Controller) handleMouse(x, y int, down bool) {
	l := c.engine.Layout()
	switch {
	case down && c.press == nil:
		hit := HitTest(l, c.area, x, y)
		c.press = &press{x: x, y: y, hit: hit}
		if hit.Frame.Stack != nil {
			c.focusID = hit.Frame.Stack.ID
		}
		switch hit.Region {
		case RegionTab:
			c.report(c.engine.ActivatePane(hit.PaneID))
		case RegionBorder:
			if box, idx, ok := rowBorderOf(l, hit.Frame.Stack.ID); ok {
				c.resize = &resize{boxID: box.ID, index: idx}
			}
		}

	case down && c.resize != nil:
		c.dragBorder(x)

	case down:
		if c.drag.State() == dock.DragIdle && (x != c.press.x || y != c.press.y) {
			c.startDrag()
		}
		if c.drag.State() == dock.DragDragging {
			c.dragOver(x, y)
		}

	default:
		c.release(x, y)
	}
}

func (c *Controller) startDrag() {
	hit := c.press.hit
	var p dock.DragPayload
	switch hit.Region {
	case RegionTab:
		p = dock.PanePayload(hit.PaneID, hit.Frame.Stack.ID)
	case RegionTabBar:
		p = dock.StackPayload(hit.Frame.Stack.ID)
	default:
		return
	}
	c.drag.Start(p)
}

func (c *Controller) dragOver(x, y int) {
	hit := HitTest(c.engine.Layout(), c.area, x, y)
	if hit.Frame.Stack == nil {
		c.drag.Leave()
		return
	}
	c.drag.Over(c.dragEvent(hit, x, y))
}

func (c *Controller) dragEvent(hit Hit, x, y int) dock.DragEvent {
	return dock.DragEvent{Types: dragTypes, TargetID: hit.Frame.Stack.ID, Rect: hit.Frame.Rect, X: x, Y: y}
}

func (c *Controller) release(x, y int) {
	p := c.press
	c.press, c.resize = nil, nil
	if p == nil {
		return
	}
	if c.drag.State() == dock.DragDragging {
		hit := HitTest(c.engine.Layout(), c.area, x, y)
		if hit.Frame.Stack == nil {
			c.drag.End()
			return
		}
		if err := c.drag.Drop(c.dragEvent(hit, x, y)); err == nil {
			c.focusID = hit.Frame.Stack.ID
		}
		return
	}
	if p.hit.Region == RegionClose && x == p.x && y == p.y {
		c.closePane(p.hit.PaneID)
	}
}

func (c *Controller) dragBorder(x int) {
	l := c.engine.Layout()
	box := l.Find(c.resize.boxID)
	if box == nil || c.resize.index+1 >= len(box.Children) {
		c.resize = nil
		return
	}
	bounds := dock.Bounds(l, c.area)
	first := bounds[box.Children[c.resize.index].ID]
	second := bounds[box.Children[c.resize.index+1].ID]
	total := first.W + second.W
	if total <= 0 {
		return
	}
	c.report(c.engine.ResizeBorder(box.ID, c.resize.index, float64(x-first.X+1)/float64(total)))
}

// rowBorderOf finds the row box and child index whose right-hand border is
// the right edge of stackID.
func rowBorderOf(l *dock.Layout, stackID string) (*dock.Node, int, bool) {
	id := stackID
	for {
		parent := l.Parent(id)
		if parent == nil {
			return nil, 0, false
		}
		if parent.Direction == dock.Row {
			for i, child := range parent.Children {
				if child.ID == id && i < len(parent.Children)-1 {
					return parent, i, true
				}
			}
		}
		id = parent.ID
	}
}

func (c *Controller) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEsc:
		c.drag.End()
		c.press, c.resize = nil, nil
		return false
	case tcell.KeyTab:
		c.cycleTab()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	focused := c.Focused()
	switch ev.Rune() {
	case 'q':
		return true
	case 'n':
		c.report(c.engine.AddPane(focused.ID, c.newPane()))
	case 'v':
		c.report(c.engine.SplitStack(focused.ID, c.newPane(), dock.ZoneRight))
	case 's':
		c.report(c.engine.SplitStack(focused.ID, c.newPane(), dock.ZoneBottom))
	case 'x':
		if p := focused.ActivePane(); p != nil {
			c.closePane(p.ID)
		}
	}
	return false
}

func (c *Controller) cycleTab() {
	focused := c.Focused()
	if focused == nil || len(focused.Panes) < 2 {
		return
	}
	next := 0
	for i, p := range focused.Panes {
		if p.ID == focused.ActiveID {
			next = (i + 1) % len(focused.Panes)
		}
	}
	c.report(c.engine.ActivatePane(focused.Panes[next].ID))
}

func (c *Controller) newPane() *dock.Pane {
	c.paneSeq++
	return dock.NewPane(uuid.NewString(), fmt.Sprintf("Pane %d", c.paneSeq), c.newContent)
}

func (c *Controller) closePane(paneID string) {
	if err := c.engine.ClosePane(paneID); err != nil {
		c.report(err)
		return
	}
	c.registry.Forget(paneID)
}

func (c *Controller) report(err error) {
	if err != nil {
		c.logger.Debug("Controller: operation refused", "err", err)
	}
}
