// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/node.go
// Summary: Layout tree model: boxes, stacks, panes and the layout root.
// Usage: Built by the engine, the persistence adapter and tests; mutated only through Engine.

package dock

// Kind discriminates the two node variants of the layout tree.
type Kind int

const (
	// KindStack is a tabbed leaf holding panes.
	KindStack Kind = iota
	// KindBox is a container laying out child nodes along a direction.
	KindBox
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindStack:
		return "stack"
	default:
		return "unknown"
	}
}

// Direction is the axis a Box lays its children out on.
type Direction int

const (
	// Row places children side by side, left to right.
	Row Direction = iota
	// Column places children top to bottom.
	Column
)

func (d Direction) String() string {
	if d == Column {
		return "column"
	}
	return "row"
}

// ParseDirection maps "row" and "column" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "row":
		return Row, true
	case "column":
		return Column, true
	}
	return Row, false
}

// Pane is a single titled content slot. It is the unit users drag.
type Pane struct {
	ID        string
	Title     string
	ContentID string
	Closable  bool
}

// Node is either a Box or a Stack, selected by Kind.
// Box nodes use Direction and Children; Stack nodes use ActiveID and Panes.
type Node struct {
	ID     string
	Kind   Kind
	Weight float64

	Direction Direction
	Children  []*Node

	// ActiveID is empty when the stack has no active pane.
	ActiveID string
	Panes    []*Pane
}

// Layout is the whole dock tree. Root is never nil.
type Layout struct {
	Version int
	Root    *Node
}

// NewPane returns a closable pane.
func NewPane(id, title, contentID string) *Pane {
	return &Pane{ID: id, Title: title, ContentID: contentID, Closable: true}
}

// NewStack returns a stack holding panes with the first one active.
func NewStack(id string, panes ...*Pane) *Node {
	n := &Node{ID: id, Kind: KindStack, Weight: 1, Panes: panes}
	if len(panes) > 0 {
		n.ActiveID = panes[0].ID
	}
	return n
}

// NewBox returns a box laying out children along dir.
func NewBox(id string, dir Direction, children ...*Node) *Node {
	return &Node{ID: id, Kind: KindBox, Weight: 1, Direction: dir, Children: children}
}

// NewLayout wraps root into a layout at the current schema version.
func NewLayout(root *Node) *Layout {
	return &Layout{Version: SchemaVersion, Root: root}
}

// SchemaVersion is the layout version written by this package.
const SchemaVersion = 0

// PlaceholderStackID names the empty stack of a fresh layout.
const PlaceholderStackID = "placeholder"

// DefaultLayout returns the placeholder state: a single empty root stack.
func DefaultLayout() *Layout {
	return NewLayout(NewStack(PlaceholderStackID))
}

func (n *Node) IsBox() bool   { return n != nil && n.Kind == KindBox }
func (n *Node) IsStack() bool { return n != nil && n.Kind == KindStack }

// IsEmpty reports whether a stack holds no panes.
func (n *Node) IsEmpty() bool {
	return n.IsStack() && len(n.Panes) == 0
}

// ActivePane returns the active pane of a stack, or nil.
func (n *Node) ActivePane() *Pane {
	if !n.IsStack() {
		return nil
	}
	for _, p := range n.Panes {
		if p.ID == n.ActiveID {
			return p
		}
	}
	return nil
}

func (n *Node) paneIndex(paneID string) int {
	for i, p := range n.Panes {
		if p.ID == paneID {
			return i
		}
	}
	return -1
}

func (n *Node) childIndex(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// removePane drops a pane from a stack and repairs ActiveID.
func (n *Node) removePane(paneID string) *Pane {
	idx := n.paneIndex(paneID)
	if idx < 0 {
		return nil
	}
	p := n.Panes[idx]
	n.Panes = append(n.Panes[:idx], n.Panes[idx+1:]...)
	if n.ActiveID == paneID {
		n.ActiveID = ""
		if len(n.Panes) > 0 {
			n.ActiveID = n.Panes[0].ID
		}
	}
	return p
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:        n.ID,
		Kind:      n.Kind,
		Weight:    n.Weight,
		Direction: n.Direction,
		ActiveID:  n.ActiveID,
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	if n.Panes != nil {
		c.Panes = make([]*Pane, len(n.Panes))
		for i, p := range n.Panes {
			cp := *p
			c.Panes[i] = &cp
		}
	}
	return c
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	return &Layout{Version: l.Version, Root: l.Root.Clone()}
}

// Walk visits every node depth-first, parents before children. parent is nil for the root.
func (l *Layout) Walk(fn func(n, parent *Node)) {
	if l == nil {
		return
	}
	walk(l.Root, nil, fn)
}

func walk(n, parent *Node, fn func(n, parent *Node)) {
	if n == nil {
		return
	}
	fn(n, parent)
	for _, child := range n.Children {
		walk(child, n, fn)
	}
}

// Find returns the node with the given id.
func (l *Layout) Find(id string) *Node {
	n, _ := l.locate(id)
	return n
}

// locate returns the node with the given id and its parent box.
func (l *Layout) locate(id string) (node, parent *Node) {
	l.Walk(func(n, p *Node) {
		if node == nil && n.ID == id {
			node, parent = n, p
		}
	})
	return node, parent
}

// Parent returns the box holding the node with the given id, or nil for the
// root and unknown ids.
func (l *Layout) Parent(id string) *Node {
	_, parent := l.locate(id)
	return parent
}

// parentOf finds the box holding target.
func (l *Layout) parentOf(target *Node) *Node {
	var parent *Node
	l.Walk(func(n, p *Node) {
		if n == target {
			parent = p
		}
	})
	return parent
}

// Stacks returns every stack in tree order.
func (l *Layout) Stacks() []*Node {
	var stacks []*Node
	l.Walk(func(n, _ *Node) {
		if n.IsStack() {
			stacks = append(stacks, n)
		}
	})
	return stacks
}

// StackOfPane returns the stack holding paneID.
func (l *Layout) StackOfPane(paneID string) *Node {
	var found *Node
	l.Walk(func(n, _ *Node) {
		if found == nil && n.IsStack() && n.paneIndex(paneID) >= 0 {
			found = n
		}
	})
	return found
}

// FindPane returns the pane with the given id.
func (l *Layout) FindPane(paneID string) *Pane {
	if s := l.StackOfPane(paneID); s != nil {
		return s.Panes[s.paneIndex(paneID)]
	}
	return nil
}

// ids collects every node and pane id in use.
func (l *Layout) ids() map[string]struct{} {
	used := make(map[string]struct{})
	l.Walk(func(n, _ *Node) {
		used[n.ID] = struct{}{}
		for _, p := range n.Panes {
			used[p.ID] = struct{}{}
		}
	})
	return used
}

func (l *Layout) countStacks() (total, empty int) {
	l.Walk(func(n, _ *Node) {
		if n.IsStack() {
			total++
			if len(n.Panes) == 0 {
				empty++
			}
		}
	})
	return total, empty
}

// replace swaps old for repl in parent, or at the root when parent is nil.
func (l *Layout) replace(parent, old, repl *Node) {
	if parent == nil {
		l.Root = repl
		return
	}
	if idx := parent.childIndex(old); idx >= 0 {
		parent.Children[idx] = repl
	}
}
