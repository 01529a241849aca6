// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/mutate.go
// Summary: Structural operations: split, move pane, move stack, reorder, close.
// Usage: Called by DragSession on drop and by hosts through the public API.

package dock

import (
	"math"
	"slices"
)

// SplitStack puts pane into a new stack beside the target stack on the given side.
func (e *Engine) SplitStack(targetID string, pane *Pane, side Zone) error {
	if !side.IsEdge() {
		return ErrInvalidZone
	}
	target, err := e.stack(targetID)
	if err != nil {
		return err
	}
	if err := e.checkNewPane(pane); err != nil {
		return err
	}
	e.splitInto(target, pane, side)
	e.simplify()
	e.notify()
	return nil
}

func (e *Engine) checkNewPane(pane *Pane) error {
	if pane == nil || pane.ID == "" {
		return ErrNotFound
	}
	if _, used := e.layout.ids()[pane.ID]; used {
		return ErrDuplicateID
	}
	return nil
}

func (e *Engine) splitInto(target *Node, pane *Pane, side Zone) *Node {
	stack := NewStack(e.newID(pane.ID), pane)
	e.insertBeside(target, stack, side)
	e.logger.Debug("Engine: split stack", "target", target.ID, "side", side, "pane", pane.ID, "stack", stack.ID)
	return stack
}

// insertBeside places node next to target. A parent box along the split
// direction receives node as a sibling; otherwise a new box wraps both.
// Either way target and node share target's current weight.
func (e *Engine) insertBeside(target, node *Node, side Zone) {
	if target.Weight <= 0 || math.IsNaN(target.Weight) {
		target.Weight = 1
	}
	dir := side.Direction()
	parent := e.layout.parentOf(target)

	if parent != nil && parent.Direction == dir {
		target.Weight /= 2
		node.Weight = target.Weight
		idx := parent.childIndex(target)
		if !side.before() {
			idx++
		}
		parent.Children = slices.Insert(parent.Children, idx, node)
		return
	}

	reserved := []string{node.ID}
	for _, p := range node.Panes {
		reserved = append(reserved, p.ID)
	}
	box := &Node{ID: e.newID(reserved...), Kind: KindBox, Direction: dir, Weight: target.Weight}
	half := target.Weight / 2
	target.Weight, node.Weight = half, half
	if side.before() {
		box.Children = []*Node{node, target}
	} else {
		box.Children = []*Node{target, node}
	}
	e.layout.replace(parent, target, box)
}

// MovePane moves a pane out of source. Center merges it into target's tabs,
// an edge splits target.
func (e *Engine) MovePane(paneID, sourceID, targetID string, zone Zone) error {
	if zone != ZoneCenter && !zone.IsEdge() {
		return ErrInvalidZone
	}
	source, err := e.stack(sourceID)
	if err != nil {
		return err
	}
	target, err := e.stack(targetID)
	if err != nil {
		return err
	}
	idx := source.paneIndex(paneID)
	if idx < 0 {
		return ErrPaneNotInStack
	}

	if zone == ZoneCenter {
		if source == target {
			return e.reorder(source, idx, len(source.Panes)-1, true)
		}
		pane := source.removePane(paneID)
		target.Panes = append(target.Panes, pane)
		target.ActiveID = pane.ID
		e.logger.Debug("Engine: merged pane", "pane", paneID, "from", sourceID, "into", targetID)
		e.cleanupIfNeeded()
		e.notify()
		return nil
	}

	if source == target && len(source.Panes) == 1 {
		return ErrSameStack
	}
	pane := source.removePane(paneID)
	e.splitInto(target, pane, zone)
	e.simplify()
	e.notify()
	return nil
}

// MoveStack moves a whole stack beside target. Center drops are refused.
func (e *Engine) MoveStack(sourceID, targetID string, zone Zone) error {
	if zone == ZoneCenter {
		return ErrCenterStackDrop
	}
	if !zone.IsEdge() {
		return ErrInvalidZone
	}
	source, err := e.stack(sourceID)
	if err != nil {
		return err
	}
	target, err := e.stack(targetID)
	if err != nil {
		return err
	}
	if source == target {
		return ErrSameStack
	}
	parent := e.layout.parentOf(source)
	if parent == nil {
		// Only a root stack has no parent and then there is no other target.
		return ErrSameStack
	}

	idx := parent.childIndex(source)
	parent.Children = slices.Delete(parent.Children, idx, idx+1)
	CollapseSingleChildBoxes(e.layout)

	e.insertBeside(target, source, zone)
	e.logger.Debug("Engine: moved stack", "stack", sourceID, "target", targetID, "zone", zone)
	e.simplify()
	e.notify()
	return nil
}

// ReorderPane moves a tab to index within its stack. The index is clamped.
func (e *Engine) ReorderPane(paneID, stackID string, index int) error {
	stack, err := e.stack(stackID)
	if err != nil {
		return err
	}
	from := stack.paneIndex(paneID)
	if from < 0 {
		return ErrPaneNotInStack
	}
	return e.reorder(stack, from, index, false)
}

func (e *Engine) reorder(stack *Node, from, to int, activate bool) error {
	to = max(0, min(to, len(stack.Panes)-1))
	pane := stack.Panes[from]
	if from == to {
		if !activate || stack.ActiveID == pane.ID {
			return nil
		}
		stack.ActiveID = pane.ID
		e.notify()
		return nil
	}
	stack.Panes = slices.Delete(stack.Panes, from, from+1)
	stack.Panes = slices.Insert(stack.Panes, to, pane)
	if activate {
		stack.ActiveID = pane.ID
	}
	e.notify()
	return nil
}

// AddPane opens pane as the active tab of a stack. An empty stackID uses the
// first stack in the tree, which on a fresh layout is the placeholder.
func (e *Engine) AddPane(stackID string, pane *Pane) error {
	if err := e.checkNewPane(pane); err != nil {
		return err
	}
	var stack *Node
	if stackID == "" {
		stack = e.layout.Stacks()[0]
	} else {
		var err error
		if stack, err = e.stack(stackID); err != nil {
			return err
		}
	}
	stack.Panes = append(stack.Panes, pane)
	stack.ActiveID = pane.ID
	e.notify()
	return nil
}

// ClosePane removes a closable pane and cleans up the stack it leaves behind.
func (e *Engine) ClosePane(paneID string) error {
	stack := e.layout.StackOfPane(paneID)
	if stack == nil {
		return ErrNotFound
	}
	if !stack.Panes[stack.paneIndex(paneID)].Closable {
		return ErrNotClosable
	}
	stack.removePane(paneID)
	e.logger.Debug("Engine: closed pane", "pane", paneID, "stack", stack.ID)
	e.cleanupIfNeeded()
	e.notify()
	return nil
}

// ActivatePane makes paneID the visible tab of its stack.
func (e *Engine) ActivatePane(paneID string) error {
	stack := e.layout.StackOfPane(paneID)
	if stack == nil {
		return ErrNotFound
	}
	if stack.ActiveID == paneID {
		return nil
	}
	stack.ActiveID = paneID
	e.notify()
	return nil
}

const (
	minBorderFraction = 0.1
	maxBorderFraction = 0.9
)

// ResizeBorder moves the border between children index and index+1 of a box.
// fraction is the share of their combined weight given to the first child.
func (e *Engine) ResizeBorder(boxID string, index int, fraction float64) error {
	box := e.layout.Find(boxID)
	if box == nil {
		return ErrNotFound
	}
	if !box.IsBox() {
		return ErrNotBox
	}
	if index < 0 || index+1 >= len(box.Children) {
		return ErrOutOfRange
	}
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return ErrOutOfRange
	}
	fraction = math.Max(minBorderFraction, math.Min(maxBorderFraction, fraction))
	first, second := box.Children[index], box.Children[index+1]
	total := first.Weight + second.Weight
	first.Weight = total * fraction
	second.Weight = total - first.Weight
	e.notify()
	return nil
}
