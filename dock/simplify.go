// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/simplify.go
// Summary: Structural cleanup: prune empty stacks, collapse single-child boxes.
// Usage: Run by the engine after structural changes; exported for loaded layouts.

package dock

import "strconv"

// SimplifyLayout prunes empty stacks, collapses single-child boxes and repairs
// dangling active tabs. It is idempotent and reports whether l changed.
//
// Nested boxes sharing a direction are left as they are; only single-child
// boxes are removed.
func SimplifyLayout(l *Layout) bool {
	if l == nil {
		return false
	}
	changed := false
	if l.Root == nil {
		l.Root = NewStack(PlaceholderStackID)
		changed = true
	}
	if PruneEmptyStacks(l) {
		changed = true
	}
	if CollapseSingleChildBoxes(l) {
		changed = true
	}
	if repairActive(l) {
		changed = true
	}
	return changed
}

// CollapseSingleChildBoxes replaces every box holding exactly one child by
// that child, which inherits the box weight. A collapsed root gets weight 1.
func CollapseSingleChildBoxes(l *Layout) bool {
	root, changed := collapse(l.Root)
	if root != l.Root {
		root.Weight = 1
		l.Root = root
	}
	return changed
}

func collapse(n *Node) (*Node, bool) {
	if !n.IsBox() {
		return n, false
	}
	changed := false
	for i, child := range n.Children {
		repl, c := collapse(child)
		n.Children[i] = repl
		changed = changed || c
	}
	if len(n.Children) == 1 {
		only := n.Children[0]
		only.Weight = n.Weight
		return only, true
	}
	return n, changed
}

// PruneEmptyStacks removes stacks without panes, and boxes left without
// children. A lone empty stack is the placeholder and is kept.
func PruneEmptyStacks(l *Layout) bool {
	total, empty := l.countStacks()
	switch {
	case total == 0:
		// Boxes without any stack: fall back to the placeholder.
		l.Root = NewStack(placeholderID(l))
		return true
	case empty == 0:
		return false
	case empty == total:
		if total == 1 {
			return false
		}
		keep := l.Stacks()[0]
		keep.Weight = 1
		l.Root = keep
		return true
	}
	root, changed := prune(l.Root)
	l.Root = root
	return changed
}

func prune(n *Node) (*Node, bool) {
	if n.IsStack() {
		if len(n.Panes) == 0 {
			return nil, true
		}
		return n, false
	}
	changed := false
	kept := n.Children[:0]
	for _, child := range n.Children {
		repl, c := prune(child)
		changed = changed || c
		if repl != nil {
			kept = append(kept, repl)
		}
	}
	clear(n.Children[len(kept):])
	n.Children = kept
	if len(kept) == 0 {
		return nil, true
	}
	return n, changed
}

func repairActive(l *Layout) bool {
	changed := false
	l.Walk(func(n, _ *Node) {
		if !n.IsStack() || n.ActiveID == "" || n.paneIndex(n.ActiveID) >= 0 {
			return
		}
		n.ActiveID = ""
		if len(n.Panes) > 0 {
			n.ActiveID = n.Panes[0].ID
		}
		changed = true
	})
	return changed
}

func placeholderID(l *Layout) string {
	used := l.ids()
	id := PlaceholderStackID
	for i := 1; ; i++ {
		if _, taken := used[id]; !taken {
			return id
		}
		id = PlaceholderStackID + "-" + strconv.Itoa(i)
	}
}
