// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/validate.go
// Summary: Runtime invariant checks for a layout tree.

package dock

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvariant wraps every violation reported by Validate.
var ErrInvariant = errors.New("layout invariant violated")

// Validate checks the tree invariants and returns all violations joined.
func Validate(l *Layout) error {
	if l == nil || l.Root == nil {
		return fmt.Errorf("%w: layout has no root", ErrInvariant)
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	seen := make(map[string]struct{})
	claim := func(id, what string) {
		if id == "" {
			fail("%s with empty id", what)
			return
		}
		if _, dup := seen[id]; dup {
			fail("duplicate id %q", id)
			return
		}
		seen[id] = struct{}{}
	}

	total, empty := 0, 0
	l.Walk(func(n, _ *Node) {
		claim(n.ID, n.Kind.String())
		if n.Weight <= 0 || math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) {
			fail("node %q has weight %v", n.ID, n.Weight)
		}
		switch n.Kind {
		case KindBox:
			if len(n.Children) < 2 {
				fail("box %q has %d children", n.ID, len(n.Children))
			}
			if len(n.Panes) > 0 {
				fail("box %q holds panes", n.ID)
			}
		case KindStack:
			total++
			if len(n.Panes) == 0 {
				empty++
			}
			if len(n.Children) > 0 {
				fail("stack %q has child nodes", n.ID)
			}
			for _, p := range n.Panes {
				claim(p.ID, "pane")
			}
			if n.ActiveID != "" && n.paneIndex(n.ActiveID) < 0 {
				fail("stack %q active pane %q is missing", n.ID, n.ActiveID)
			}
		default:
			fail("node %q has unknown kind %d", n.ID, int(n.Kind))
		}
	})
	if empty > 0 && total > 1 {
		fail("%d empty stacks among %d", empty, total)
	}
	return errors.Join(errs...)
}
