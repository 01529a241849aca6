// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dock/engine_test.go
// Summary: Exercises split, move, reorder and close operations on the layout tree.
// Usage: Executed during `go test` to guard against regressions.

package dock

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPlaceholderReplacesIt(t *testing.T) {
	e := newTestEngine(NewStack(PlaceholderStackID))
	calls := countListener(e)

	require.NoError(t, e.SplitStack(PlaceholderStackID, NewPane("p1", "P1", "text"), ZoneRight))

	root := e.Layout().Root
	require.True(t, root.IsStack())
	assert.Equal(t, []string{"p1"}, paneIDs(root))
	assert.Equal(t, "p1", root.ActiveID)
	assert.Equal(t, 1.0, root.Weight)
	assert.Nil(t, e.Layout().Find(PlaceholderStackID))
	assert.Equal(t, 1, *calls)
	require.NoError(t, Validate(e.Layout()))
}

func TestMovePaneCenterRemovesEmptiedStack(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "p1"), stack("B", "p2"), stack("C", "p3")))

	require.NoError(t, e.MovePane("p2", "B", "A", ZoneCenter))

	root := e.Layout().Root
	require.True(t, root.IsBox())
	require.Len(t, root.Children, 2)
	assert.Equal(t, "A", root.Children[0].ID)
	assert.Equal(t, "C", root.Children[1].ID)
	assert.Equal(t, []string{"p1", "p2"}, paneIDs(root.Children[0]))
	assert.Equal(t, "p2", root.Children[0].ActiveID)
	require.NoError(t, Validate(e.Layout()))
}

func TestAlternatingSplitsKeepNoSingleChildBoxes(t *testing.T) {
	e := newTestEngine(stack("T", "t"))
	for i := 0; i < 4; i++ {
		require.NoError(t, e.SplitStack("T", NewPane("l"+string(rune('a'+i)), "L", "text"), ZoneLeft))
		requireNoSingleChildBox(t, e.Layout())
		require.NoError(t, e.SplitStack("T", NewPane("u"+string(rune('a'+i)), "U", "text"), ZoneTop))
		requireNoSingleChildBox(t, e.Layout())
	}
	assert.Len(t, e.Layout().Stacks(), 9)
	require.NoError(t, Validate(e.Layout()))
}

func TestSplitIntoSameDirectionParentHalvesTarget(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))

	require.NoError(t, e.SplitStack("A", NewPane("c", "C", "text"), ZoneRight))

	root := e.Layout().Root
	require.Len(t, root.Children, 3)
	assert.Equal(t, "A", root.Children[0].ID)
	assert.Equal(t, []string{"c"}, paneIDs(root.Children[1]))
	assert.Equal(t, "B", root.Children[2].ID)
	assert.Equal(t, 0.5, root.Children[0].Weight)
	assert.Equal(t, 0.5, root.Children[1].Weight)
	assert.Equal(t, 1.0, root.Children[2].Weight)

	// Repeated splits keep halving the current weight.
	require.NoError(t, e.SplitStack("A", NewPane("d", "D", "text"), ZoneLeft))
	assert.Equal(t, 0.25, e.Layout().Find("A").Weight)
	assert.Equal(t, "A", e.Layout().Root.Children[1].ID)
}

func TestSplitAcrossDirectionWrapsTarget(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))

	require.NoError(t, e.SplitStack("B", NewPane("c", "C", "text"), ZoneTop))

	root := e.Layout().Root
	require.Len(t, root.Children, 2)
	wrap := root.Children[1]
	require.True(t, wrap.IsBox())
	assert.Equal(t, Column, wrap.Direction)
	assert.Equal(t, 1.0, wrap.Weight)
	require.Len(t, wrap.Children, 2)
	assert.Equal(t, []string{"c"}, paneIDs(wrap.Children[0]))
	assert.Equal(t, "B", wrap.Children[1].ID)
	assert.Equal(t, 0.5, wrap.Children[0].Weight)
	assert.Equal(t, 0.5, wrap.Children[1].Weight)
}

func TestSplitRejectsBadInput(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))
	before := e.Layout().Clone()

	assert.ErrorIs(t, e.SplitStack("A", NewPane("x", "X", "text"), ZoneCenter), ErrInvalidZone)
	assert.ErrorIs(t, e.SplitStack("missing", NewPane("x", "X", "text"), ZoneLeft), ErrNotFound)
	assert.ErrorIs(t, e.SplitStack("root", NewPane("x", "X", "text"), ZoneLeft), ErrNotStack)
	assert.ErrorIs(t, e.SplitStack("A", NewPane("b", "dup", "text"), ZoneLeft), ErrDuplicateID)

	assert.Empty(t, cmp.Diff(before, e.Layout()))
}

func TestGeneratedIDsSkipCollisions(t *testing.T) {
	ids := []string{"A", "A", "fresh", "root", "fresh2"}
	i := 0
	gen := func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
	e := NewEngine(NewLayout(NewBox("root", Row, stack("A", "a"), stack("B", "b"))), WithIDGenerator(gen), WithLogger(quietLogger()))

	require.NoError(t, e.SplitStack("B", NewPane("c", "C", "text"), ZoneBottom))
	require.NotNil(t, e.Layout().Find("fresh"))
	require.NotNil(t, e.Layout().Find("fresh2"))
	require.NoError(t, Validate(e.Layout()))
}

func TestMovePaneToEdgeOfOtherStack(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a1", "a2"), stack("B", "b")))

	require.NoError(t, e.MovePane("a1", "A", "B", ZoneBottom))

	a := e.Layout().Find("A")
	assert.Equal(t, []string{"a2"}, paneIDs(a))
	assert.Equal(t, "a2", a.ActiveID)
	wrap := e.Layout().Root.Children[1]
	require.True(t, wrap.IsBox())
	assert.Equal(t, Column, wrap.Direction)
	assert.Equal(t, "B", wrap.Children[0].ID)
	assert.Equal(t, []string{"a1"}, paneIDs(wrap.Children[1]))
	require.NoError(t, Validate(e.Layout()))
}

func TestMoveLastPaneToEdgeCollapsesSource(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))

	require.NoError(t, e.MovePane("a", "A", "B", ZoneTop))

	root := e.Layout().Root
	require.True(t, root.IsBox())
	assert.Equal(t, Column, root.Direction)
	assert.Equal(t, 1.0, root.Weight)
	assert.Nil(t, e.Layout().Find("A"))
	assert.Equal(t, []string{"a"}, paneIDs(root.Children[0]))
	assert.Equal(t, "B", root.Children[1].ID)
	require.NoError(t, Validate(e.Layout()))
}

func TestMovePaneCenterOntoOwnStackReordersToEnd(t *testing.T) {
	e := newTestEngine(stack("S", "a", "b", "c"))
	calls := countListener(e)

	require.NoError(t, e.MovePane("a", "S", "S", ZoneCenter))
	s := e.Layout().Root
	assert.Equal(t, []string{"b", "c", "a"}, paneIDs(s))
	assert.Equal(t, "a", s.ActiveID)
	assert.Equal(t, 1, *calls)

	// Already last and active: nothing changes and nobody is told.
	require.NoError(t, e.MovePane("a", "S", "S", ZoneCenter))
	assert.Equal(t, []string{"b", "c", "a"}, paneIDs(s))
	assert.Equal(t, 1, *calls)

	// Already last but inactive: the dropped tab still becomes active.
	require.NoError(t, e.ActivatePane("b"))
	require.NoError(t, e.MovePane("a", "S", "S", ZoneCenter))
	assert.Equal(t, []string{"b", "c", "a"}, paneIDs(s))
	assert.Equal(t, "a", s.ActiveID)
	assert.Equal(t, 3, *calls)
}

func TestMovePaneEdgeOfOwnStack(t *testing.T) {
	e := newTestEngine(stack("S", "a", "b"))

	require.NoError(t, e.MovePane("a", "S", "S", ZoneRight))
	root := e.Layout().Root
	require.True(t, root.IsBox())
	assert.Equal(t, "S", root.Children[0].ID)
	assert.Equal(t, []string{"b"}, paneIDs(root.Children[0]))
	assert.Equal(t, []string{"a"}, paneIDs(root.Children[1]))

	single := newTestEngine(stack("S", "a"))
	before := single.Layout().Clone()
	assert.ErrorIs(t, single.MovePane("a", "S", "S", ZoneLeft), ErrSameStack)
	assert.Empty(t, cmp.Diff(before, single.Layout()))
}

func TestMovePaneErrors(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))
	assert.ErrorIs(t, e.MovePane("b", "A", "B", ZoneCenter), ErrPaneNotInStack)
	assert.ErrorIs(t, e.MovePane("a", "A", "zzz", ZoneCenter), ErrNotFound)
	assert.ErrorIs(t, e.MovePane("a", "A", "B", Zone(42)), ErrInvalidZone)
}

func TestMoveStackBesideTarget(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b"), stack("C", "c")))

	require.NoError(t, e.MoveStack("C", "A", ZoneTop))

	root := e.Layout().Root
	require.Len(t, root.Children, 2)
	col := root.Children[0]
	require.True(t, col.IsBox())
	assert.Equal(t, Column, col.Direction)
	assert.Equal(t, "C", col.Children[0].ID)
	assert.Equal(t, "A", col.Children[1].ID)
	assert.Equal(t, "B", root.Children[1].ID)
	require.NoError(t, Validate(e.Layout()))
}

func TestMoveStackCollapsesFormerParent(t *testing.T) {
	e := newTestEngine(NewBox("root", Row,
		stack("A", "a"),
		NewBox("col", Column, stack("B", "b"), stack("C", "c")),
	))

	require.NoError(t, e.MoveStack("C", "A", ZoneRight))

	root := e.Layout().Root
	require.Len(t, root.Children, 3)
	assert.Equal(t, "A", root.Children[0].ID)
	assert.Equal(t, "C", root.Children[1].ID)
	assert.Equal(t, "B", root.Children[2].ID)
	assert.Equal(t, 0.5, root.Children[0].Weight)
	assert.Equal(t, 0.5, root.Children[1].Weight)
	assert.Equal(t, 1.0, root.Children[2].Weight)
	assert.Nil(t, e.Layout().Find("col"))
	require.NoError(t, Validate(e.Layout()))
}

func TestMoveStackFromTwoStackRoot(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))

	require.NoError(t, e.MoveStack("A", "B", ZoneBottom))

	root := e.Layout().Root
	require.True(t, root.IsBox())
	assert.Equal(t, Column, root.Direction)
	assert.Equal(t, 1.0, root.Weight)
	assert.Equal(t, "B", root.Children[0].ID)
	assert.Equal(t, "A", root.Children[1].ID)
	require.NoError(t, Validate(e.Layout()))
}

func TestMoveStackNoOps(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))
	calls := countListener(e)
	before := e.Layout().Clone()

	assert.ErrorIs(t, e.MoveStack("A", "B", ZoneCenter), ErrCenterStackDrop)
	assert.ErrorIs(t, e.MoveStack("A", "A", ZoneLeft), ErrSameStack)
	assert.ErrorIs(t, e.MoveStack("root", "A", ZoneLeft), ErrNotStack)

	assert.Empty(t, cmp.Diff(before, e.Layout()))
	assert.Zero(t, *calls)
}

func TestReorderPane(t *testing.T) {
	e := newTestEngine(stack("S", "a", "b", "c"))
	calls := countListener(e)

	require.NoError(t, e.ReorderPane("a", "S", 2))
	assert.Equal(t, []string{"b", "c", "a"}, paneIDs(e.Layout().Root))

	require.NoError(t, e.ReorderPane("c", "S", -5))
	assert.Equal(t, []string{"c", "b", "a"}, paneIDs(e.Layout().Root))

	require.NoError(t, e.ReorderPane("a", "S", 99))
	assert.Equal(t, 2, *calls)
	assert.Equal(t, "a", e.Layout().Root.ActiveID)

	assert.ErrorIs(t, e.ReorderPane("zz", "S", 0), ErrPaneNotInStack)
}

func TestClosePane(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b1", "b2")))

	require.NoError(t, e.ClosePane("b1"))
	assert.Equal(t, "b2", e.Layout().Find("B").ActiveID)

	require.NoError(t, e.ClosePane("b2"))
	root := e.Layout().Root
	assert.Equal(t, "A", root.ID)
	assert.Equal(t, 1.0, root.Weight)

	// Closing the very last pane leaves the placeholder behind.
	require.NoError(t, e.ClosePane("a"))
	root = e.Layout().Root
	assert.Equal(t, "A", root.ID)
	assert.True(t, root.IsEmpty())
	assert.Empty(t, root.ActiveID)
	require.NoError(t, Validate(e.Layout()))

	assert.ErrorIs(t, e.ClosePane("a"), ErrNotFound)
}

func TestCloseNonClosablePane(t *testing.T) {
	pinned := &Pane{ID: "pinned", Title: "Pinned", ContentID: "text"}
	e := newTestEngine(NewStack("S", pinned))
	assert.ErrorIs(t, e.ClosePane("pinned"), ErrNotClosable)
	assert.Len(t, e.Layout().Root.Panes, 1)
}

func TestAddAndActivatePane(t *testing.T) {
	e := newTestEngine(nil)

	require.NoError(t, e.AddPane("", NewPane("a", "A", "text")))
	require.NoError(t, e.AddPane(PlaceholderStackID, NewPane("b", "B", "text")))
	root := e.Layout().Root
	assert.Equal(t, []string{"a", "b"}, paneIDs(root))
	assert.Equal(t, "b", root.ActiveID)

	require.NoError(t, e.ActivatePane("a"))
	assert.Equal(t, "a", root.ActiveID)
	assert.ErrorIs(t, e.ActivatePane("nope"), ErrNotFound)
	assert.ErrorIs(t, e.AddPane("", NewPane("a", "A", "text")), ErrDuplicateID)
}

func TestResizeBorder(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b"), stack("C", "c")))

	require.NoError(t, e.ResizeBorder("root", 0, 0.75))
	root := e.Layout().Root
	assert.InDelta(t, 1.5, root.Children[0].Weight, 1e-9)
	assert.InDelta(t, 0.5, root.Children[1].Weight, 1e-9)
	assert.Equal(t, 1.0, root.Children[2].Weight)

	require.NoError(t, e.ResizeBorder("root", 1, 0))
	assert.InDelta(t, 0.15, root.Children[1].Weight, 1e-9)

	assert.ErrorIs(t, e.ResizeBorder("root", 2, 0.5), ErrOutOfRange)
	assert.ErrorIs(t, e.ResizeBorder("A", 0, 0.5), ErrNotBox)
}

func TestResizeBorderRejectsNonFiniteFractions(t *testing.T) {
	e := newTestEngine(NewBox("root", Row, stack("A", "a"), stack("B", "b")))
	calls := countListener(e)

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, e.ResizeBorder("root", 0, f), ErrOutOfRange, "fraction %v", f)
	}
	root := e.Layout().Root
	assert.Equal(t, 1.0, root.Children[0].Weight)
	assert.Equal(t, 1.0, root.Children[1].Weight)
	assert.Equal(t, 0, *calls)
	require.NoError(t, Validate(e.Layout()))
}

func TestListenersAndSilentSet(t *testing.T) {
	e := newTestEngine(stack("S", "a"))
	var seen []*Layout
	unsubscribe := e.OnLayoutChange(func(l *Layout) { seen = append(seen, l) })

	e.SetLayoutSilent(NewLayout(stack("T", "t")))
	assert.Empty(t, seen)
	assert.Equal(t, "T", e.Layout().Root.ID)

	require.NoError(t, e.AddPane("T", NewPane("u", "U", "text")))
	require.Len(t, seen, 1)
	assert.Same(t, e.Layout(), seen[0])

	unsubscribe()
	require.NoError(t, e.ActivatePane("t"))
	assert.Len(t, seen, 1)
}

func TestSetLayoutSilentNormalizes(t *testing.T) {
	e := newTestEngine(nil)
	e.SetLayoutSilent(NewLayout(NewBox("root", Row, NewBox("inner", Column, stack("A", "a")), stack("B"))))
	root := e.Layout().Root
	assert.Equal(t, "A", root.ID)
	assert.Equal(t, 1.0, root.Weight)

	e.SetLayoutSilent(nil)
	assert.Equal(t, PlaceholderStackID, e.Layout().Root.ID)
}
