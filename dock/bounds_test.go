package dock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsFollowWeights(t *testing.T) {
	a, b := stack("A", "a"), stack("B", "b")
	b.Weight = 3
	top, bottom := stack("T", "t"), stack("U", "u")
	l := NewLayout(NewBox("root", Column, NewBox("row", Row, a, b), top, bottom))

	bounds := Bounds(l, Rect{X: 0, Y: 0, W: 100, H: 31})

	assert.Equal(t, Rect{X: 0, Y: 0, W: 100, H: 31}, bounds["root"])
	assert.Equal(t, Rect{X: 0, Y: 0, W: 100, H: 10}, bounds["row"])
	assert.Equal(t, Rect{X: 0, Y: 0, W: 25, H: 10}, bounds["A"])
	assert.Equal(t, Rect{X: 25, Y: 0, W: 75, H: 10}, bounds["B"])
	assert.Equal(t, Rect{X: 0, Y: 10, W: 100, H: 10}, bounds["T"])
	// Last child absorbs the rounding remainder.
	assert.Equal(t, Rect{X: 0, Y: 20, W: 100, H: 11}, bounds["U"])
}

func TestStackAt(t *testing.T) {
	l := NewLayout(NewBox("root", Row, stack("A", "a"), stack("B", "b")))
	area := Rect{X: 0, Y: 0, W: 80, H: 24}

	s, r, ok := StackAt(l, area, 60, 3)
	require.True(t, ok)
	assert.Equal(t, "B", s.ID)
	assert.Equal(t, Rect{X: 40, Y: 0, W: 40, H: 24}, r)

	_, _, ok = StackAt(l, area, 200, 3)
	assert.False(t, ok)
}
