package raster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToPxToMMRoundTrip(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	x, y := m.ToMM(m.ToPx(3.25, 4.75))
	require.InDelta(t, 3.25, x, 1.0/m.Scale)
	require.InDelta(t, 4.75, y, 1.0/m.Scale)
}

func TestNewMaskIncludesMargin(t *testing.T) {
	m := NewMask(0, 0, 1, 1, 10, 0.5)
	minX, minY, maxX, maxY := m.Bounds()
	require.InDelta(t, -0.5, minX, 1e-9)
	require.InDelta(t, -0.5, minY, 1e-9)
	require.True(t, maxX >= 1.5)
	require.True(t, maxY >= 1.5)
}

func TestEmptyMask(t *testing.T) {
	m := NewMask(0, 0, 5, 5, 10, 0)
	require.True(t, m.Empty())
	m.FillCircle(2, 2, 1)
	require.False(t, m.Empty())
}

func TestUnionSubtractIntersect(t *testing.T) {
	a := NewMask(0, 0, 10, 10, 10, 0)
	a.FillRect(3, 3, 4, 4) // spans x:1..5, y:1..5
	b := NewMask(0, 0, 10, 10, 10, 0)
	b.FillRect(5, 5, 4, 4) // spans x:3..7, y:3..7

	aOnly := [2]float64{2, 2}   // in a only
	bOnly := [2]float64{6, 6}   // in b only
	overlap := [2]float64{4, 4} // in both

	u := Union(a, b)
	for _, p := range [][2]float64{aOnly, bOnly, overlap} {
		px, py := u.ToPx(p[0], p[1])
		require.Equal(t, uint8(1), u.at(px, py), "union at %v", p)
	}

	d := Subtract(a, b)
	px, py := d.ToPx(aOnly[0], aOnly[1])
	require.Equal(t, uint8(1), d.at(px, py))
	px, py = d.ToPx(overlap[0], overlap[1])
	require.Equal(t, uint8(0), d.at(px, py), "overlap should be cleared by subtract")
	px, py = d.ToPx(bOnly[0], bOnly[1])
	require.Equal(t, uint8(0), d.at(px, py))

	i := Intersect(a, b)
	px, py = i.ToPx(overlap[0], overlap[1])
	require.Equal(t, uint8(1), i.at(px, py))
	px, py = i.ToPx(aOnly[0], aOnly[1])
	require.Equal(t, uint8(0), i.at(px, py))
}

func TestUnionNilHandling(t *testing.T) {
	a := NewMask(0, 0, 5, 5, 10, 0)
	a.FillCircle(2, 2, 1)
	require.False(t, Union(nil, a).Empty())
	require.False(t, Union(a, nil).Empty())
}

func TestTranslateShiftsOriginOnly(t *testing.T) {
	m := NewMask(0, 0, 5, 5, 10, 0)
	m.FillCircle(2, 2, 1)
	shifted := m.Translate(10, -5)
	minX, minY, _, _ := shifted.Bounds()
	origMinX, origMinY, _, _ := m.Bounds()
	require.InDelta(t, origMinX+10, minX, 1e-9)
	require.InDelta(t, origMinY-5, minY, 1e-9)
	require.Equal(t, m.Pix, shifted.Pix)
}

func TestTightBoundsOnEmptyMask(t *testing.T) {
	m := NewMask(0, 0, 5, 5, 10, 0)
	_, _, _, _, ok := m.TightBounds()
	require.False(t, ok)
}

func TestTightBoundsTracksLitPixels(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 10, 0)
	m.FillCircle(5, 5, 2)
	minX, minY, maxX, maxY, ok := m.TightBounds()
	require.True(t, ok)
	require.True(t, minX > 3 && minX < 5)
	require.True(t, maxX > 5 && maxX < 7)
	require.True(t, minY > 3 && minY < 5)
	require.True(t, maxY > 5 && maxY < 7)
}
