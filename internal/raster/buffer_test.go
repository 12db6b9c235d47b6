package raster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferGrowsLitRegion(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillCircle(5, 5, 1)
	_, _, _, _, ok := m.TightBounds()
	require.True(t, ok)

	grown := m.Buffer(0.5)
	minX1, minY1, maxX1, maxY1, _ := m.TightBounds()
	minX2, minY2, maxX2, maxY2, _ := grown.TightBounds()
	require.True(t, minX2 < minX1)
	require.True(t, minY2 < minY1)
	require.True(t, maxX2 > maxX1)
	require.True(t, maxY2 > maxY1)
}

func TestBufferShrinksLitRegion(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillCircle(5, 5, 2)
	shrunk := m.Buffer(-0.3)
	require.False(t, shrunk.Empty())

	_, _, _, _, okOrig := m.TightBounds()
	minX2, _, maxX2, _, okShrunk := shrunk.TightBounds()
	require.True(t, okOrig)
	require.True(t, okShrunk)
	require.True(t, (maxX2 - minX2) < 4.0)
}

func TestBufferShrinkCanEmptyASmallRegion(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillCircle(5, 5, 0.5)
	shrunk := m.Buffer(-1.0)
	require.True(t, shrunk.Empty())
}

func TestBufferZeroDistanceIsClone(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillCircle(5, 5, 2)
	same := m.Buffer(0)
	require.Equal(t, m.Pix, same.Pix)
}
