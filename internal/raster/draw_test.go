package raster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFillCircleLitsCenterNotCorners(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillCircle(5, 5, 2)
	px, py := m.ToPx(5, 5)
	require.Equal(t, uint8(1), m.at(px, py))
	cx, cy := m.ToPx(0.1, 0.1)
	require.Equal(t, uint8(0), m.at(cx, cy))
}

func TestFillRectCoversExpectedExtent(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillRect(5, 5, 4, 2)
	inX, inY := m.ToPx(6.5, 5.5)
	require.Equal(t, uint8(1), m.at(inX, inY))
	outX, outY := m.ToPx(5, 6.5)
	require.Equal(t, uint8(0), m.at(outX, outY))
}

func TestFillRotatedRectMatchesUnrotatedAtZeroDegrees(t *testing.T) {
	a := NewMask(0, 0, 10, 10, 20, 1)
	a.FillRect(5, 5, 4, 2)
	b := NewMask(0, 0, 10, 10, 20, 1)
	b.FillRotatedRect(5, 5, 4, 2, 0)
	px, py := a.ToPx(6.5, 5.5)
	require.Equal(t, a.at(px, py), b.at(px, py))
}

func TestFillOblongWiderThanTall(t *testing.T) {
	m := NewMask(0, 0, 20, 10, 20, 1)
	m.FillOblong(10, 5, 8, 2)
	// Center and one of the rounded ends should both be lit.
	cx, cy := m.ToPx(10, 5)
	require.Equal(t, uint8(1), m.at(cx, cy))
	ex, ey := m.ToPx(13.5, 5)
	require.Equal(t, uint8(1), m.at(ex, ey))
	// Far outside the stadium on the long axis should be clear.
	fx, fy := m.ToPx(19, 5)
	require.Equal(t, uint8(0), m.at(fx, fy))
}

func TestStrokeSegmentCoversAlongPath(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.StrokeSegment(1, 5, 9, 5, 1.0)
	midX, midY := m.ToPx(5, 5)
	require.Equal(t, uint8(1), m.at(midX, midY))
	offX, offY := m.ToPx(5, 8)
	require.Equal(t, uint8(0), m.at(offX, offY))
}

func TestFillPolygonClosedSquare(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillPolygon([][2]float64{{2, 2}, {8, 2}, {8, 8}, {2, 8}})
	px, py := m.ToPx(5, 5)
	require.Equal(t, uint8(1), m.at(px, py))
	ox, oy := m.ToPx(0.5, 0.5)
	require.Equal(t, uint8(0), m.at(ox, oy))
}

func TestFillPolygonTooFewPointsIsNoop(t *testing.T) {
	m := NewMask(0, 0, 10, 10, 20, 1)
	m.FillPolygon([][2]float64{{2, 2}, {8, 8}})
	require.True(t, m.Empty())
}
