package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(side float64) Polyline {
	return Polyline{{0, 0}, {side, 0}, {side, side}, {0, side}, {0, 0}}
}

func TestAreaOfClosedSquare(t *testing.T) {
	s := square(2)
	assert.InDelta(t, 4.0, s.Area(), 1e-9)
}

func TestAreaOfOpenPathIsZero(t *testing.T) {
	p := Polyline{{0, 0}, {1, 0}, {1, 1}}
	assert.Equal(t, 0.0, p.Area())
}

func TestSimplifyCollapsesColinearPoints(t *testing.T) {
	p := Polyline{{0, 0}, {1, 0}, {2, 0}, {3, 0.0001}, {4, 0}}
	out := p.Simplify(0.01)
	assert.Less(t, len(out), len(p))
	assert.Equal(t, p[0], out[0])
	assert.Equal(t, p[len(p)-1], out[len(out)-1])
}

func TestSubstringExtractsMiddlePortion(t *testing.T) {
	p := Polyline{{0, 0}, {10, 0}}
	out := Substring(p, 2, 5)
	require.Len(t, out, 2)
	assert.InDelta(t, 2, out[0].X, 1e-9)
	assert.InDelta(t, 5, out[1].X, 1e-9)
}

func TestCleanupDropsTinyPolygonAndShortLine(t *testing.T) {
	tiny := Polyline{{0, 0}, {0.0005, 0}, {0.0005, 0.0005}, {0, 0.0005}, {0, 0}}
	short := Polyline{{0, 0}, {0.0001, 0}}
	keep := square(5)

	out := Cleanup([]Polyline{tiny, short, keep}, 0, 1e-6, 1e-3)
	require.Len(t, out, 1)
	assert.InDelta(t, 25.0, out[0].Area(), 1e-6)
}

func TestOrderNearestNeighborReversesWhenEndIsCloser(t *testing.T) {
	a := Polyline{{10, 0}, {0, 0}} // end (0,0) is near start cursor
	b := Polyline{{5, 0}, {5, 5}}

	out := OrderNearestNeighbor([]Polyline{a, b}, Point{0, 0})
	require.Len(t, out, 2)
	assert.Equal(t, Point{0, 0}, out[0][0])
	assert.Equal(t, Point{10, 0}, out[0][len(out[0])-1])
}

func TestOrderNearestNeighborStableOnTies(t *testing.T) {
	a := Polyline{{1, 0}, {2, 0}}
	b := Polyline{{1, 0}, {3, 0}}
	out := OrderNearestNeighbor([]Polyline{a, b}, Point{0, 0})
	require.Len(t, out, 2)
	assert.Equal(t, a, out[0])
}

func TestRotate90DegreesAboutOrigin(t *testing.T) {
	p := Polyline{{1, 0}}
	out := p.Rotate(90, Point{0, 0})
	assert.InDelta(t, 0, out[0].X, 1e-9)
	assert.InDelta(t, 1, out[0].Y, 1e-9)
}
