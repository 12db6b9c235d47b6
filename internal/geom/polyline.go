// Package geom turns the raster package's pixel-grid output into the
// open/closed polylines the rest of the pipeline actually emits as
// toolpaths: cleanup (simplify, drop slivers), nearest-neighbor ordering,
// and arc-length addressing (substring, ramp interpolation, tab placement)
// for the G-code writer in internal/gcodegen.
package geom

import "math"

// Point is a 2D millimeter-space coordinate.
type Point struct {
	X, Y float64
}

// Polyline is an ordered, open list of points (a closed ring repeats its
// first point as its last, matching raster.Polyline).
type Polyline []Point

// FromXY converts the [][2]float64 representation raster.Polyline uses into
// a Polyline.
func FromXY(pts [][2]float64) Polyline {
	out := make(Polyline, len(pts))
	for i, p := range pts {
		out[i] = Point{p[0], p[1]}
	}
	return out
}

// Length returns the total arc length of the polyline.
func (p Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += dist(p[i-1], p[i])
	}
	return total
}

func dist(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Hypot(dx, dy)
}

// Translate shifts every point by (dx,dy).
func (p Polyline) Translate(dx, dy float64) Polyline {
	out := make(Polyline, len(p))
	for i, pt := range p {
		out[i] = Point{pt.X + dx, pt.Y + dy}
	}
	return out
}

// Rotate rotates every point by angleDeg (counter-clockwise, degrees)
// about origin.
func (p Polyline) Rotate(angleDeg float64, origin Point) Polyline {
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	out := make(Polyline, len(p))
	for i, pt := range p {
		dx, dy := pt.X-origin.X, pt.Y-origin.Y
		out[i] = Point{
			X: origin.X + dx*cos - dy*sin,
			Y: origin.Y + dx*sin + dy*cos,
		}
	}
	return out
}

// Reversed returns the polyline with point order reversed.
func (p Polyline) Reversed() Polyline {
	out := make(Polyline, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// Simplify applies Douglas-Peucker simplification at the given tolerance
// (mm).
func (p Polyline) Simplify(tolerance float64) Polyline {
	if len(p) < 3 || tolerance <= 0 {
		return p
	}
	keep := make([]bool, len(p))
	keep[0] = true
	keep[len(p)-1] = true
	douglasPeucker(p, 0, len(p)-1, tolerance, keep)

	out := make(Polyline, 0, len(p))
	for i, k := range keep {
		if k {
			out = append(out, p[i])
		}
	}
	return out
}

func douglasPeucker(p Polyline, lo, hi int, tol float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	maxDist := -1.0
	maxIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpDistance(p[i], p[lo], p[hi])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > tol {
		keep[maxIdx] = true
		douglasPeucker(p, lo, maxIdx, tol, keep)
		douglasPeucker(p, maxIdx, hi, tol, keep)
	}
}

func perpDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	segLen := math.Hypot(dx, dy)
	if segLen == 0 {
		return dist(p, a)
	}
	// |cross(b-a, p-a)| / |b-a|
	cross := math.Abs(dx*(a.Y-p.Y) - dy*(a.X-p.X))
	return cross / segLen
}

// Substring returns the portion of the polyline's arc length between d0 and
// d1 (0 <= d0 <= d1 <= Length()), interpolating new endpoints as needed.
func Substring(p Polyline, d0, d1 float64) Polyline {
	if len(p) == 0 || d1 <= d0 {
		return nil
	}
	var out Polyline
	acc := 0.0
	for i := 1; i < len(p); i++ {
		segLen := dist(p[i-1], p[i])
		segStart, segEnd := acc, acc+segLen
		acc = segEnd
		if segEnd < d0 || segStart > d1 {
			continue
		}
		a, b := p[i-1], p[i]
		lo := segStart
		hi := segEnd
		startPt := a
		if d0 > lo && segLen > 0 {
			startPt = lerp(a, b, (d0-lo)/segLen)
		}
		endPt := b
		if d1 < hi && segLen > 0 {
			endPt = lerp(a, b, (d1-lo)/segLen)
		}
		if len(out) == 0 {
			out = append(out, startPt)
		}
		out = append(out, endPt)
	}
	return out
}

// PointAt returns the point at arc length d along the polyline, clamped to
// [0, Length()].
func PointAt(p Polyline, d float64) Point {
	if len(p) == 0 {
		return Point{}
	}
	if d <= 0 {
		return p[0]
	}
	acc := 0.0
	for i := 1; i < len(p); i++ {
		segLen := dist(p[i-1], p[i])
		if acc+segLen >= d {
			if segLen == 0 {
				return p[i]
			}
			return lerp(p[i-1], p[i], (d-acc)/segLen)
		}
		acc += segLen
	}
	return p[len(p)-1]
}

func lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// IsClosed reports whether the first and last points coincide within eps.
func (p Polyline) IsClosed(eps float64) bool {
	if len(p) < 2 {
		return false
	}
	return dist(p[0], p[len(p)-1]) <= eps
}
