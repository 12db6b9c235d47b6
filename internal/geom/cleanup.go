package geom

import "math"

// Area returns the signed area of a closed ring via the shoelace formula
// (positive for counter-clockwise winding). Open polylines have no
// meaningful area and return 0.
func (p Polyline) Area() float64 {
	if len(p) < 3 || !p.IsClosed(1e-9) {
		return 0
	}
	var sum float64
	for i := 0; i < len(p)-1; i++ {
		sum += p[i].X*p[i+1].Y - p[i+1].X*p[i].Y
	}
	return sum / 2
}

// Cleanup simplifies and filters toolpath geometry. The union and
// self-intersection repair already happened when the source mask was
// composed in the raster package (every polyline handed to Cleanup was
// already extracted from a single merged Mask), so this stage is
// simplify-then-filter: simplify every ring/line at simplifyTol, then drop
// closed rings whose absolute area is below minArea and open polylines
// shorter than minLength.
func Cleanup(paths []Polyline, simplifyTol, minArea, minLength float64) []Polyline {
	out := make([]Polyline, 0, len(paths))
	for _, p := range paths {
		s := p.Simplify(simplifyTol)
		if len(s) < 2 {
			continue
		}
		if s.IsClosed(1e-6) {
			if math.Abs(s.Area()) < minArea {
				continue
			}
		} else {
			if s.Length() < minLength {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
