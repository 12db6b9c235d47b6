package geom

import "math"

// OrderNearestNeighbor greedily orders open polylines with endpoint
// reversal. At each step, the
// unplaced polyline whose start or end point is closest to the current
// cursor is chosen next; if its end point was the closer one, the polyline
// is reversed so the cursor continues from its new tail. Ties are broken by
// insertion order (first-seen wins), and the cursor starts at start.
func OrderNearestNeighbor(paths []Polyline, start Point) []Polyline {
	n := len(paths)
	placed := make([]bool, n)
	out := make([]Polyline, 0, n)
	cursor := start

	for i := 0; i < n; i++ {
		best := -1
		bestDist := math.MaxFloat64
		bestReverse := false

		for j, p := range paths {
			if placed[j] || len(p) == 0 {
				continue
			}
			dStart := dist(cursor, p[0])
			dEnd := dist(cursor, p[len(p)-1])

			if dStart < bestDist {
				bestDist = dStart
				best = j
				bestReverse = false
			}
			if dEnd < bestDist {
				bestDist = dEnd
				best = j
				bestReverse = true
			}
		}

		if best < 0 {
			break
		}
		placed[best] = true
		chosen := paths[best]
		if bestReverse {
			chosen = chosen.Reversed()
		}
		out = append(out, chosen)
		cursor = chosen[len(chosen)-1]
	}
	return out
}
