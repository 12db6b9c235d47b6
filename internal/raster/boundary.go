package raster

// Polyline is an ordered list of millimeter-space points. Boundary returns
// one per connected contour (outer perimeters and, separately, the
// perimeters of any enclosed clear regions — "holes" in a pour or an
// isolated island) found in the mask.
type Polyline [][2]float64

// moore8 lists the 8-connected neighbor offsets in clockwise order starting
// from "west", used by the Moore-neighbor boundary tracer below.
var moore8 = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// Boundary extracts the contours of every lit region in the mask.
// Each contour is returned as a closed
// Polyline through the boundary pixels, each point moved from its pixel
// center by subpixelOffset; outer perimeters
// and hole perimeters are not distinguished in the return value, mirroring
// how copper isolation and outline milling both just need "the outline to
// follow", however many nested rings that implies.
func (m *Mask) Boundary() []Polyline {
	visitedOuter := make([]bool, m.Width*m.Height)
	visitedInner := make([]bool, m.Width*m.Height)
	exterior := m.exteriorBackground()

	isExterior := func(x, y int) bool {
		if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
			return true
		}
		return exterior[y*m.Width+x]
	}
	isEnclosedBackground := func(x, y int) bool {
		if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
			return false
		}
		idx := y*m.Width + x
		return m.Pix[idx] == 0 && !exterior[idx]
	}

	var out []Polyline

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx := y*m.Width + x
			if m.at(x, y) == 0 {
				continue
			}

			// Outer contour start: foreground pixel whose west neighbor is
			// exterior background (or off-canvas) and not already claimed by
			// a previously traced outer contour.
			if isExterior(x-1, y) && !visitedOuter[idx] {
				ring := m.traceContour(x, y, 0, visitedOuter)
				if len(ring) >= 3 {
					out = append(out, m.toMMPolyline(ring))
				}
			}

			// Hole contour start: foreground pixel whose east neighbor is
			// background *enclosed by the shape* (a solid region's east edge
			// faces the exterior and must not restart its own outline).
			// Entered with an opposite initial search direction so the
			// tracer walks the inside of the enclosing shape.
			if isEnclosedBackground(x+1, y) && !visitedInner[idx] {
				ring := m.traceContour(x, y, 4, visitedInner)
				if len(ring) >= 3 {
					out = append(out, m.toMMPolyline(ring))
				}
			}
		}
	}
	return out
}

// exteriorBackground flood-fills the background 4-connected to the canvas
// border, distinguishing it from background pockets fully enclosed by lit
// pixels (the holes Boundary reports separately).
func (m *Mask) exteriorBackground() []bool {
	ext := make([]bool, m.Width*m.Height)
	var stack [][2]int
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
			return
		}
		idx := y*m.Width + x
		if ext[idx] || m.Pix[idx] != 0 {
			return
		}
		ext[idx] = true
		stack = append(stack, [2]int{x, y})
	}
	for x := 0; x < m.Width; x++ {
		push(x, 0)
		push(x, m.Height-1)
	}
	for y := 0; y < m.Height; y++ {
		push(0, y)
		push(m.Width-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p[0]-1, p[1])
		push(p[0]+1, p[1])
		push(p[0], p[1]-1)
		push(p[0], p[1]+1)
	}
	return ext
}

// traceContour runs Moore-neighbor tracing starting at (x,y), beginning the
// neighbor search at moore8[startDir], marking every boundary pixel visited
// into visited so the same ring is not re-emitted from a different start
// pixel. Returns pixel-center coordinates in trace order.
func (m *Mask) traceContour(x, y, startDir int, visited []bool) [][2]int {
	start := [2]int{x, y}
	ring := [][2]int{start}
	visited[y*m.Width+x] = true

	cur := start
	backDir := startDir
	for iter := 0; iter < 4*m.Width*m.Height+8; iter++ {
		found := false
		var next [2]int
		var nextDir int
		for k := 0; k < 8; k++ {
			d := (backDir + k) % 8
			nx, ny := cur[0]+moore8[d][0], cur[1]+moore8[d][1]
			if m.at(nx, ny) != 0 {
				next = [2]int{nx, ny}
				nextDir = d
				found = true
				break
			}
		}
		if !found {
			// isolated single pixel
			break
		}
		if next == start && len(ring) > 1 {
			break
		}
		idx := next[1]*m.Width + next[0]
		if !visited[idx] {
			visited[idx] = true
			ring = append(ring, next)
		} else if next == start {
			break
		}
		cur = next
		// Resume the search from just behind the direction we arrived
		// from, the standard Moore-tracing backtrack step.
		backDir = (nextDir + 5) % 8
	}
	return ring
}

func (m *Mask) toMMPolyline(ring [][2]int) Polyline {
	poly := make(Polyline, 0, len(ring)+1)
	for _, p := range ring {
		x, y := m.ToMM(p[0], p[1])
		ox, oy := m.subpixelOffset(p[0], p[1])
		poly = append(poly, [2]float64{x + ox, y + oy})
	}
	if len(poly) > 0 {
		poly = append(poly, poly[0])
	}
	return poly
}

// subpixelOffset nudges a pixel-center boundary point toward the coverage
// centroid of its 8 neighbors, in mm, capped at half a pixel in each axis.
// This stands in for a full marching-squares edge reconstruction: it does
// not recover the exact sub-pixel crossing, but it pulls a corner pixel's
// reported position toward the side its lit neighbors actually lean, which
// softens the staircase a raw pixel-center trace otherwise produces.
func (m *Mask) subpixelOffset(px, py int) (float64, float64) {
	var sumX, sumY, weight float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if m.at(px+dx, py+dy) != 0 {
				sumX += float64(dx)
				sumY += float64(dy)
				weight++
			}
		}
	}
	if weight == 0 {
		return 0, 0
	}
	const maxShiftPx = 0.5
	ox := clampf(sumX/weight*0.5, -maxShiftPx, maxShiftPx)
	oy := clampf(sumY/weight*0.5, -maxShiftPx, maxShiftPx)
	return ox / m.Scale, oy / m.Scale
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
