package ops

import (
	"fmt"
	"math"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/drillplan"
	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/geom"
)

// Drill assigns small holes (diameter below mill_holes_over — larger ones
// are milled by Outline instead) to the largest drillBits entry that fits
// each hole within tolerance, reduces that set to at most maxBits sizes
// when maxBits is positive, and pecks them in descending-diameter tool
// order. allHoles
// is the full deduped, origin-normalized
// hole set for the board; Drill filters it itself so callers can hand the
// same slice to both Drill and Outline.
func Drill(gw *gcodegen.Writer, allHoles []excellon.Hole, drillBits []config.Bit, tol float64, maxBits int, combined bool) (Summary, error) {
	if len(allHoles) == 0 {
		return Summary{Line: "[DRILL] No round drill hits found, skipping", Skipped: true}, nil
	}

	var holes []excellon.Hole
	for _, h := range allHoles {
		if h.Diameter < gw.Job.MillHolesOver {
			holes = append(holes, h)
		}
	}
	if len(holes) == 0 {
		return Summary{Line: "[DRILL] All holes are marked for milling, skipping drill phase", Skipped: true}, nil
	}

	holeDiameters := make([]float64, len(holes))
	for i, h := range holes {
		holeDiameters[i] = h.Diameter
	}

	drillDiams := make([]float64, 0, len(drillBits))
	bitsByDiam := make(map[float64]config.Bit, len(drillBits))
	for _, b := range drillBits {
		if b.Diameter <= 0 {
			continue
		}
		drillDiams = append(drillDiams, b.Diameter)
		bitsByDiam[b.Diameter] = b
	}

	plan, err := drillplan.Plan(holeDiameters, drillDiams, tol, maxBits)
	if err != nil {
		return Summary{Line: fmt.Sprintf("[DRILL] %v", err), Skipped: true}, err
	}

	depth := gw.Job.PCBThickness
	used := make([]bool, len(holes))
	total := 0
	cur := geom.Point{X: gw.Job.ParkX, Y: gw.Job.ParkY}

	for _, asg := range plan {
		bit, ok := bitsByDiam[asg.Drill]
		if !ok {
			continue
		}

		var pts []geom.Point
		for _, hd := range asg.Holes {
			idx := claimHole(holes, used, hd)
			if idx < 0 {
				continue
			}
			used[idx] = true
			pts = append(pts, geom.Point{X: holes[idx].X, Y: holes[idx].Y})
		}
		if len(pts) == 0 {
			continue
		}

		ordered := orderPoints(pts, cur)
		cur = ordered[len(ordered)-1]

		gw.ToolchangeSequence(bit, fmt.Sprintf("Drill: %s (%.3fmm) | %d holes", bit.Name, bit.Diameter, len(ordered)))
		for _, p := range ordered {
			gw.WriteDrillHit(p.X, p.Y, depth, bit)
		}
		total += len(ordered)
	}
	gw.EndSequence(!combined)

	return Summary{Line: fmt.Sprintf("[DRILL] %d holes drilled, depth %.2f mm", total, depth)}, nil
}

// claimHole returns the index of the first unclaimed hole whose diameter
// matches d (exactly, since d is itself one of holes[i].Diameter, copied
// unmodified through the drill planner), or -1 if none remain.
func claimHole(holes []excellon.Hole, used []bool, d float64) int {
	for i, h := range holes {
		if !used[i] && h.Diameter == d {
			return i
		}
	}
	return -1
}

// orderPoints greedily visits the nearest unvisited point to the current
// cursor — nearest-neighbor ordering specialized to single points (no
// reversal to consider).
func orderPoints(pts []geom.Point, start geom.Point) []geom.Point {
	rem := append([]geom.Point(nil), pts...)
	out := make([]geom.Point, 0, len(pts))
	cur := start
	for len(rem) > 0 {
		best := 0
		bestD := math.MaxFloat64
		for i, p := range rem {
			dx, dy := p.X-cur.X, p.Y-cur.Y
			d := dx*dx + dy*dy
			if d < bestD {
				bestD = d
				best = i
			}
		}
		cur = rem[best]
		out = append(out, cur)
		rem = append(rem[:best], rem[best+1:]...)
	}
	return out
}
