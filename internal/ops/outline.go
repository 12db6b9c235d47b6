package ops

import (
	"fmt"
	"math"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/geom"
	"pcb-to-gcode/internal/raster"
)

const circleSegments = 72

// slotOffsets computes the symmetric side offsets `0, ±step, ±2·step, …`
// needed to clear a slot wider than the tool.
func slotOffsets(slotW, toolD float64) []float64 {
	if toolD >= slotW*0.999 {
		return []float64{0}
	}
	off := (slotW - toolD) / 2.0
	step := toolD * 0.60
	if step <= 0 {
		return []float64{0}
	}
	var rs []float64
	r := 0.0
	for r < off-1e-9 {
		r = math.Min(r+step, off)
		rs = append(rs, r)
	}
	out := []float64{0}
	for _, r := range rs {
		out = append(out, r, -r)
	}
	return out
}

func millSlot(gw *gcodegen.Writer, p1, p2 geom.Point, slotW, fullDepth float64, bit config.Bit, rampLen float64) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		return
	}
	nx, ny := -dy/length, dx/length

	offsets := slotOffsets(slotW, bit.Diameter)
	depths := gcodegen.Stepdown(fullDepth, bit.Stepdown)
	for _, z := range depths {
		for _, o := range offsets {
			line := geom.Polyline{
				{X: p1.X + nx*o, Y: p1.Y + ny*o},
				{X: p2.X + nx*o, Y: p2.Y + ny*o},
			}
			gw.WritePolyline(line, z, bit, rampLen)
		}
	}
}

func circlePoints(cx, cy, r float64) geom.Polyline {
	pts := make(geom.Polyline, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / float64(circleSegments)
		pts = append(pts, geom.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

func millHole(gw *gcodegen.Writer, cx, cy, holeD, fullDepth float64, bit config.Bit, rampLen float64) {
	toolD := bit.Diameter
	if holeD <= toolD*1.02 {
		return
	}
	r := (holeD - toolD) / 2.0
	if r <= 0 {
		return
	}

	var rings []float64
	step := toolD * 0.60
	for rr := r; rr > toolD*0.25; rr -= step {
		rings = append(rings, rr)
	}

	depths := gcodegen.Stepdown(fullDepth, bit.Stepdown)
	for _, z := range depths {
		for _, rr := range rings {
			gw.WritePolyline(circlePoints(cx, cy, rr), z, bit, rampLen)
		}
	}
}

// exteriorRing picks the longest contour out of a raster boundary trace,
// standing in for Shapely's Polygon.exterior (the single outer ring) since
// Boundary does not itself distinguish outer perimeters from interior
// ones: on the board shapes this system targets the outer perimeter is
// always the longest ring by a wide margin.
func exteriorRing(paths []geom.Polyline) geom.Polyline {
	var best geom.Polyline
	bestLen := -1.0
	for _, p := range paths {
		if l := p.Length(); l > bestLen {
			bestLen = l
			best = p
		}
	}
	return best
}

// Outline cuts slots, large (millable) holes, and the board perimeter —
// with optional holding tabs — in that order.
// allHoles is the full deduped, origin-normalized hole set; Outline picks
// out the ones at or above mill_holes_over itself (plus, under
// single_plus_mill, any small hole that doesn't match the single drill
// diameter) so callers can hand the same slice to both Drill and Outline.
func Outline(gw *gcodegen.Writer, outlineTracks *raster.Mask, slots []excellon.Slot, allHoles []excellon.Hole, bit config.Bit, combined bool) Summary {
	fullDepth := gw.Job.PCBThickness
	tabDepth := fullDepth * 0.75
	rampLen := bit.RampLen
	if rampLen <= 0 {
		rampLen = gw.Job.RampLen
	}

	var bigHoles, extraMillHoles []excellon.Hole
	for _, h := range allHoles {
		if h.Diameter >= gw.Job.MillHolesOver {
			bigHoles = append(bigHoles, h)
			continue
		}
		if gw.Job.DrillMode == config.DrillModeSinglePlusMill &&
			math.Abs(h.Diameter-gw.Job.SingleDrillDiam) > gw.Job.HoleMatchTol {
			extraMillHoles = append(extraMillHoles, h)
		}
	}

	gw.ToolchangeSequence(bit, "Through cuts: slots/holes/outline")

	cur := geom.Point{X: gw.Job.ParkX, Y: gw.Job.ParkY}

	var slotPaths []geom.Polyline
	for _, s := range slots {
		slotPaths = append(slotPaths, geom.Polyline{{X: s.X1, Y: s.Y1}, {X: s.X2, Y: s.Y2}})
	}
	orderedSlots := geom.OrderNearestNeighbor(slotPaths, cur)
	if len(orderedSlots) > 0 {
		last := orderedSlots[len(orderedSlots)-1]
		cur = last[len(last)-1]
	}
	for _, p := range orderedSlots {
		millSlot(gw, p[0], p[len(p)-1], slots[matchingSlotIndex(slots, p)].Width, fullDepth, bit, rampLen)
	}

	holeItems := append(append([]excellon.Hole(nil), bigHoles...), extraMillHoles...)
	var holePts []geom.Point
	for _, h := range holeItems {
		holePts = append(holePts, geom.Point{X: h.X, Y: h.Y})
	}
	orderedHoles := orderPoints(holePts, cur)
	if len(orderedHoles) > 0 {
		cur = orderedHoles[len(orderedHoles)-1]
	}
	for _, p := range orderedHoles {
		d := holeDiameterAt(holeItems, p)
		millHole(gw, p.X, p.Y, d, fullDepth, bit, rampLen)
	}

	var outline geom.Polyline
	if outlineTracks != nil && !outlineTracks.Empty() {
		buffered := outlineTracks.Buffer(bit.Diameter / 2.0)
		outline = exteriorRing(toGeomPolylines(buffered.Boundary()))
	}

	var tabRanges [][2]float64
	tabCount := 0
	if gw.Job.OutlineTabs && len(outline) > 0 {
		length := outline.Length()
		spacing := length * 0.20
		const tabHalf = 0.5
		for d := spacing; spacing > 0 && d <= length+1e-9; d += spacing {
			tabRanges = append(tabRanges, [2]float64{d - tabHalf, d + tabHalf})
			tabCount++
		}
	}
	if len(outline) > 0 {
		gw.WriteOutline(outline, fullDepth, tabDepth, tabRanges, bit, rampLen)
	}

	gw.EndSequence(!combined)

	line := "[OUTLINE] Board outline generated (no tabs)"
	if gw.Job.OutlineTabs {
		line = "[OUTLINE] Board outline with tabs generated"
	}
	if len(orderedSlots) > 0 {
		line += fmt.Sprintf("; routed %d slot(s)", len(orderedSlots))
	}
	if len(bigHoles) > 0 {
		line += fmt.Sprintf("; milled %d large hole(s)", len(bigHoles))
	}
	if len(extraMillHoles) > 0 {
		line += fmt.Sprintf("; milled %d non-matching small hole(s) (single+mill)", len(extraMillHoles))
	}
	return Summary{Line: line}
}

func matchingSlotIndex(slots []excellon.Slot, p geom.Polyline) int {
	a, b := p[0], p[len(p)-1]
	for i, s := range slots {
		if closeEnough(s.X1, a.X) && closeEnough(s.Y1, a.Y) && closeEnough(s.X2, b.X) && closeEnough(s.Y2, b.Y) {
			return i
		}
		if closeEnough(s.X1, b.X) && closeEnough(s.Y1, b.Y) && closeEnough(s.X2, a.X) && closeEnough(s.Y2, a.Y) {
			return i
		}
	}
	return 0
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func holeDiameterAt(holes []excellon.Hole, p geom.Point) float64 {
	for _, h := range holes {
		if closeEnough(h.X, p.X) && closeEnough(h.Y, p.Y) {
			return h.Diameter
		}
	}
	return 0
}

func toGeomPolylines(rings []raster.Polyline) []geom.Polyline {
	out := make([]geom.Polyline, 0, len(rings))
	for _, r := range rings {
		out = append(out, geom.FromXY(r))
	}
	return out
}
