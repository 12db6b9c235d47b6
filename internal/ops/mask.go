package ops

import (
	"fmt"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/geom"
	"pcb-to-gcode/internal/raster"
)

// stepoverRatio is the serpentine raster's row spacing as a fraction of
// tool diameter.
const stepoverRatio = 0.45

// smallPadRatio is the w/h threshold (as a multiple of tool diameter)
// below which a pad gets a cross pattern instead of a raster fill.
const smallPadRatio = 1.1

// clearPad builds the clearing toolpath for one pad component: an inward
// buffer to stay off the pad edge (falling back to a small outward buffer
// if that inward region vanishes), then either a cross pattern for pads
// too small to raster or a boustrophedon raster otherwise.
func clearPad(pad *raster.Mask, toolD, maxOutside float64) []geom.Polyline {
	toolR := toolD / 2.0
	safe := pad.Buffer(-(toolR - maxOutside))
	if safe.Empty() {
		safe = pad.Buffer(toolR)
	}
	minX, minY, maxX, maxY, ok := safe.TightBounds()
	if !ok {
		return nil
	}
	w := maxX - minX
	h := maxY - minY

	cx, cy, ok := pad.Centroid()
	if !ok {
		cx, cy = (minX+maxX)/2, (minY+maxY)/2
	}

	if w < toolD*smallPadRatio || h < toolD*smallPadRatio {
		return []geom.Polyline{
			{{X: cx - toolD, Y: cy}, {X: cx + toolD, Y: cy}},
			{{X: cx, Y: cy - toolD}, {X: cx, Y: cy + toolD}},
		}
	}

	step := toolD * stepoverRatio
	if step <= 0 {
		step = toolD
	}
	var out []geom.Polyline
	flip := false
	for y := minY; y <= maxY; y += step {
		x0, x1 := minX, maxX
		if flip {
			x0, x1 = maxX, minX
		}
		out = append(out, geom.Polyline{{X: x0, Y: y}, {X: x1, Y: y}})
		flip = !flip
	}
	return out
}

// Mask clears soldermask over every connected pad region in pads (already
// normalized to the board origin).
func Mask(gw *gcodegen.Writer, pads *raster.Mask, bit config.Bit, combined bool) Summary {
	if pads == nil || pads.Empty() {
		return Summary{Line: "[MASK] No pads found", Skipped: true}
	}

	comps := pads.ConnectedComponents()
	var lines []geom.Polyline
	for _, c := range comps {
		lines = append(lines, clearPad(c, bit.Diameter, gw.Job.MaxOutside)...)
	}
	if len(lines) == 0 {
		return Summary{Line: "[MASK] No clearing paths generated", Skipped: true}
	}

	depth := gw.Job.SoldermaskDepth
	gw.ToolchangeSequence(bit, "Soldermask clearing")
	gw.WritePaths(lines, depth, bit)
	gw.EndSequence(!combined)

	return Summary{Line: fmt.Sprintf("[MASK] Cleared %d pads (Z=0 -> Z=-%.3f mm)", len(comps), depth)}
}
