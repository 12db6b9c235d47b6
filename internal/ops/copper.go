package ops

import (
	"fmt"
	"math"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/geom"
	"pcb-to-gcode/internal/raster"
)

// extraClearance is a small margin added on top of the copper thickness
// so a V-bit isolation cut is certain to sever the foil.
const extraClearance = 0.01

// IsolationDepth computes the cut depth for copper isolation: a V-bit's
// depth follows its included angle and target width, capped at
// copper_thickness+extraClearance; any other bit cuts straight to that
// capped depth.
func IsolationDepth(bit config.Bit, copperThickness float64) float64 {
	cap := copperThickness + extraClearance
	if bit.Angle > 0 {
		depth := (bit.Diameter / 2.0) / math.Tan(bit.Angle/2.0*math.Pi/180.0)
		return math.Min(depth, cap)
	}
	return cap
}

// Copper generates the per-pass isolation boundaries around copperMask
// (already normalized to the board origin) and writes them as one
// toolchange block.
func Copper(gw *gcodegen.Writer, copperMask *raster.Mask, bit config.Bit, passes int, combined bool) Summary {
	if passes < 1 {
		passes = 1
	}
	if copperMask == nil || copperMask.Empty() {
		return Summary{Line: "[COPPER] No isolation geometry generated", Skipped: true}
	}

	toolR := bit.Diameter / 2.0
	var paths []geom.Polyline
	for i := 1; i <= passes; i++ {
		off := toolR * float64(i)
		buffered := copperMask.Buffer(off)
		for _, ring := range buffered.Boundary() {
			paths = append(paths, geom.FromXY(ring))
		}
	}
	if len(paths) == 0 {
		return Summary{Line: "[COPPER] No isolation geometry generated", Skipped: true}
	}

	paths = geom.Cleanup(paths, gw.Job.GeomSimplifyTol, gw.Job.GeomMinArea, gw.Job.GeomMinLength)
	depth := IsolationDepth(bit, gw.Job.CopperThickness)

	plural := "es"
	if passes == 1 {
		plural = ""
	}
	gw.ToolchangeSequence(bit, fmt.Sprintf("Copper isolation (%d pass%s)", passes, plural))
	gw.WritePaths(paths, depth, bit)
	gw.EndSequence(!combined)

	return Summary{Line: fmt.Sprintf("[COPPER] Isolation generated (%d pass%s), depth %.3f mm", passes, plural, depth)}
}
