package ops

import (
	"fmt"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/geom"
)

// DrillSingle pecks every hole in holes with a single fixed bit, ignoring
// the drill-set planner entirely. It backs job.DrillMode's `single` and
// `single_plus_mill` values: the caller is responsible for selecting which
// holes reach this function (all small holes for `single`, only the
// diameter-matching ones for `single_plus_mill`).
func DrillSingle(gw *gcodegen.Writer, holes []excellon.Hole, bit config.Bit, combined bool) Summary {
	if len(holes) == 0 {
		return Summary{Line: "[DRILL] No holes assigned to the single drill bit, skipping", Skipped: true}
	}

	var pts []geom.Point
	for _, h := range holes {
		pts = append(pts, geom.Point{X: h.X, Y: h.Y})
	}
	ordered := orderPoints(pts, geom.Point{X: gw.Job.ParkX, Y: gw.Job.ParkY})

	depth := gw.Job.PCBThickness
	gw.ToolchangeSequence(bit, fmt.Sprintf("Drill: %s (%.3fmm) | %d holes", bit.Name, bit.Diameter, len(ordered)))
	for _, p := range ordered {
		gw.WriteDrillHit(p.X, p.Y, depth, bit)
	}
	gw.EndSequence(!combined)

	return Summary{Line: fmt.Sprintf("[DRILL] %d holes drilled with single bit %s, depth %.2f mm", len(ordered), bit.Name, depth)}
}
