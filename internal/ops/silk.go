package ops

import (
	"fmt"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/geom"
)

// minSegmentLength drops degenerate silkscreen draws.
const minSegmentLength = 0.001

// Silk engraves raw silkscreen draw centerlines — never the buffered
// track polygons a region-fill union would produce, which risk a
// geometry explosion on dense silkscreen text. segments is already
// translated to the board origin.
func Silk(gw *gcodegen.Writer, segments []geom.Polyline, bit config.Bit, combined bool) Summary {
	var long []geom.Polyline
	for _, s := range segments {
		if s.Length() > minSegmentLength {
			long = append(long, s)
		}
	}
	if len(long) == 0 {
		return Summary{Line: "[SILK] No silkscreen draw segments found", Skipped: true}
	}

	cleaned := geom.Cleanup(long, gw.Job.GeomSimplifyTol, gw.Job.GeomMinArea, gw.Job.GeomMinLength)
	if len(cleaned) == 0 {
		return Summary{Line: "[SILK] No silkscreen paths after cleanup", Skipped: true}
	}

	depth := gw.Job.SilkscreenDepth

	gw.ToolchangeSequence(bit, "Silkscreen engraving")
	gw.WritePaths(cleaned, depth, bit)
	gw.EndSequence(!combined)

	return Summary{Line: fmt.Sprintf("[SILK] Silkscreen engraved (%d paths)", len(cleaned))}
}
