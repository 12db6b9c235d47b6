// Package dxfexport writes a reference DXF of the board outline, slots,
// and hole centers alongside the generated G-code, gated by the job's
// export_dxf setting. It is a side channel for inspecting the board in a
// CAD viewer, never read back by the pipeline itself.
package dxfexport

import (
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/geom"
)

const (
	layerOutline = "OUTLINE"
	layerHoles   = "HOLES"
	layerSilk    = "SILK"
)

// Write renders outline, slots, holes, and silkscreen traces to path as a
// single DXF drawing, one layer per feature kind.
func Write(path string, outline []geom.Polyline, slots []excellon.Slot, holes []excellon.Hole, silk []geom.Polyline) error {
	d := dxf.NewDrawing()

	if _, err := d.AddLayer(layerOutline, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return err
	}
	for _, poly := range outline {
		addPolyline(d, poly)
	}
	for _, s := range slots {
		d.Line(s.X1, s.Y1, 0, s.X2, s.Y2, 0)
	}

	if _, err := d.AddLayer(layerHoles, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return err
	}
	for _, h := range holes {
		d.Circle(h.X, h.Y, 0, h.Diameter/2.0)
	}

	if _, err := d.AddLayer(layerSilk, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return err
	}
	for _, poly := range silk {
		addPolyline(d, poly)
	}

	return d.SaveAs(path)
}

func addPolyline(d *drawing.Drawing, poly geom.Polyline) {
	for i := 1; i < len(poly); i++ {
		a, b := poly[i-1], poly[i]
		d.Line(a.X, a.Y, 0, b.X, b.Y, 0)
	}
}
