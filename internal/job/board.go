package job

import (
	"fmt"
	"os"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/gerber"
	"pcb-to-gcode/internal/geom"
	"pcb-to-gcode/internal/raster"
)

// Board holds every layer of one PCB, already normalized to the board
// origin: translated so the top copper bounding box's minimum corner sits
// at (0,0), every other layer shifted by the same vector.
type Board struct {
	Copper   *raster.Mask // polarity composite of TopLayer.gbr, in file order
	Pads     *raster.Mask // copper intersected with flash shapes
	Outline  *raster.Mask // tracks union of BoardOutLine.gbr
	SilkDraw []geom.Polyline

	Holes []excellon.Hole
	Slots []excellon.Slot

	OffsetX, OffsetY float64
	Warnings         []string
}

// Load resolves prefix's canonical suffixes inside dir, parses each one,
// and normalizes the result to the board origin. Missing top copper is
// fatal (nothing can be normalized without it); every other missing
// suffix only produces a warning and contributes empty geometry.
func Load(dir, prefix string, strict bool, scale float64) (*Board, error) {
	b := &Board{}

	copperPath := ResolvePath(dir, prefix, SuffixTopCopper)
	if _, err := os.Stat(copperPath); os.IsNotExist(err) {
		return nil, &MissingFileError{Path: copperPath}
	}
	copperGerber, err := gerber.ParseFile(copperPath, strict, scale)
	if err != nil {
		return nil, err
	}
	b.Warnings = append(b.Warnings, copperGerber.Warnings...)

	copper := copperGerber.Composite()
	minX, minY, _, _, ok := boundsOf(copper)
	if !ok {
		return nil, &GeometryError{Op: "normalize", Detail: "top copper produced no geometry"}
	}
	b.OffsetX, b.OffsetY = -minX, -minY

	b.Copper = translateMask(copper, b.OffsetX, b.OffsetY)
	b.Pads = translateMask(copperGerber.Pads(), b.OffsetX, b.OffsetY)

	silkPath := ResolvePath(dir, prefix, SuffixTopSilk)
	if silkGerber, warn := parseOptionalGerber(silkPath, strict, scale, &b.Warnings); silkGerber != nil {
		for _, d := range silkGerber.Draws {
			b.SilkDraw = append(b.SilkDraw, geom.Polyline{
				{X: d.X1 + b.OffsetX, Y: d.Y1 + b.OffsetY},
				{X: d.X2 + b.OffsetX, Y: d.Y2 + b.OffsetY},
			})
		}
	} else if warn != "" {
		b.Warnings = append(b.Warnings, warn)
	}

	outlinePath := ResolvePath(dir, prefix, SuffixOutline)
	if outlineGerber, warn := parseOptionalGerber(outlinePath, strict, scale, &b.Warnings); outlineGerber != nil {
		b.Outline = translateMask(outlineGerber.Tracks(), b.OffsetX, b.OffsetY)
	} else if warn != "" {
		b.Warnings = append(b.Warnings, warn)
	}

	var holes []excellon.Hole
	var slots []excellon.Slot
	for _, suffix := range []string{SuffixPTH, SuffixNPTH} {
		path := ResolvePath(dir, prefix, suffix)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			b.Warnings = append(b.Warnings, fmt.Sprintf("missing optional file: %s", path))
			continue
		}
		ex, err := excellon.ParseFile(path, strict)
		if err != nil {
			return nil, err
		}
		b.Warnings = append(b.Warnings, ex.Warnings...)
		holes = append(holes, ex.Holes...)
		slots = append(slots, ex.Slots...)
	}

	for i := range holes {
		holes[i].X += b.OffsetX
		holes[i].Y += b.OffsetY
	}
	for i := range slots {
		slots[i].X1 += b.OffsetX
		slots[i].Y1 += b.OffsetY
		slots[i].X2 += b.OffsetX
		slots[i].Y2 += b.OffsetY
	}

	b.Holes = holes
	b.Slots = slots

	return b, nil
}

// DedupeHoles merges holes within tol (keeping the largest diameter)
// across the combined PTH+NPTH hole set. Load itself does not dedupe
// since hole_dedupe_tol is a Job setting resolved by the caller, not known
// to Load.
func (b *Board) DedupeHoles(tol float64) {
	b.Holes = excellon.DedupeHoles(b.Holes, tol)
}

func parseOptionalGerber(path string, strict bool, scale float64, warnings *[]string) (*gerber.ParsedGerber, string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Sprintf("missing optional file: %s", path)
	}
	g, err := gerber.ParseFile(path, strict, scale)
	if err != nil {
		return nil, err.Error()
	}
	*warnings = append(*warnings, g.Warnings...)
	return g, ""
}

func boundsOf(m *raster.Mask) (minX, minY, maxX, maxY float64, ok bool) {
	if m == nil {
		return 0, 0, 0, 0, false
	}
	return m.TightBounds()
}

func translateMask(m *raster.Mask, dx, dy float64) *raster.Mask {
	if m == nil {
		return nil
	}
	return m.Translate(dx, dy)
}

// BitFor looks up a configured bit name in lib, falling back to a zero
// Bit (which every operation strategy treats as "produces no motion feed
// settings" rather than panicking) plus a warning when the name is unset
// or unknown.
func BitFor(lib config.Library, name string, warnings *[]string) config.Bit {
	if name == "" {
		*warnings = append(*warnings, "no bit configured for this operation")
		return config.Bit{}
	}
	bit, ok := lib.Get(name)
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("bit %q not found in bit library", name))
		return config.Bit{}
	}
	return bit
}
