package raster

import "math"

// diskOffsets returns the set of pixel offsets within radiusPx of the
// origin, used as the structuring element for Buffer. It is computed once
// per call rather than cached since masks are buffered at varying radii
// (isolation passes, soldermask clearance) and the grids involved are small
// enough that this is not a hot path.
func diskOffsets(radiusPx int) [][2]int {
	if radiusPx <= 0 {
		return [][2]int{{0, 0}}
	}
	var offs [][2]int
	r2 := float64(radiusPx) * float64(radiusPx)
	for dy := -radiusPx; dy <= radiusPx; dy++ {
		for dx := -radiusPx; dx <= radiusPx; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				offs = append(offs, [2]int{dx, dy})
			}
		}
	}
	return offs
}

// Buffer grows (distanceMM > 0) or shrinks (distanceMM < 0) the lit region
// by a morphological dilate/erode with a disk structuring element. A zero
// distance returns an unchanged clone.
func (m *Mask) Buffer(distanceMM float64) *Mask {
	if distanceMM == 0 {
		return m.Clone()
	}
	radiusPx := int(math.Round(math.Abs(distanceMM) * m.Scale))
	if radiusPx == 0 {
		return m.Clone()
	}
	offs := diskOffsets(radiusPx)

	if distanceMM > 0 {
		// Dilation grows the canvas by the radius on every side so a mask
		// with a tight canvas (the usual case after Union) doesn't clip the
		// grown region at its old edges.
		out := &Mask{
			Pix:     make([]uint8, (m.Width+2*radiusPx)*(m.Height+2*radiusPx)),
			Width:   m.Width + 2*radiusPx,
			Height:  m.Height + 2*radiusPx,
			OriginX: m.OriginX - float64(radiusPx)/m.Scale,
			OriginY: m.OriginY - float64(radiusPx)/m.Scale,
			Scale:   m.Scale,
		}
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				if m.at(x, y) == 0 {
					continue
				}
				for _, o := range offs {
					out.set(x+radiusPx+o[0], y+radiusPx+o[1], 1)
				}
			}
		}
		return out
	}

	out := m.Clone()

	// Erosion: a pixel survives only if every pixel within radiusPx of it
	// was lit in the source. Equivalent to dilating the complement and
	// subtracting it back out, computed directly to avoid edge artifacts
	// from the padded canvas.
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.at(x, y) == 0 {
				continue
			}
			survives := uint8(1)
			for _, o := range offs {
				if m.at(x+o[0], y+o[1]) == 0 {
					survives = 0
					break
				}
			}
			out.set(x, y, survives)
		}
	}
	return out
}
