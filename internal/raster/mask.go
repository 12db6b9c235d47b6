// Package raster implements a planar geometry kernel (union, difference,
// intersection, buffer, boundary, bounds, translate) on top of a coverage
// bitmap instead of a vector boolean-ops library. Rotate, simplify,
// cleanup and substring work on polylines in package geom.
//
// Gerber apertures, draws and regions are rasterized into a per-file
// coverage Mask at a fixed working resolution (px/mm), the same
// render-then-scan approach a stencil mesher uses to turn solid pixels
// into geometry; here the boolean operations a milling pipeline needs
// reduce to per-pixel logic on two masks. Geometry that must be exact
// rather than sampled (hole centers/diameters, straight segment
// coordinates) never passes through the raster path at all — only areas
// that feed an isolation/clearing toolpath do.
package raster

import "math"

// Mask is a binary coverage bitmap anchored to a millimeter-space origin.
// Pixel (0,0) covers the millimeter square [OriginX, OriginX+1/Scale) x
// [OriginY, OriginY+1/Scale).
type Mask struct {
	Pix           []uint8 // one byte per pixel, 0 or 1, row-major
	Width, Height int
	OriginX       float64 // mm
	OriginY       float64 // mm
	Scale         float64 // pixels per mm
}

// DefaultScale is the working resolution used unless a caller overrides
// it. Stencil meshing tools run at ≈1000 DPI (≈39.4 px/mm); PCB isolation
// tolerances are coarser, so a lower default resolution keeps mask sizes
// and buffer costs reasonable for hobby-board extents.
const DefaultScale = 20.0 // px/mm

// NewMask allocates a mask covering [minX,maxX] x [minY,maxY] (mm) at the
// given resolution, with a small margin so buffering near the edges does
// not clip.
func NewMask(minX, minY, maxX, maxY, scale float64, marginMM float64) *Mask {
	if scale <= 0 {
		scale = DefaultScale
	}
	minX -= marginMM
	minY -= marginMM
	maxX += marginMM
	maxY += marginMM

	w := int(math.Ceil((maxX - minX) * scale))
	h := int(math.Ceil((maxY - minY) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return &Mask{
		Pix:     make([]uint8, w*h),
		Width:   w,
		Height:  h,
		OriginX: minX,
		OriginY: minY,
		Scale:   scale,
	}
}

// Clone returns an independent copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{
		Pix:     make([]uint8, len(m.Pix)),
		Width:   m.Width,
		Height:  m.Height,
		OriginX: m.OriginX,
		OriginY: m.OriginY,
		Scale:   m.Scale,
	}
	copy(out.Pix, m.Pix)
	return out
}

// Empty reports whether every pixel is clear.
func (m *Mask) Empty() bool {
	if m == nil {
		return true
	}
	for _, v := range m.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// ToMM converts a pixel coordinate to millimeters (pixel center).
func (m *Mask) ToMM(px, py int) (float64, float64) {
	return m.OriginX + (float64(px)+0.5)/m.Scale, m.OriginY + (float64(py)+0.5)/m.Scale
}

// ToPx converts a millimeter coordinate to the nearest pixel.
func (m *Mask) ToPx(x, y float64) (int, int) {
	return int(math.Floor((x - m.OriginX) * m.Scale)), int(math.Floor((y - m.OriginY) * m.Scale))
}

func (m *Mask) at(px, py int) uint8 {
	if px < 0 || py < 0 || px >= m.Width || py >= m.Height {
		return 0
	}
	return m.Pix[py*m.Width+px]
}

func (m *Mask) set(px, py int, v uint8) {
	if px < 0 || py < 0 || px >= m.Width || py >= m.Height {
		return
	}
	m.Pix[py*m.Width+px] = v
}

// Bounds returns the millimeter-space extent of the mask's *allocated*
// canvas (not the extent of its lit pixels — use TightBounds for that).
func (m *Mask) Bounds() (minX, minY, maxX, maxY float64) {
	return m.OriginX, m.OriginY, m.OriginX + float64(m.Width)/m.Scale, m.OriginY + float64(m.Height)/m.Scale
}

// TightBounds returns the millimeter-space bounding box of lit pixels
// only. Returns ok=false if the mask is empty.
func (m *Mask) TightBounds() (minX, minY, maxX, maxY float64, ok bool) {
	minPX, minPY := m.Width, m.Height
	maxPX, maxPY := -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minPX {
				minPX = x
			}
			if x > maxPX {
				maxPX = x
			}
			if y < minPY {
				minPY = y
			}
			if y > maxPY {
				maxPY = y
			}
		}
	}
	if maxPX < 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = m.ToMM(minPX, minPY)
	maxX, maxY = m.ToMM(maxPX, maxPY)
	return minX, minY, maxX, maxY, true
}

// Union returns a OR b on a canvas covering both masks' extents: the two
// operands usually come from independently allocated per-feature masks
// (one flash, one draw, one region), each with its own tight canvas, so
// the result must grow to hold both rather than clip b into a's frame.
// A Gerber layer's polarity composition is built from Union and Subtract,
// applied feature by feature in file order.
func Union(a, b *Mask) *Mask {
	if a == nil {
		if b == nil {
			return nil
		}
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	aMinX, aMinY, aMaxX, aMaxY := a.Bounds()
	bMinX, bMinY, bMaxX, bMaxY := b.Bounds()
	out := NewMask(
		math.Min(aMinX, bMinX), math.Min(aMinY, bMinY),
		math.Max(aMaxX, bMaxX), math.Max(aMaxY, bMaxY),
		a.Scale, 0,
	)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			mx, my := out.ToMM(x, y)
			ax, ay := a.ToPx(mx, my)
			bx, by := b.ToPx(mx, my)
			if a.at(ax, ay) != 0 || b.at(bx, by) != 0 {
				out.Pix[y*out.Width+x] = 1
			}
		}
	}
	return out
}

// Subtract returns a AND NOT b, on a's canvas (the result is a subset of
// a, so nothing outside a's frame can survive).
func Subtract(a, b *Mask) *Mask {
	if a == nil {
		return NewMask(0, 0, 0, 0, DefaultScale, 0)
	}
	if b == nil {
		return a.Clone()
	}
	out := a.Clone()
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			if out.Pix[y*out.Width+x] == 0 {
				continue
			}
			mx, my := out.ToMM(x, y)
			bx, by := b.ToPx(mx, my)
			if b.at(bx, by) != 0 {
				out.Pix[y*out.Width+x] = 0
			}
		}
	}
	return out
}

// Intersect returns a AND b, on a's canvas.
func Intersect(a, b *Mask) *Mask {
	if a == nil || b == nil {
		return NewMask(0, 0, 0, 0, DefaultScale, 0)
	}
	out := a.Clone()
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			if out.Pix[y*out.Width+x] == 0 {
				continue
			}
			mx, my := out.ToMM(x, y)
			bx, by := b.ToPx(mx, my)
			if b.at(bx, by) == 0 {
				out.Pix[y*out.Width+x] = 0
			}
		}
	}
	return out
}

// Translate shifts the mask's origin by (dx,dy) mm, i.e. moves its content
// in millimeter space without resampling pixels.
func (m *Mask) Translate(dx, dy float64) *Mask {
	out := m.Clone()
	out.OriginX += dx
	out.OriginY += dy
	return out
}
