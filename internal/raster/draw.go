package raster

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// threshold is the alpha value (out of 255) above which an
// anti-aliased gg/rasterx pixel counts as "lit" in the binary Mask —
// the vector analogue of a plain RGB solid-pixel threshold test.
const threshold = 96

// shapeContext returns a gg.Context scoped to m's pixel grid, with its
// coordinate system set up so drawing calls can be issued in millimeters.
func (m *Mask) shapeContext() *gg.Context {
	dc := gg.NewContext(m.Width, m.Height)
	dc.Scale(m.Scale, m.Scale)
	dc.Translate(-m.OriginX, -m.OriginY)
	dc.SetRGBA(1, 1, 1, 1)
	return dc
}

// commit copies a rendered gg canvas's alpha channel into the mask using
// the lit-pixel threshold, OR-ing it into whatever was already set.
func (m *Mask) commit(dc *gg.Context) {
	img := dc.Image()
	b := img.Bounds()
	for y := 0; y < m.Height && y < b.Dy(); y++ {
		for x := 0; x < m.Width && x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if uint8(a>>8) >= threshold {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
}

// FillCircle rasterizes a disk of the given diameter centered at (cx,cy),
// the shape of a circular Gerber aperture.
func (m *Mask) FillCircle(cx, cy, diameter float64) {
	if diameter <= 0 {
		return
	}
	dc := m.shapeContext()
	dc.DrawCircle(cx, cy, diameter/2)
	dc.Fill()
	m.commit(dc)
}

// FillRect rasterizes an axis-aligned rectangle centered at (cx,cy), the
// shape of a rectangular Gerber aperture.
func (m *Mask) FillRect(cx, cy, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	dc := m.shapeContext()
	dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
	dc.Fill()
	m.commit(dc)
}

// FillRotatedRect rasterizes a rectangle centered at (cx,cy), rotated by
// rotDeg about its center — the center-rectangle aperture macro primitive
// (code 21).
func (m *Mask) FillRotatedRect(cx, cy, w, h, rotDeg float64) {
	if w <= 0 || h <= 0 {
		return
	}
	dc := m.shapeContext()
	dc.Push()
	dc.RotateAbout(gg.Radians(rotDeg), cx, cy)
	dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
	dc.Fill()
	dc.Pop()
	m.commit(dc)
}

// FillOblong rasterizes a stadium (rectangle with semicircular caps on the
// short axis) centered at (cx,cy) with overall width/height w,h — the
// shape of an oblong Gerber aperture.
func (m *Mask) FillOblong(cx, cy, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	r := math.Min(w, h) / 2
	dc := m.shapeContext()
	if w >= h {
		half := w/2 - r
		dc.DrawLine(cx-half, cy, cx+half, cy)
	} else {
		half := h/2 - r
		dc.DrawLine(cx, cy-half, cx, cy+half)
	}
	dc.SetLineCapRound()
	dc.SetLineWidth(2 * r * m.Scale)
	dc.Stroke()
	m.commit(dc)
}

// StrokeSegment sweeps a circular pen of the given width along (x1,y1) ->
// (x2,y2) — a Gerber draw from a circular aperture, or from an oblong
// aperture whose effective width is min(longAxis, shortAxis).
func (m *Mask) StrokeSegment(x1, y1, x2, y2, width float64) {
	if width <= 0 {
		return
	}
	dc := m.shapeContext()
	dc.SetLineCapRound()
	dc.SetLineWidth(width * m.Scale)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	m.commit(dc)
}

// FillPolygon rasterizes a closed contour (such as a G36/G37 region) using
// a non-zero-winding scanline fill. Gerber regions can self-overlap (the
// composed result of several D01 segments with implicit closure) in ways a
// plain even-odd flood (as gg.Fill defaults to for self-intersecting paths)
// would mis-render, so region fill goes through rasterx's scanline filler
// directly instead of through the gg helpers used for apertures/draws.
func (m *Mask) FillPolygon(pts [][2]float64) {
	if len(pts) < 3 {
		return
	}

	img := image.NewAlpha(image.Rect(0, 0, m.Width, m.Height))
	scanner := rasterx.NewScannerGV(m.Width, m.Height, img, img.Bounds())
	filler := rasterx.NewFiller(m.Width, m.Height, scanner)
	filler.SetWinding(true)

	toFixed := func(x, y float64) fixed.Point26_6 {
		px := (x - m.OriginX) * m.Scale
		py := (y - m.OriginY) * m.Scale
		return fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(py * 64)}
	}

	filler.Start(toFixed(pts[0][0], pts[0][1]))
	for _, p := range pts[1:] {
		filler.Line(toFixed(p[0], p[1]))
	}
	filler.Stop(true)
	filler.Draw()

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if img.AlphaAt(x, y).A >= threshold {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
}
