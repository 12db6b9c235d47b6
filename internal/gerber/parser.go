package gerber

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"pcb-to-gcode/internal/fixedpoint"
	"pcb-to-gcode/internal/raster"
)

// ParseError reports a fatal problem encountered in strict mode, or that
// aborted parsing outright (a missing file). Warnings collected in non-strict
// mode are attached to the returned ParsedGerber instead of returned as an
// error.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// ZeroMode mirrors fixedpoint.ZeroMode with the Gerber-specific name.
type ZeroMode = fixedpoint.ZeroMode

// CoordMode is absolute (A) or incremental (I) per the active FS directive.
type CoordMode byte

const (
	CoordAbsolute    CoordMode = 'A'
	CoordIncremental CoordMode = 'I'
)

// ParsedGerber is the immutable result of parsing one Gerber file.
type ParsedGerber struct {
	Apertures map[int]Aperture
	Macros    map[string]Macro
	Flashes   []Flash
	Draws     []Draw

	// PolarityOps is every dark/clear geometry contribution (flash, draw,
	// closed region) in the exact order the file produced it. Composite
	// folds over this in order rather than unioning the two polarities as
	// independent batches: an LPC region subtracts only from the geometry
	// accumulated before it, so a later dark feature re-covering the same
	// area is not re-punched by that clear.
	PolarityOps []PolarityOp

	// Scale is the px/mm working resolution this file's geometry was
	// rasterized at (config.Job.GeomScale, or raster.DefaultScale if the
	// caller didn't override it). Tracks needs it to allocate the stroke
	// masks it builds lazily from Draws.
	Scale float64

	Units       string // "mm" or "inch"
	FSZeroMode  ZeroMode
	FSCoordMode CoordMode
	FSXInt      int
	FSXDec      int
	FSYInt      int
	FSYDec      int

	Warnings []string
}

// PolarityOp is one dark (additive) or clear (subtractive) geometry
// contribution, in the file order Composite folds over.
type PolarityOp struct {
	Dark bool
	Mask *raster.Mask
}

// Composite folds PolarityOps in file order: each dark op unions into the
// running image, each clear op subtracts from it. This is not the same as
// union(all dark) - union(all clear) — a clear that precedes a later dark
// feature only punches the geometry accumulated up to that point, so the
// later dark feature is not re-punched by it.
func (p *ParsedGerber) Composite() *raster.Mask {
	var acc *raster.Mask
	for _, op := range p.PolarityOps {
		if op.Dark {
			acc = raster.Union(acc, op.Mask)
		} else {
			acc = raster.Subtract(acc, op.Mask)
		}
	}
	return acc
}

func (p *ParsedGerber) scaleOrDefault() float64 {
	if p.Scale > 0 {
		return p.Scale
	}
	return raster.DefaultScale
}

// Pads returns the composite image intersected with the union of every
// flash shape.
func (p *ParsedGerber) Pads() *raster.Mask {
	var flashUnion *raster.Mask
	for _, fl := range p.Flashes {
		ap, ok := p.Apertures[fl.ApertureID]
		if !ok {
			continue
		}
		g := flashGeometry(ap, fl.X, fl.Y, p.Macros, p.scaleOrDefault())
		flashUnion = raster.Union(flashUnion, g)
	}
	if flashUnion == nil {
		return nil
	}
	composite := p.Composite()
	if composite == nil {
		return flashUnion
	}
	return raster.Intersect(composite, flashUnion)
}

// Tracks returns the composite image intersected with the union of every
// draw swept by a circle, oblong or rectangle aperture; a non-circle
// aperture sweeps a round pen of width min(w, h). Macro draws are skipped.
func (p *ParsedGerber) Tracks() *raster.Mask {
	var trackUnion *raster.Mask
	for _, d := range p.Draws {
		ap, ok := p.Apertures[d.ApertureID]
		if !ok || ap.Kind == ApertureMacro {
			continue
		}
		width := ap.Diameter
		if ap.Kind != ApertureCircle {
			width = minf(ap.Width, ap.Height)
		}
		if width <= 0 {
			continue
		}
		g := raster.NewMask(minf(d.X1, d.X2)-width, minf(d.Y1, d.Y2)-width, maxf(d.X1, d.X2)+width, maxf(d.Y1, d.Y2)+width, p.scaleOrDefault(), 0)
		g.StrokeSegment(d.X1, d.Y1, d.X2, d.Y2, width)
		trackUnion = raster.Union(trackUnion, g)
	}
	if trackUnion == nil {
		return nil
	}
	composite := p.Composite()
	if composite == nil {
		return trackUnion
	}
	return raster.Intersect(composite, trackUnion)
}

var (
	reFS       = regexp.MustCompile(`FS([LT])([AI])X(\d)(\d)Y(\d)(\d)`)
	reAMStart  = regexp.MustCompile(`^%AM([A-Za-z][A-Za-z0-9_]*)\*`)
	reAMEnd    = regexp.MustCompile(`\*%\s*$`)
	reADDStd   = regexp.MustCompile(`^%ADD(\d+)([A-Z])\s*,?\s*([0-9.+-]+)(?:X([0-9.+-]+))?`)
	reADDMacro = regexp.MustCompile(`^%ADD(\d+)([A-Za-z][A-Za-z0-9_]*)\s*,?\s*([0-9.+-]+)(?:X([0-9.+-]+))?(?:X([0-9.+-]+))?`)
	reDSel     = regexp.MustCompile(`^D(\d+)\*$`)
	reX        = regexp.MustCompile(`X(-?[\d.]+)`)
	reY        = regexp.MustCompile(`Y(-?[\d.]+)`)
)

// ParseFile reads a Gerber file from disk and parses it. scale is the
// raster working resolution in px/mm (config.Job.GeomScale); pass 0 to use
// raster.DefaultScale.
func ParseFile(path string, strict bool, scale float64) (*ParsedGerber, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: err.Error()}
	}
	defer f.Close()
	return Parse(f, path, strict, scale)
}

// Parse decodes a Gerber stream. name is used only for diagnostics. scale is
// the raster working resolution in px/mm; pass 0 to use raster.DefaultScale.
func Parse(r io.Reader, name string, strict bool, scale float64) (*ParsedGerber, error) {
	if scale <= 0 {
		scale = raster.DefaultScale
	}
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{File: name, Msg: err.Error()}
	}

	p := &ParsedGerber{
		Apertures:   map[int]Aperture{},
		Macros:      parseMacroDefs(lines),
		Scale:       scale,
		Units:       "mm",
		FSZeroMode:  fixedpoint.LeadingSuppressed,
		FSCoordMode: CoordAbsolute,
		FSXInt:      3, FSXDec: 6,
		FSYInt: 3, FSYDec: 6,
	}

	warn := func(lineNo int, msg string) error {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s:%d: %s", name, lineNo, msg))
		if strict {
			return &ParseError{File: name, Line: lineNo, Msg: msg}
		}
		return nil
	}

	var unitScale float64 = 1.0
	sawUnits := false
	sawFS := false
	polarityDark := true

	var curAp int
	haveCur := false
	var prevX, prevY float64
	havePrev := false

	inRegion := false
	var regionContours [][][2]float64
	var regionCurrent [][2]float64

	closeRegion := func() {
		if len(regionContours) == 0 && len(regionCurrent) == 0 {
			return
		}
		if len(regionCurrent) >= 3 {
			regionContours = append(regionContours, regionCurrent)
		}
		if len(regionContours) == 0 {
			return
		}
		minX, minY, maxX, maxY := regionBounds(regionContours)
		rmask := raster.NewMask(minX, minY, maxX, maxY, scale, 1.0)
		for _, c := range regionContours {
			rmask.FillPolygon(c)
		}
		p.PolarityOps = append(p.PolarityOps, PolarityOp{Dark: polarityDark, Mask: rmask})
		regionContours = nil
		regionCurrent = nil
	}

	for lineNo, raw := range lines {
		lineNo++ // 1-based
		l := strings.TrimSpace(raw)
		if l == "" || strings.HasPrefix(l, "G04") || strings.HasPrefix(l, ";") {
			continue
		}

		if strings.Contains(l, "MOIN") {
			p.Units = "inch"
			unitScale = 25.4
			sawUnits = true
			continue
		}
		if strings.Contains(l, "MOMM") {
			p.Units = "mm"
			unitScale = 1.0
			sawUnits = true
			continue
		}

		if m := reFS.FindStringSubmatch(l); m != nil {
			p.FSZeroMode = ZeroMode(m[1][0])
			p.FSCoordMode = CoordMode(m[2][0])
			p.FSXInt, _ = strconv.Atoi(m[3])
			p.FSXDec, _ = strconv.Atoi(m[4])
			p.FSYInt, _ = strconv.Atoi(m[5])
			p.FSYDec, _ = strconv.Atoi(m[6])
			sawFS = true
			continue
		}

		if strings.Contains(strings.ToUpper(l), "LPD") {
			polarityDark = true
			continue
		}
		if strings.Contains(strings.ToUpper(l), "LPC") {
			polarityDark = false
			continue
		}

		if strings.HasPrefix(l, "G36") {
			inRegion = true
			regionContours = nil
			regionCurrent = nil
			havePrev = false
			continue
		}
		if strings.HasPrefix(l, "G37") {
			closeRegion()
			inRegion = false
			havePrev = false
			continue
		}

		if m := reADDStd.FindStringSubmatch(l); m != nil {
			id, _ := strconv.Atoi(m[1])
			shape := m[2]
			a, errA := strconv.ParseFloat(m[3], 64)
			b := a
			if m[4] != "" {
				b, _ = strconv.ParseFloat(m[4], 64)
			}
			if errA != nil {
				if err := warn(lineNo, "invalid ADD params: "+l); err != nil {
					return p, err
				}
				continue
			}
			a *= unitScale
			b *= unitScale
			switch shape {
			case "C":
				p.Apertures[id] = Aperture{ID: id, Kind: ApertureCircle, Diameter: a}
			case "R":
				p.Apertures[id] = Aperture{ID: id, Kind: ApertureRect, Width: a, Height: b}
			case "O":
				p.Apertures[id] = Aperture{ID: id, Kind: ApertureOblong, Width: a, Height: b}
			default:
				p.Apertures[id] = Aperture{ID: id, Kind: ApertureCircle, Diameter: a}
			}
			continue
		}

		if m := reADDMacro.FindStringSubmatch(l); m != nil {
			id, _ := strconv.Atoi(m[1])
			name := m[2]
			var params []float64
			if v, err := strconv.ParseFloat(m[3], 64); err == nil {
				params = append(params, v*unitScale)
			}
			if m[4] != "" {
				if v, err := strconv.ParseFloat(m[4], 64); err == nil {
					params = append(params, v*unitScale)
				}
			}
			if m[5] != "" {
				if v, err := strconv.ParseFloat(m[5], 64); err == nil {
					params = append(params, v)
				}
			}
			p.Apertures[id] = Aperture{ID: id, Kind: ApertureMacro, MacroName: name, Params: params}
			if _, ok := p.Macros[name]; !ok {
				if err := warn(lineNo, fmt.Sprintf("macro aperture uses undefined macro '%s' (aperture D%d)", name, id)); err != nil {
					return p, err
				}
			}
			continue
		}

		if m := reDSel.FindStringSubmatch(l); m != nil {
			id, err := strconv.Atoi(m[1])
			// D-codes below 10 are operation codes, not aperture selects.
			if err == nil && id >= 10 {
				curAp = id
				haveCur = true
			}
			continue
		}

		xm := reX.FindStringSubmatch(l)
		ym := reY.FindStringSubmatch(l)
		if xm == nil || ym == nil {
			continue
		}

		x := fixedpoint.Decode(xm[1], fixedpoint.Format{IntDigits: p.FSXInt, DecDigits: p.FSXDec, Zero: p.FSZeroMode}) * unitScale
		y := fixedpoint.Decode(ym[1], fixedpoint.Format{IntDigits: p.FSYInt, DecDigits: p.FSYDec, Zero: p.FSZeroMode}) * unitScale

		if p.FSCoordMode == CoordIncremental && havePrev {
			x += prevX
			y += prevY
		}

		isD01 := strings.HasSuffix(l, "D01*")
		isD02 := strings.HasSuffix(l, "D02*")
		isD03 := strings.HasSuffix(l, "D03*")

		if inRegion {
			switch {
			case isD02:
				if len(regionCurrent) >= 3 {
					regionContours = append(regionContours, regionCurrent)
				}
				regionCurrent = [][2]float64{{x, y}}
			case isD01:
				regionCurrent = append(regionCurrent, [2]float64{x, y})
			}
			prevX, prevY = x, y
			havePrev = true
			continue
		}

		switch {
		case isD03 && haveCur:
			ap, ok := p.Apertures[curAp]
			if !ok {
				if err := warn(lineNo, fmt.Sprintf("flash uses undefined aperture D%d", curAp)); err != nil {
					return p, err
				}
			}
			p.Flashes = append(p.Flashes, Flash{ApertureID: curAp, X: x, Y: y})
			if ok {
				if g := flashGeometry(ap, x, y, p.Macros, scale); g != nil {
					p.PolarityOps = append(p.PolarityOps, PolarityOp{Dark: polarityDark, Mask: g})
				}
			}
			prevX, prevY = x, y
			havePrev = true

		case isD01 && havePrev && haveCur:
			ap, ok := p.Apertures[curAp]
			if !ok {
				if err := warn(lineNo, fmt.Sprintf("draw uses undefined aperture D%d", curAp)); err != nil {
					return p, err
				}
			}
			p.Draws = append(p.Draws, Draw{ApertureID: curAp, X1: prevX, Y1: prevY, X2: x, Y2: y})
			if ok && ap.Kind != ApertureMacro {
				width := ap.Diameter
				if ap.Kind != ApertureCircle {
					width = minf(ap.Width, ap.Height)
				}
				if width > 0 {
					g := raster.NewMask(minf(prevX, x)-width, minf(prevY, y)-width, maxf(prevX, x)+width, maxf(prevY, y)+width, scale, 0)
					g.StrokeSegment(prevX, prevY, x, y, width)
					p.PolarityOps = append(p.PolarityOps, PolarityOp{Dark: polarityDark, Mask: g})
				}
			}
			prevX, prevY = x, y
			havePrev = true

		case isD02:
			prevX, prevY = x, y
			havePrev = true
		}
	}

	if !sawUnits {
		p.Warnings = append(p.Warnings, name+": no explicit units (MOMM/MOIN) found; defaulted to mm")
	}
	if !sawFS {
		p.Warnings = append(p.Warnings, name+": no FS format found; defaulted to L,A, X3.6 / Y3.6")
	}
	if len(p.Apertures) == 0 {
		p.Warnings = append(p.Warnings, name+": no aperture definitions found")
	}

	if strict {
		for _, w := range p.Warnings {
			return p, &ParseError{File: name, Msg: w}
		}
	}

	checkExtents(p, name)

	return p, nil
}

func checkExtents(p *ParsedGerber, name string) {
	c := p.Composite()
	if c == nil {
		return
	}
	minX, minY, maxX, maxY, ok := c.TightBounds()
	if !ok {
		return
	}
	w, h := maxX-minX, maxY-minY
	const maxReasonable = 2000.0
	const minReasonable = 0.01
	if w > maxReasonable || h > maxReasonable {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s: very large extents (%.1f x %.1f mm); check units/FS/zero suppression", name, w, h))
	}
	if w < minReasonable || h < minReasonable {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s: very small extents (%.6f x %.6f mm); check units/FS/zero suppression", name, w, h))
	}
}

func regionBounds(contours [][][2]float64) (minX, minY, maxX, maxY float64) {
	first := true
	for _, c := range contours {
		for _, p := range c {
			if first {
				minX, maxX = p[0], p[0]
				minY, maxY = p[1], p[1]
				first = false
				continue
			}
			minX, maxX = minf(minX, p[0]), maxf(maxX, p[0])
			minY, maxY = minf(minY, p[1]), maxf(maxY, p[1])
		}
	}
	return
}

// flashGeometry rasterizes the shape an aperture stamps at (x,y) at the
// given px/mm working resolution.
func flashGeometry(ap Aperture, x, y float64, macros map[string]Macro, scale float64) *raster.Mask {
	if scale <= 0 {
		scale = raster.DefaultScale
	}
	switch ap.Kind {
	case ApertureCircle:
		if ap.Diameter <= 0 {
			return nil
		}
		r := ap.Diameter / 2
		m := raster.NewMask(x-r, y-r, x+r, y+r, scale, 0)
		m.FillCircle(x, y, ap.Diameter)
		return m
	case ApertureRect:
		m := raster.NewMask(x-ap.Width/2, y-ap.Height/2, x+ap.Width/2, y+ap.Height/2, scale, 0)
		m.FillRect(x, y, ap.Width, ap.Height)
		return m
	case ApertureOblong:
		half := maxf(ap.Width, ap.Height) / 2
		m := raster.NewMask(x-half, y-half, x+half, y+half, scale, 0)
		m.FillOblong(x, y, ap.Width, ap.Height)
		return m
	case ApertureMacro:
		macro, ok := macros[ap.MacroName]
		if !ok {
			return nil
		}
		isCenterRect := false
		for _, prim := range macro.Primitives {
			if prim.Kind == MacroCenterRect {
				isCenterRect = true
				break
			}
		}
		if !isCenterRect || len(ap.Params) < 1 {
			return nil
		}
		w := ap.Params[0]
		h := w
		if len(ap.Params) > 1 {
			h = ap.Params[1]
		}
		rot := 0.0
		if len(ap.Params) > 2 {
			rot = ap.Params[2]
		}
		half := maxf(w, h)
		m := raster.NewMask(x-half, y-half, x+half, y+half, scale, 0)
		m.FillRotatedRect(x, y, w, h, rot)
		return m
	default:
		return nil
	}
}

func parseMacroDefs(lines []string) map[string]Macro {
	macros := map[string]Macro{}
	for i := 0; i < len(lines); i++ {
		l := strings.TrimSpace(lines[i])
		m := reAMStart.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		name := m[1]
		bodyParts := []string{l}
		if !reAMEnd.MatchString(l) {
			j := i + 1
			for j < len(lines) {
				bodyParts = append(bodyParts, strings.TrimSpace(lines[j]))
				if reAMEnd.MatchString(lines[j]) {
					break
				}
				j++
			}
			i = j
		}
		body := strings.Join(bodyParts, "")

		inside := body
		if idx := strings.Index(body, "*"); idx >= 0 {
			inside = body[idx+1:]
		}
		if idx := strings.LastIndex(inside, "*%"); idx >= 0 {
			inside = inside[:idx]
		}
		inside = strings.TrimSpace(inside)

		if strings.HasPrefix(inside, "21,") && strings.Contains(inside, "$1") && strings.Contains(inside, "$2") {
			macros[name] = Macro{
				Name: name,
				Primitives: []MacroPrimitive{
					{Kind: MacroCenterRect, Params: []float64{0, 0, 0}},
				},
			}
		}
	}
	return macros
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
