// Package gcodegen writes GRBL-flavored G-code: a shared header/tool-change/
// end sequence, depth-stepped polyline writing with optional ramp-in, and
// stepdown depth lists, all through a single Writer value threaded
// explicitly through the operation strategies instead of reading job
// settings from module-level globals.
package gcodegen

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/256dpi/gcode"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/geom"
)

// Writer accumulates G-code lines for one output file.
type Writer struct {
	w    io.Writer
	Job  config.Job
	Bit  config.Bit
}

// New wraps w for writing.
func New(w io.Writer, job config.Job) *Writer {
	return &Writer{w: w, Job: job}
}

// line renders one gcode.Line using the decimal precision the format
// expects per code letter (X/Y to 4 decimals, Z to 4, F/S as integers, P to
// 3), rather than the library's generic default formatting.
func (gw *Writer) line(codes ...gcode.GCode) {
	var parts []string
	for _, c := range codes {
		parts = append(parts, formatCode(c))
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	fmt.Fprintln(gw.w, out)
}

func formatCode(c gcode.GCode) string {
	switch c.Letter {
	case "X", "Y", "I", "J", "Z":
		return fmt.Sprintf("%s%.4f", c.Letter, c.Value)
	case "P":
		return fmt.Sprintf("%s%.3f", c.Letter, c.Value)
	case "F", "S":
		return fmt.Sprintf("%s%d", c.Letter, int(math.Round(c.Value)))
	default:
		if c.Value == math.Trunc(c.Value) {
			return fmt.Sprintf("%s%d", c.Letter, int(c.Value))
		}
		return fmt.Sprintf("%s%g", c.Letter, c.Value)
	}
}

func code(letter string, value float64) gcode.GCode {
	return gcode.GCode{Letter: letter, Value: value}
}

func (gw *Writer) comment(s string) {
	fmt.Fprintf(gw.w, "; %s\n", s)
}

func (gw *Writer) raw(s string) {
	fmt.Fprintln(gw.w, s)
}

func (gw *Writer) blank() {
	fmt.Fprintln(gw.w)
}

// WriteHeader emits the once-per-file preamble: units, motion mode, WCS,
// cleared offsets, a rapid to travel height, and the optional probe block.
func (gw *Writer) WriteHeader(jobName string) {
	gw.raw("; ----------------------------")
	gw.raw("; pcb2gcode job")
	if jobName != "" {
		gw.comment("Job: " + jobName)
	}
	gw.comment("Units: mm")
	gw.raw("; ----------------------------")

	gw.raw("G21")
	gw.raw("G90")
	gw.raw("G17")
	gw.raw("G94")
	gw.raw("G54")
	gw.raw("G92.1")

	gw.line(code("G", 0), code("Z", gw.Job.TravelZ))

	if gw.Job.ProbeOnStart {
		if gw.Job.ProbeGcode != "" {
			gw.comment("Probe on start (user-provided)")
			for _, ln := range splitLines(gw.Job.ProbeGcode) {
				if ln != "" {
					gw.raw(ln)
				}
			}
			gw.line(code("G", 0), code("Z", gw.Job.TravelZ))
		} else {
			gw.comment("Probe on start requested, but probe_gcode is empty.")
			gw.raw("M0 ; Run your probe routine now, then resume")
		}
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			out = append(out, trimSpace(s[start:i]))
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\r') {
		j--
	}
	return s[i:j]
}

// EnsureHeader opens path for append, writing a fresh header first only if
// the file doesn't exist or is empty, so re-running a job appends to the
// same program instead of double-heading it.
func EnsureHeader(path string, job config.Job, jobName string) (*os.File, error) {
	info, statErr := os.Stat(path)
	needsHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if needsHeader {
		gw := New(f, job)
		gw.WriteHeader(jobName)
	}
	return f, nil
}

// ToolchangeSequence emits the manual tool-swap block: raise, spindle off,
// park, pause, spindle on at the bit's RPM, optional warmup dwell, then
// rapid back to travel height.
func (gw *Writer) ToolchangeSequence(bit config.Bit, message string) {
	gw.blank()
	gw.line(code("G", 0), code("Z", gw.Job.ToolchangeZ))
	gw.raw("M5")
	gw.line(code("G", 0), code("X", gw.Job.ParkX), code("Y", gw.Job.ParkY))
	gw.comment(message)
	gw.raw("M0")

	if bit.RPM > 0 {
		gw.raw(fmt.Sprintf("S%d M3", bit.RPM))
	} else {
		gw.raw("M3")
	}

	if gw.Job.SpindleWarmupS > 0 {
		gw.line(code("G", 4), code("P", gw.Job.SpindleWarmupS))
	}

	gw.line(code("G", 0), code("Z", gw.Job.TravelZ))
}

// EndSequence raises to travel height, stops the spindle, parks, and
// optionally emits M2 when this is the final operation in the file.
func (gw *Writer) EndSequence(endProgram bool) {
	gw.blank()
	gw.line(code("G", 0), code("Z", gw.Job.TravelZ))
	gw.raw("M5")
	gw.line(code("G", 0), code("X", gw.Job.ParkX), code("Y", gw.Job.ParkY))
	if endProgram {
		gw.raw("M2")
	}
}

// Stepdown returns the list of cut depths s, 2s, 3s, ..., D with the final
// step clamped to D.
func Stepdown(total, step float64) []float64 {
	if step <= 0 || total <= 0 {
		return []float64{total}
	}
	var depths []float64
	d := step
	for d < total {
		depths = append(depths, d)
		d += step
	}
	depths = append(depths, total)
	return depths
}

// WritePolyline writes one polyline at cut depth z using bit's feeds, with
// ramp-in when rampLen > 0.
func (gw *Writer) WritePolyline(p geom.Polyline, z float64, bit config.Bit, rampLen float64) {
	if len(p) < 2 {
		return
	}
	gw.line(code("G", 0), code("Z", gw.Job.SafeZ))
	gw.line(code("G", 0), code("X", p[0].X), code("Y", p[0].Y))

	if rampLen > 0 {
		gw.writeRamped(p, z, bit, rampLen)
	} else {
		gw.line(code("G", 1), code("Z", -z), code("F", bit.FeedZ))
		for _, pt := range p[1:] {
			gw.line(code("G", 1), code("X", pt.X), code("Y", pt.Y), code("F", bit.FeedXY))
		}
	}

	gw.line(code("G", 0), code("Z", gw.Job.SafeZ))
}

func (gw *Writer) writeRamped(p geom.Polyline, z float64, bit config.Bit, rampLen float64) {
	remaining := rampLen
	var rampPt geom.Point
	haveRamp := false
	segEnd := 1

	p0 := p[0]
	for i := 1; i < len(p); i++ {
		p1 := p[i]
		segLen := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
		if segLen <= 1e-12 {
			p0 = p1
			continue
		}
		if segLen >= remaining {
			t := remaining / segLen
			rampPt = geom.Point{X: p0.X + (p1.X-p0.X)*t, Y: p0.Y + (p1.Y-p0.Y)*t}
			segEnd = i
			haveRamp = true
			break
		}
		remaining -= segLen
		p0 = p1
	}
	if !haveRamp {
		// Path shorter than the ramp length: descend across the whole of it.
		rampPt = p[len(p)-1]
		segEnd = len(p) - 1
	}

	gw.line(code("G", 1), code("X", rampPt.X), code("Y", rampPt.Y), code("Z", -z), code("F", bit.FeedXY))

	endSeg := p[segEnd]
	if math.Abs(endSeg.X-rampPt.X) > 1e-9 || math.Abs(endSeg.Y-rampPt.Y) > 1e-9 {
		gw.line(code("G", 1), code("X", endSeg.X), code("Y", endSeg.Y), code("F", bit.FeedXY))
	}

	for _, pt := range p[segEnd+1:] {
		gw.line(code("G", 1), code("X", pt.X), code("Y", pt.Y), code("F", bit.FeedXY))
	}
}

// WriteDrillHit writes one peck cycle at (x,y): rapid to safe Z, rapid to
// XY, plunge straight to depth z, retract to safe Z. Drilling never ramps
// or sweeps horizontally, unlike WritePolyline's milled cuts.
func (gw *Writer) WriteDrillHit(x, y, z float64, bit config.Bit) {
	gw.line(code("G", 0), code("Z", gw.Job.SafeZ))
	gw.line(code("G", 0), code("X", x), code("Y", y))
	gw.line(code("G", 1), code("Z", -z), code("F", bit.FeedZ))
	gw.line(code("G", 0), code("Z", gw.Job.SafeZ))
}

// WriteOutline walks outline by arc length in 0.5mm steps, cutting at
// fullDepth except inside a tabRanges window (each a [start,end] arc-length
// pair) where it cuts at tabDepth instead, with optional ramp-in along the
// first rampLen of the path.
func (gw *Writer) WriteOutline(outline geom.Polyline, fullDepth, tabDepth float64, tabRanges [][2]float64, bit config.Bit, rampLen float64) {
	if len(outline) < 2 {
		return
	}
	const stepLen = 0.5
	length := outline.Length()

	depthAt := func(d float64) float64 {
		for _, tr := range tabRanges {
			if d >= tr[0] && d <= tr[1] {
				return tabDepth
			}
		}
		return fullDepth
	}

	gw.line(code("G", 0), code("Z", gw.Job.SafeZ))
	gw.line(code("G", 0), code("X", outline[0].X), code("Y", outline[0].Y))

	dist := 0.0
	if rampLen > 0 {
		rampLen = math.Min(rampLen, length)
		rampPt := geom.PointAt(outline, rampLen)
		gw.line(code("G", 1), code("X", rampPt.X), code("Y", rampPt.Y), code("Z", -depthAt(0)), code("F", bit.FeedXY))
		dist = rampLen
	}

	for dist < length {
		depth := depthAt(dist)
		gw.line(code("G", 1), code("Z", -depth), code("F", bit.FeedZ))
		next := math.Min(dist+stepLen, length)
		seg := geom.Substring(outline, dist, next)
		for _, pt := range seg[1:] {
			gw.line(code("G", 1), code("X", pt.X), code("Y", pt.Y), code("F", bit.FeedXY))
		}
		dist = next
	}

	gw.line(code("G", 0), code("Z", gw.Job.SafeZ))
}

// WritePaths orders paths by nearest-neighbor discipline (unless ordering
// is disabled) starting from the configured park position, then writes
// each one at depth z with bit's ramp length.
func (gw *Writer) WritePaths(paths []geom.Polyline, z float64, bit config.Bit) {
	if len(paths) == 0 {
		return
	}
	rampLen := bit.RampLen
	if rampLen <= 0 {
		rampLen = gw.Job.RampLen
	}

	ordered := paths
	if gw.Job.PathOrdering {
		ordered = geom.OrderNearestNeighbor(paths, geom.Point{X: gw.Job.ParkX, Y: gw.Job.ParkY})
	}
	for _, p := range ordered {
		gw.WritePolyline(p, z, bit, rampLen)
	}
}
