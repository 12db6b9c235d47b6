// Package excellon implements an Excellon drill-file state machine:
// units/zero-suppression headers, tool definitions and selection,
// round-hole hits, G85 slots, and M15/M16 route-mode slot chaining,
// followed by post-parse hole de-duplication.
package excellon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"pcb-to-gcode/internal/fixedpoint"
)

// ParseError reports a strict-mode failure.
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

// Hole is a round drill hit.
type Hole struct {
	X, Y     float64
	Diameter float64
}

// Slot is a routed segment.
type Slot struct {
	X1, Y1, X2, Y2 float64
	Width          float64
}

// Tool is a defined drill/router bit referenced by a T-code.
type Tool struct {
	ID       string
	Diameter float64
}

// File is the immutable result of parsing one Excellon file.
type File struct {
	Units           string // "mm" or "inch"
	ZeroSuppression fixedpoint.ZeroMode
	Format          fixedpoint.Format

	Tools map[string]Tool
	Holes []Hole
	Slots []Slot

	Warnings []string
}

var (
	reToolDef  = regexp.MustCompile(`^T(\d+)[CD]([\d.]+)$`)
	reToolSel  = regexp.MustCompile(`^T\d+$`)
	reHoleXY   = regexp.MustCompile(`X(-?[\d.]+)Y(-?[\d.]+)`)
	reFileFmt  = regexp.MustCompile(`(?i)FILE_FORMAT\s*=\s*(\d+)\s*:\s*(\d+)`)
	reG85      = regexp.MustCompile(`(?i)X(-?[\d.]+)Y(-?[\d.]+)G85X(-?[\d.]+)Y(-?[\d.]+)`)
	reUnitHdr  = regexp.MustCompile(`(?i)^(METRIC|INCH)\s*,\s*(LZ|TZ)\s*$`)
)

// ParseFile reads an Excellon drill file from disk. A missing file is not
// an error: it returns an empty File with a warning, since -PTH.drl and
// -NPTH.drl are both probed and either may legitimately not exist.
func ParseFile(path string, strict bool) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{
				Units:  "mm",
				Tools:  map[string]Tool{},
				Format: fixedpoint.Format{IntDigits: 3, DecDigits: 3, Zero: fixedpoint.LeadingSuppressed},
				Warnings: []string{
					fmt.Sprintf("excellon: file not found: %s", path),
				},
			}, nil
		}
		return nil, &ParseError{File: path, Msg: err.Error()}
	}
	defer f.Close()
	return Parse(f, path, strict)
}

// Parse decodes an Excellon stream. name is used only for diagnostics.
func Parse(r io.Reader, name string, strict bool) (*File, error) {
	ex := &File{
		Units:  "mm",
		Tools:  map[string]Tool{},
		Format: fixedpoint.Format{IntDigits: 3, DecDigits: 3, Zero: fixedpoint.LeadingSuppressed},
	}

	warn := func(lineNo int, msg string) error {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%s:%d: %s", name, lineNo, msg))
		if strict {
			return &ParseError{File: name, Line: lineNo, Msg: msg}
		}
		return nil
	}

	var currentTool string
	haveTool := false
	unitScale := 1.0
	sawUnits := false
	sawToolDef := false
	routeMode := false
	var lastRouteX, lastRouteY float64
	haveLastRoute := false

	var boundsPts [][2]float64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ";") {
			if m := reFileFmt.FindStringSubmatch(line); m != nil {
				i, errI := strconv.Atoi(m[1])
				d, errD := strconv.Atoi(m[2])
				if errI != nil || errD != nil {
					if err := warn(lineNo, "bad FILE_FORMAT comment: "+line); err != nil {
						return ex, err
					}
				} else {
					ex.Format = fixedpoint.Format{IntDigits: i, DecDigits: d, Zero: ex.Format.Zero}
				}
			}
			continue
		}

		if m := reUnitHdr.FindStringSubmatch(line); m != nil {
			if strings.EqualFold(m[1], "METRIC") {
				ex.Units = "mm"
				unitScale = 1.0
			} else {
				ex.Units = "inch"
				unitScale = 25.4
			}
			if strings.EqualFold(m[2], "LZ") {
				ex.ZeroSuppression = fixedpoint.LeadingSuppressed
			} else {
				ex.ZeroSuppression = fixedpoint.TrailingSuppressed
			}
			ex.Format.Zero = ex.ZeroSuppression
			sawUnits = true
			continue
		}

		if strings.Contains(line, "METRIC") || strings.HasPrefix(line, "M71") {
			ex.Units = "mm"
			unitScale = 1.0
			sawUnits = true
			continue
		}
		if strings.Contains(line, "INCH") || strings.HasPrefix(line, "M72") {
			ex.Units = "inch"
			unitScale = 25.4
			sawUnits = true
			continue
		}

		if strings.HasPrefix(line, "M15") {
			routeMode = true
			continue
		}
		if strings.HasPrefix(line, "M16") {
			routeMode = false
			haveLastRoute = false
			continue
		}

		if m := reToolDef.FindStringSubmatch(line); m != nil {
			tid := "T" + m[1]
			diam, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				if err := warn(lineNo, "invalid tool diameter: "+line); err != nil {
					return ex, err
				}
				continue
			}
			ex.Tools[tid] = Tool{ID: tid, Diameter: diam * unitScale}
			sawToolDef = true
			continue
		}

		if reToolSel.MatchString(line) {
			currentTool = line
			haveTool = true
			haveLastRoute = false
			if _, ok := ex.Tools[currentTool]; !ok {
				ex.Warnings = append(ex.Warnings, fmt.Sprintf("%s:%d: selected %s before/without definition", name, lineNo, currentTool))
			}
			continue
		}

		if haveTool {
			if m := reG85.FindStringSubmatch(line); m != nil {
				x1 := fixedpoint.Decode(m[1], ex.Format) * unitScale
				y1 := fixedpoint.Decode(m[2], ex.Format) * unitScale
				x2 := fixedpoint.Decode(m[3], ex.Format) * unitScale
				y2 := fixedpoint.Decode(m[4], ex.Format) * unitScale
				width := ex.Tools[currentTool].Diameter
				ex.Slots = append(ex.Slots, Slot{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: width})
				boundsPts = append(boundsPts, [2]float64{x1, y1}, [2]float64{x2, y2})
				continue
			}
		}

		if haveTool && strings.Contains(line, "X") && strings.Contains(line, "Y") {
			m := reHoleXY.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			x := fixedpoint.Decode(m[1], ex.Format) * unitScale
			y := fixedpoint.Decode(m[2], ex.Format) * unitScale

			tool, ok := ex.Tools[currentTool]
			if !ok {
				ex.Warnings = append(ex.Warnings, fmt.Sprintf("%s:%d: XY uses undefined tool %s; dropping hit", name, lineNo, currentTool))
				continue
			}

			if routeMode {
				if !haveLastRoute {
					lastRouteX, lastRouteY = x, y
					haveLastRoute = true
				} else {
					ex.Slots = append(ex.Slots, Slot{X1: lastRouteX, Y1: lastRouteY, X2: x, Y2: y, Width: tool.Diameter})
					lastRouteX, lastRouteY = x, y
				}
			} else {
				ex.Holes = append(ex.Holes, Hole{X: x, Y: y, Diameter: tool.Diameter})
			}
			boundsPts = append(boundsPts, [2]float64{x, y})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{File: name, Msg: err.Error()}
	}

	if !sawUnits {
		ex.Warnings = append(ex.Warnings, name+": no explicit units; defaulted to mm")
	}
	if !sawToolDef {
		ex.Warnings = append(ex.Warnings, name+": no tool definitions found (TxxC...)")
	}
	checkExtents(ex, name, boundsPts)

	if strict {
		for _, w := range ex.Warnings {
			return ex, &ParseError{File: name, Msg: w}
		}
	}

	return ex, nil
}

func checkExtents(ex *File, name string, pts [][2]float64) {
	if len(pts) == 0 {
		return
	}
	minX, minY := pts[0][0], pts[0][1]
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	w, h := maxX-minX, maxY-minY
	const maxReasonable = 2000.0
	const minReasonable = 0.01
	if w > maxReasonable || h > maxReasonable {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%s: very large extents (%.1f x %.1f mm); check units/format/zero suppression", name, w, h))
	}
	if w < minReasonable || h < minReasonable {
		ex.Warnings = append(ex.Warnings, fmt.Sprintf("%s: very small extents (%.6f x %.6f mm); check units/format/zero suppression", name, w, h))
	}
}

// DedupeHoles merges holes within tol of each other, keeping the largest
// diameter and its center point. A non-positive tol merges only exact
// (6-decimal rounded) coincident points.
func DedupeHoles(holes []Hole, tol float64) []Hole {
	if len(holes) == 0 {
		return nil
	}
	if tol <= 0 {
		best := map[[2]float64]Hole{}
		order := make([][2]float64, 0, len(holes))
		for _, h := range holes {
			key := [2]float64{round6(h.X), round6(h.Y)}
			if prev, ok := best[key]; !ok {
				best[key] = h
				order = append(order, key)
			} else if h.Diameter > prev.Diameter {
				best[key] = h
			}
		}
		out := make([]Hole, 0, len(order))
		for _, k := range order {
			out = append(out, best[k])
		}
		return out
	}

	type cellKey struct{ x, y int }
	grid := map[cellKey][]int{}
	var out []Hole
	var cells []cellKey // current grid cell of each out entry
	inv := 1.0 / tol
	r2 := tol * tol

	cellOf := func(x, y float64) cellKey {
		return cellKey{int(round(x * inv)), int(round(y * inv))}
	}

	for _, h := range holes {
		c := cellOf(h.X, h.Y)
		found := -1
	search:
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, idx := range grid[cellKey{c.x + dx, c.y + dy}] {
					o := out[idx]
					ddx, ddy := h.X-o.X, h.Y-o.Y
					if ddx*ddx+ddy*ddy <= r2 {
						found = idx
						break search
					}
				}
			}
		}
		if found < 0 {
			out = append(out, h)
			cells = append(cells, c)
			grid[c] = append(grid[c], len(out)-1)
		} else if h.Diameter > out[found].Diameter {
			// A replacement moves the stored center, so the slot must be
			// findable from its new cell too, or later holes near the new
			// position would miss it.
			out[found] = h
			if c != cells[found] {
				grid[c] = append(grid[c], found)
				cells[found] = c
			}
		}
	}
	return out
}

func round(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

func round6(v float64) float64 {
	const scale = 1e6
	return round(v*scale) / scale
}
