package job

import (
	"math"
	"os"
	"path/filepath"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/gcodegen"
	"pcb-to-gcode/internal/ops"
)

// opOrder is the fixed execution order a milling pipeline walks in;
// Driver.Run always follows this order regardless of which subset the
// caller selected.
var opOrder = []string{"copper", "mask", "drill", "outline", "silk"}

// Driver resolves one board's files, normalizes its geometry, and runs
// the selected operations in the fixed pipeline order, writing either one
// combined file or one file per operation.
type Driver struct {
	Dir    string // directory containing the board's Gerber/Excellon files
	Prefix string // input file prefix, e.g. "my_board"
	Job    config.Job
	Bits   config.Library
	Strict bool

	// RunID, when set, is stamped into the combined/per-op file header
	// comment so a generated file can be matched back to the run that
	// produced it.
	RunID string
}

// Result aggregates what the job produced: one Summary per executed
// operation (one summary line per operation, for the CLI to print) plus
// every warning collected while parsing and normalizing.
type Result struct {
	Summaries []ops.Summary
	Warnings  []string
}

// Selection picks which operations to run; a nil/empty Selection runs all
// five. Order within Selection is irrelevant — Driver always walks them in
// opOrder.
type Selection map[string]bool

func perOpFileName(name string) string {
	switch name {
	case "copper":
		return "top_copper_isolation.nc"
	case "mask":
		return "soldermask_clear.nc"
	case "drill":
		return "drill.nc"
	case "outline":
		return "board_outline.nc"
	case "silk":
		return "silkscreen.nc"
	default:
		return name + ".nc"
	}
}

// outputPath places generated files next to the board's inputs.
func (d *Driver) outputPath(name string) string {
	return filepath.Join(d.Dir, d.Job.OutputName(name))
}

func (d *Driver) jobName() string {
	if d.RunID == "" {
		return d.Prefix
	}
	return d.Prefix + " [" + d.RunID + "]"
}

// Run loads the board, normalizes it, and executes the selected operations
// (or all five when sel is empty) in the fixed order, writing a combined
// "all.nc" or one file per operation. A fatal error (missing copper,
// geometry failure, impossible drill plan) aborts the remaining
// operations and is returned directly.
func (d *Driver) Run(sel Selection, combined bool) (*Result, error) {
	board, err := Load(d.Dir, d.Prefix, d.Strict, d.Job.GeomScale)
	if err != nil {
		return nil, err
	}
	board.DedupeHoles(d.Job.HoleDedupeTol)

	res := &Result{Warnings: append([]string(nil), board.Warnings...)}

	lastIdx := -1
	for i, name := range opOrder {
		if len(sel) == 0 || sel[name] {
			lastIdx = i
		}
	}
	if lastIdx < 0 {
		return res, nil
	}

	var combinedFile *os.File
	if combined {
		combinedFile, err = gcodegen.EnsureHeader(d.outputPath("all.nc"), d.Job, d.jobName())
		if err != nil {
			return res, err
		}
		defer combinedFile.Close()
	}

	for i, name := range opOrder {
		if len(sel) != 0 && !sel[name] {
			continue
		}

		var gw *gcodegen.Writer
		var perOpFile *os.File
		if combined {
			gw = gcodegen.New(combinedFile, d.Job)
		} else {
			perOpFile, err = gcodegen.EnsureHeader(d.outputPath(perOpFileName(name)), d.Job, d.jobName())
			if err != nil {
				return res, err
			}
			gw = gcodegen.New(perOpFile, d.Job)
		}

		// In combined mode, every op but the final one selected suppresses
		// its M2 (more operations will write to the same file); per-op
		// files always end their own program.
		moreToFollow := combined && i != lastIdx

		var summary ops.Summary
		switch name {
		case "copper":
			bit := BitFor(d.Bits, d.Job.CopperBit, &res.Warnings)
			summary = ops.Copper(gw, board.Copper, bit, d.Job.CopperPasses, moreToFollow)
		case "mask":
			bit := BitFor(d.Bits, d.Job.MaskBit, &res.Warnings)
			summary = ops.Mask(gw, board.Pads, bit, moreToFollow)
		case "drill":
			summary, err = d.runDrill(gw, board, moreToFollow, &res.Warnings)
			if err != nil {
				if perOpFile != nil {
					perOpFile.Close()
				}
				return res, err
			}
		case "outline":
			bit := BitFor(d.Bits, d.Job.OutlineBit, &res.Warnings)
			summary = ops.Outline(gw, board.Outline, board.Slots, board.Holes, bit, moreToFollow)
		case "silk":
			bit := BitFor(d.Bits, d.Job.SilkBit, &res.Warnings)
			summary = ops.Silk(gw, board.SilkDraw, bit, moreToFollow)
		}

		res.Summaries = append(res.Summaries, summary)
		if perOpFile != nil {
			if cerr := perOpFile.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}

		// A skipped final op writes nothing, and every earlier op
		// suppressed its M2 — close the combined program out here so the
		// file still ends in M2.
		if combined && i == lastIdx && summary.Skipped {
			gcodegen.New(combinedFile, d.Job).EndSequence(true)
		}
	}

	return res, err
}

// runDrill dispatches on job.DrillMode: `multi` runs the full
// drillplan-based assignment, `single` pecks every small hole with one
// fixed bit, and `single_plus_mill` pecks only the holes matching
// single_drill_diam (the rest become extra milled holes in Outline,
// handled there via the same DrillMode field).
func (d *Driver) runDrill(gw *gcodegen.Writer, board *Board, combinedFlag bool, warnings *[]string) (ops.Summary, error) {
	switch d.Job.DrillMode {
	case config.DrillModeSingle:
		bit := BitFor(d.Bits, d.Job.SingleDrillBit, warnings)
		var small []excellon.Hole
		for _, h := range board.Holes {
			if h.Diameter < d.Job.MillHolesOver {
				small = append(small, h)
			}
		}
		return ops.DrillSingle(gw, small, bit, combinedFlag), nil

	case config.DrillModeSinglePlusMill:
		bit := BitFor(d.Bits, d.Job.SingleDrillBit, warnings)
		var matching []excellon.Hole
		for _, h := range board.Holes {
			if h.Diameter < d.Job.MillHolesOver && math.Abs(h.Diameter-d.Job.SingleDrillDiam) <= d.Job.HoleMatchTol {
				matching = append(matching, h)
			}
		}
		return ops.DrillSingle(gw, matching, bit, combinedFlag), nil

	default:
		return ops.Drill(gw, board.Holes, d.Bits.DrillBits(), d.Job.HoleMatchTol, d.Job.MaxDrillBits, combinedFlag)
	}
}
