// Command pcb2gcode turns a KiCad/Gerber+Excellon export into GRBL-ready
// G-code: copper isolation, soldermask clearing, drilling, board outline
// milling, and silkscreen engraving. A cobra command tree exposes one
// subcommand per operation plus an `all` that runs the full pipeline.
package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/dxfexport"
	"pcb-to-gcode/internal/geom"
	"pcb-to-gcode/internal/job"
)

var (
	flagDir      string
	flagPrefix   string
	flagJobPath  string
	flagBitsPath string
	flagCombined bool
	flagStrict   bool
)

func main() {
	root := &cobra.Command{
		Use:   "pcb2gcode",
		Short: "Generate GRBL G-code from Gerber/Excellon board exports",
	}
	root.PersistentFlags().StringVar(&flagDir, "dir", ".", "directory containing the board's exported files")
	root.PersistentFlags().StringVar(&flagPrefix, "prefix", "", "input file prefix, e.g. \"my_board\" for my_board-TopLayer.gbr")
	root.PersistentFlags().StringVar(&flagJobPath, "job", "job.toml", "path to the job config file")
	root.PersistentFlags().StringVar(&flagBitsPath, "bits", "bits.toml", "path to the bit library file")
	root.PersistentFlags().BoolVar(&flagCombined, "combined", false, "write one all.nc instead of one file per operation")
	root.PersistentFlags().BoolVar(&flagStrict, "strict", false, "abort on the first malformed Gerber/Excellon line instead of skipping it")
	root.MarkPersistentFlagRequired("prefix")

	for _, name := range []string{"copper", "mask", "drill", "outline", "silk"} {
		name := name
		root.AddCommand(&cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Run only the %s operation", name),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPipeline(job.Selection{name: true})
			},
		})
	}
	root.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run the full pipeline: copper, mask, drill, outline, silk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(nil)
		},
	})

	if err := root.Execute(); err != nil {
		log.Fatalf("pcb2gcode: %v", err)
	}
}

func runPipeline(sel job.Selection) error {
	jobCfg, err := config.Load(flagJobPath)
	if err != nil {
		return fmt.Errorf("loading job config: %w", err)
	}
	bits, err := config.LoadBits(flagBitsPath)
	if err != nil {
		return fmt.Errorf("loading bit library: %w", err)
	}

	runID := uuid.New().String()
	d := &job.Driver{
		Dir:    flagDir,
		Prefix: flagPrefix,
		Job:    jobCfg,
		Bits:   bits,
		Strict: flagStrict,
		RunID:  runID,
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" running job %s", runID)
	s.Start()
	res, err := d.Run(sel, flagCombined)
	s.Stop()

	if err != nil {
		color.Red("fatal: %v", err)
		return err
	}

	for _, w := range res.Warnings {
		color.Yellow("warning: %s", w)
	}
	for _, sum := range res.Summaries {
		if sum.Skipped {
			color.Yellow(sum.Line)
		} else {
			fmt.Println(sum.Line)
		}
	}

	if jobCfg.ExportDXF {
		board, err := job.Load(flagDir, flagPrefix, flagStrict, jobCfg.GeomScale)
		if err != nil {
			color.Red("dxf export: reloading board failed: %v", err)
			return nil
		}
		board.DedupeHoles(jobCfg.HoleDedupeTol)
		dxfPath := filepath.Join(flagDir, jobCfg.OutputName(flagPrefix+".dxf"))
		outline := boundaryPolylines(board)
		if err := dxfexport.Write(dxfPath, outline, board.Slots, board.Holes, board.SilkDraw); err != nil {
			color.Red("dxf export failed: %v", err)
		} else {
			fmt.Printf("[DXF] reference drawing written to %s\n", dxfPath)
		}
	}

	return nil
}

func boundaryPolylines(b *job.Board) []geom.Polyline {
	if b.Outline == nil {
		return nil
	}
	var out []geom.Polyline
	for _, ring := range b.Outline.Boundary() {
		out = append(out, geom.FromXY(ring))
	}
	return out
}
