// Package config provides typed access to job tunables and bit library
// entries. The tunable surface here is large (thickness, tolerances, drill
// mode, feeds/speeds, per-operation bit selection), so it is collected into
// a single Job value loaded once from TOML and threaded explicitly through
// the pipeline, rather than read ad hoc from a process-global config
// object.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// DrillMode selects how small (non-milled) holes are drilled.
type DrillMode string

const (
	DrillModeMulti          DrillMode = "multi"
	DrillModeSingle         DrillMode = "single"
	DrillModeSinglePlusMill DrillMode = "single_plus_mill"
)

// Job is the job-level tunable config, typed and defaulted.
type Job struct {
	PCBThickness     float64   `toml:"pcb_thickness"`
	CopperThickness  float64   `toml:"copper_thickness"`
	MillHolesOver    float64   `toml:"mill_holes_over"`
	HoleMatchTol     float64   `toml:"hole_match_tol"`
	HoleDedupeTol    float64   `toml:"hole_dedupe_tol"`
	DrillMode        DrillMode `toml:"drill_mode"`
	SingleDrillDiam  float64   `toml:"single_drill_diam"`
	MaxDrillBits     int       `toml:"max_drill_bits"`
	OutlineTabs      bool      `toml:"outline_tabs_enabled"`
	SafeZ            float64   `toml:"safe_z"`
	TravelZ          float64   `toml:"travel_z"`
	ToolchangeZ      float64   `toml:"toolchange_z"`
	ParkX            float64   `toml:"park_x"`
	ParkY            float64   `toml:"park_y"`
	SpindleWarmupS   float64   `toml:"spindle_warmup_s"`
	ProbeOnStart     bool      `toml:"probe_on_start"`
	ProbeGcode       string    `toml:"probe_gcode"`
	RampLen          float64   `toml:"ramp_len"`
	GeomSimplifyTol  float64   `toml:"geom_simplify_tol"`
	GeomMinArea      float64  `toml:"geom_min_area"`
	GeomMinLength    float64   `toml:"geom_min_length"`
	PathOrdering     bool      `toml:"path_ordering"`
	FilePrefix       string    `toml:"file_prefix"`
	SoldermaskDepth  float64   `toml:"soldermask_depth"`
	SilkscreenDepth  float64   `toml:"silkscreen_depth"`
	MaxOutside       float64   `toml:"mask_max_outside"`
	ExportDXF        bool      `toml:"export_dxf"`

	// GeomScale is the geometry kernel's working resolution in raster
	// pixels per millimeter (internal/raster.Mask.Scale). Raising it
	// shrinks the pixel size that geom_simplify_tol/geom_min_area are
	// measured against; it cannot be raised to literally match those
	// tolerances (0.0005mm would need ~2000px/mm, intractable for a
	// board-sized bitmap), so Boundary's sub-pixel refinement is what
	// actually recovers sub-pixel accuracy at a tractable scale.
	GeomScale float64 `toml:"geom_scale"`

	// Bit names select an entry from the bit library, one job.toml key
	// per operation; SingleDrillBit serves the single drill modes.
	CopperBit  string `toml:"copper_bit"`
	MaskBit    string `toml:"mask_bit"`
	OutlineBit string `toml:"outline_bit"`
	SilkBit    string `toml:"silk_bit"`
	SingleDrillBit string `toml:"single_drill_bit"`
	CopperPasses   int    `toml:"copper_passes"`
}

// Default returns the job config with every built-in default value.
func Default() Job {
	return Job{
		PCBThickness:    1.6,
		CopperThickness: 0.035,
		MillHolesOver:   1.2,
		HoleMatchTol:    0.05,
		HoleDedupeTol:   0.10,
		DrillMode:       DrillModeMulti,
		SingleDrillDiam: 0.8,
		MaxDrillBits:    8,
		OutlineTabs:     false,
		SafeZ:           5.0,
		TravelZ:         10.0,
		ToolchangeZ:     30.0,
		ParkX:           0,
		ParkY:           0,
		SpindleWarmupS:  0,
		ProbeOnStart:    false,
		ProbeGcode:      "",
		RampLen:         0,
		GeomSimplifyTol: 0.0005,
		GeomMinArea:     1e-8,
		GeomMinLength:   1e-5,
		PathOrdering:    true,
		FilePrefix:      "",
		SoldermaskDepth: 0.01,
		SilkscreenDepth: 0.05,
		MaxOutside:      0.10,
		ExportDXF:       false,
		GeomScale:       40.0,
		CopperBit:       "v30",
		MaskBit:         "flat_0.8",
		OutlineBit:      "flat_1.0",
		SilkBit:         "v30",
		SingleDrillBit:  "drill_0.8",
		CopperPasses:    1,
	}
}

// Load reads a TOML job file over top of Default(), so a partial file only
// overrides the keys it sets. A missing path returns the defaults
// unmodified.
func Load(path string) (Job, error) {
	j := Default()
	if path == "" {
		return j, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return j, nil
	}
	if _, err := toml.DecodeFile(path, &j); err != nil {
		return Job{}, err
	}
	return j, nil
}

// OutputName prepends the normalized file_prefix: alnum/'-'/'_' only,
// forced to end in '_' or '-' when non-empty.
func (j Job) OutputName(name string) string {
	return normalizePrefix(j.FilePrefix) + name
}

func normalizePrefix(p string) string {
	var b []byte
	for i := 0; i < len(p); i++ {
		c := p[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			b = append(b, c)
		}
	}
	if len(b) == 0 {
		return ""
	}
	if b[len(b)-1] != '_' && b[len(b)-1] != '-' {
		b = append(b, '_')
	}
	return string(b)
}
