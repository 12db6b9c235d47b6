package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTunables(t *testing.T) {
	j := Default()
	require.Equal(t, 1.6, j.PCBThickness)
	require.Equal(t, 0.035, j.CopperThickness)
	require.Equal(t, 1.2, j.MillHolesOver)
	require.Equal(t, 0.05, j.HoleMatchTol)
	require.Equal(t, 0.10, j.HoleDedupeTol)
	require.Equal(t, DrillModeMulti, j.DrillMode)
	require.False(t, j.OutlineTabs)
	require.Equal(t, 5.0, j.SafeZ)
	require.Equal(t, 10.0, j.TravelZ)
	require.Equal(t, 30.0, j.ToolchangeZ)
	require.True(t, j.PathOrdering)
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	j, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), j)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	j, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), j)
}

func TestLoadOverridesOnlySetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
pcb_thickness = 2.0
drill_mode = "single"
outline_tabs_enabled = true
`), 0o644))

	j, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2.0, j.PCBThickness)
	require.Equal(t, DrillModeSingle, j.DrillMode)
	require.True(t, j.OutlineTabs)
	// Untouched keys keep their defaults.
	require.Equal(t, 0.035, j.CopperThickness)
	require.Equal(t, 8, j.MaxDrillBits)
}

func TestOutputNameNormalizesPrefix(t *testing.T) {
	require.Equal(t, "all.nc", Default().OutputName("all.nc"))

	j := Default()
	j.FilePrefix = "my board!!"
	require.Equal(t, "myboard_all.nc", j.OutputName("all.nc"))

	j.FilePrefix = "job-1_"
	require.Equal(t, "job-1_all.nc", j.OutputName("all.nc"))
}
