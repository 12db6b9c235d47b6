package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitKindClassification(t *testing.T) {
	cases := []struct {
		typ  string
		want BitType
	}{
		{"drill", BitDrill},
		{"Drill Bit", BitDrill},
		{"v", BitVBit},
		{"V-bit", BitVBit},
		{"engraving", BitVBit},
		{"conic", BitVBit},
		{"flat", BitMill},
		{"end mill", BitMill},
		{"router", BitMill},
		{"mystery", BitUnknown},
	}
	for _, c := range cases {
		b := Bit{Type: c.typ}
		require.Equal(t, c.want, b.Kind(), "type %q", c.typ)
	}
}

func TestLoadBitsMissingPathReturnsEmptyLibrary(t *testing.T) {
	lib, err := LoadBits(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Empty(t, lib.Bits)
}

func TestLoadBitsAppliesFeedDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bits.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[bit.v30]
type = "v"
diameter = 0.1
angle = 30

[bit."drill_0.8"]
type = "drill"
diameter = 0.8
feed_xy = 300
`), 0o644))

	lib, err := LoadBits(path)
	require.NoError(t, err)

	v30, ok := lib.Get("v30")
	require.True(t, ok)
	require.Equal(t, "v30", v30.Name)
	require.Equal(t, 200.0, v30.FeedXY)
	require.Equal(t, 80.0, v30.FeedZ)
	require.Equal(t, 12000, v30.RPM)

	drill, ok := lib.Get("drill_0.8")
	require.True(t, ok)
	require.Equal(t, 300.0, drill.FeedXY)
}

func TestLibraryDrillBitsSortedAscending(t *testing.T) {
	lib := Library{Bits: map[string]Bit{
		"a": {Type: "drill", Diameter: 1.0},
		"b": {Type: "drill", Diameter: 0.5},
		"c": {Type: "mill", Diameter: 2.0},
		"d": {Type: "drill", Diameter: 0.8},
	}}
	bits := lib.DrillBits()
	require.Len(t, bits, 3)
	require.Equal(t, 0.5, bits[0].Diameter)
	require.Equal(t, 0.8, bits[1].Diameter)
	require.Equal(t, 1.0, bits[2].Diameter)
}
