package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-to-gcode/internal/config"
)

func testLibrary() config.Library {
	return config.Library{Bits: map[string]config.Bit{
		"v30":       {Name: "v30", Type: "v", Diameter: 0.2, Angle: 30, FeedXY: 300, FeedZ: 80},
		"flat_0.8":  {Name: "flat_0.8", Type: "flat", Diameter: 0.8, FeedXY: 400, FeedZ: 100},
		"flat_1.0":  {Name: "flat_1.0", Type: "flat", Diameter: 1.0, FeedXY: 400, FeedZ: 100},
		"drill_0.8": {Name: "drill_0.8", Type: "drill", Diameter: 0.8, FeedXY: 300, FeedZ: 100},
	}}
}

func TestDriverRunCombinedProducesSingleFile(t *testing.T) {
	dir, prefix := writeBoardFixture(t)
	j := config.Default()

	d := &Driver{Dir: dir, Prefix: prefix, Job: j, Bits: testLibrary()}
	res, err := d.Run(nil, true)
	require.NoError(t, err)
	require.Len(t, res.Summaries, 5)

	data, err := os.ReadFile(filepath.Join(dir, "all.nc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "M2")
}

func TestDriverRunPerOperationFiles(t *testing.T) {
	dir, prefix := writeBoardFixture(t)
	j := config.Default()

	d := &Driver{Dir: dir, Prefix: prefix, Job: j, Bits: testLibrary()}
	res, err := d.Run(nil, false)
	require.NoError(t, err)
	require.Len(t, res.Summaries, 5)

	for _, name := range []string{"top_copper_isolation.nc", "soldermask_clear.nc", "drill.nc", "board_outline.nc", "silkscreen.nc"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestDriverRunSelectionSubset(t *testing.T) {
	dir, prefix := writeBoardFixture(t)
	j := config.Default()

	d := &Driver{Dir: dir, Prefix: prefix, Job: j, Bits: testLibrary()}
	res, err := d.Run(Selection{"copper": true}, false)
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)

	_, err = os.Stat(filepath.Join(dir, "drill.nc"))
	assert.True(t, os.IsNotExist(err))
}

func TestDriverRunSingleDrillMode(t *testing.T) {
	dir, prefix := writeBoardFixture(t)
	j := config.Default()
	j.DrillMode = config.DrillModeSingle

	d := &Driver{Dir: dir, Prefix: prefix, Job: j, Bits: testLibrary()}
	res, err := d.Run(Selection{"drill": true}, false)
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)
	assert.False(t, res.Summaries[0].Skipped)
}

func TestDriverRunMissingCopperAborts(t *testing.T) {
	dir := t.TempDir()
	j := config.Default()

	d := &Driver{Dir: dir, Prefix: "nope", Job: j, Bits: testLibrary()}
	_, err := d.Run(nil, true)
	require.Error(t, err)
}
