package dxfexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/geom"
)

func TestWriteProducesNonEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.dxf")

	outline := []geom.Polyline{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 0}}}
	holes := []excellon.Hole{{X: 5, Y: 5, Diameter: 0.8}}

	err := Write(path, outline, nil, holes, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
