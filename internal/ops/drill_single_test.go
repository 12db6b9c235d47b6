package ops

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/excellon"
	"pcb-to-gcode/internal/gcodegen"
)

func TestDrillSingleDrillsEveryHoleWithOneBit(t *testing.T) {
	var buf bytes.Buffer
	gw := gcodegen.New(&buf, config.Default())

	holes := []excellon.Hole{
		{X: 0, Y: 0, Diameter: 0.6},
		{X: 1, Y: 0, Diameter: 0.9},
	}
	bit := config.Bit{Name: "single", Diameter: 0.8, FeedXY: 300, FeedZ: 100}

	summary := DrillSingle(gw, holes, bit, true)
	require.False(t, summary.Skipped)
	assert.Contains(t, summary.Line, "2 holes drilled")

	out := buf.String()
	assert.Contains(t, out, "single")
}

func TestDrillSingleSkipsWhenNoHoles(t *testing.T) {
	var buf bytes.Buffer
	gw := gcodegen.New(&buf, config.Default())
	summary := DrillSingle(gw, nil, config.Bit{Diameter: 0.8}, true)
	assert.True(t, summary.Skipped)
	assert.Empty(t, buf.String())
}
