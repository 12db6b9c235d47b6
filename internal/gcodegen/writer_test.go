package gcodegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcb-to-gcode/internal/config"
	"pcb-to-gcode/internal/geom"
)

func TestWriteHeaderEmitsUnitsAndTravelRapid(t *testing.T) {
	var buf bytes.Buffer
	job := config.Default()
	gw := New(&buf, job)
	gw.WriteHeader("board")

	out := buf.String()
	assert.Contains(t, out, "G21")
	assert.Contains(t, out, "G92.1")
	assert.Contains(t, out, "Z10.0000")
}

func TestToolchangeSequenceIncludesRPMAndWarmup(t *testing.T) {
	var buf bytes.Buffer
	job := config.Default()
	job.SpindleWarmupS = 2
	gw := New(&buf, job)
	bit := config.Bit{RPM: 15000}
	gw.ToolchangeSequence(bit, "copper isolation")

	out := buf.String()
	assert.Contains(t, out, "S15000 M3")
	assert.Contains(t, out, "P2.000")
	assert.Contains(t, out, "; copper isolation")
}

func TestStepdownClampsFinalStep(t *testing.T) {
	depths := Stepdown(1.0, 0.4)
	require.Len(t, depths, 3)
	assert.InDelta(t, 0.4, depths[0], 1e-9)
	assert.InDelta(t, 0.8, depths[1], 1e-9)
	assert.InDelta(t, 1.0, depths[2], 1e-9)
}

func TestWritePolylineWithoutRampPlungesThenCuts(t *testing.T) {
	var buf bytes.Buffer
	job := config.Default()
	gw := New(&buf, job)
	p := geom.Polyline{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	bit := config.Bit{FeedXY: 300, FeedZ: 100}
	gw.WritePolyline(p, 0.2, bit, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.True(t, len(lines) >= 4)
	assert.Contains(t, lines[2], "Z-0.2000")
	assert.Contains(t, lines[2], "F100")
}

func TestWriteOutlineCutsShallowerInsideTabRanges(t *testing.T) {
	var buf bytes.Buffer
	job := config.Default()
	gw := New(&buf, job)
	outline := geom.Polyline{{X: 0, Y: 0}, {X: 25, Y: 0}, {X: 25, Y: 25}, {X: 0, Y: 25}, {X: 0, Y: 0}}
	bit := config.Bit{FeedXY: 300, FeedZ: 100}

	// 100mm perimeter, a 1mm tab window centered at arc length 20.
	gw.WriteOutline(outline, 1.6, 1.2, [][2]float64{{19.5, 20.5}}, bit, 0)

	out := buf.String()
	assert.Contains(t, out, "Z-1.6000")
	assert.Contains(t, out, "Z-1.2000")
}

func TestWritePolylineWithRampDescendsAlongPath(t *testing.T) {
	var buf bytes.Buffer
	job := config.Default()
	gw := New(&buf, job)
	p := geom.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}}
	bit := config.Bit{FeedXY: 300, FeedZ: 100}
	gw.WritePolyline(p, 0.2, bit, 2.0)

	out := buf.String()
	assert.Contains(t, out, "X2.0000")
	assert.Contains(t, out, "Z-0.2000")
}
