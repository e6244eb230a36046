package gcode

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"router-cam/internal/machine"
	"router-cam/internal/toolpath"
	"router-cam/pkg/geometry"
)

func lineToolpath() *toolpath.Path {
	tp := &toolpath.Path{}
	tp.Append(toolpath.Segment{Kind: toolpath.MoveRapid, Points: []geometry.Point3D{
		{X: 0, Y: 0, Z: 5},
	}})
	tp.Append(toolpath.Segment{Kind: toolpath.MovePlunge, Points: []geometry.Point3D{
		{X: 0, Y: 0, Z: 5},
		{X: 0, Y: 0, Z: -1},
	}})
	tp.Append(toolpath.Segment{Kind: toolpath.MoveCut, Points: []geometry.Point3D{
		{X: 0, Y: 0, Z: -1},
		{X: 10, Y: 0, Z: -1},
	}})
	tp.Append(toolpath.Segment{Kind: toolpath.MoveRetract, Points: []geometry.Point3D{
		{X: 10, Y: 0, Z: -1},
		{X: 10, Y: 0, Z: 5},
	}})
	return tp
}

func testTool() machine.ToolConfig {
	return machine.ToolConfig{
		Kind: machine.ToolFlat, Diameter: 3,
		SpindleSpeed: 12000, FeedRate: 800, PlungeRate: 300,
	}
}

func TestProgramFraming(t *testing.T) {
	out := Generate(lineToolpath(), testTool(), machine.MachineConfig{SafeZ: 5},
		Options{Comment: "line job"})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 8)

	assert.Equal(t, "; line job", lines[0])
	assert.Equal(t, "G90", lines[1])
	assert.Equal(t, "G21", lines[2])
	assert.Equal(t, "M3 S12000", lines[3])
	assert.Equal(t, "G0 Z5.000", lines[4])

	n := len(lines)
	assert.Equal(t, "M2", lines[n-1])
	assert.Equal(t, "M5", lines[n-2])
	assert.Equal(t, "G0 X0.000 Y0.000", lines[n-3])
	// the retract segment already parked Z at the safe height
	assert.Equal(t, "G0 Z5.000", lines[n-4])
}

func TestCutLineBody(t *testing.T) {
	out := Generate(lineToolpath(), testTool(), machine.MachineConfig{SafeZ: 5}, Options{})

	assert.Contains(t, out, "G1 Z-1.000 F300\n")
	assert.Contains(t, out, "G1 X10.000 F800\n")
	assert.Contains(t, out, "G0 Z5.000\n")
}

func TestNoConsecutiveIdenticalMotion(t *testing.T) {
	out := Generate(lineToolpath(), testTool(), machine.MachineConfig{SafeZ: 5}, Options{})

	type pos struct{ x, y, z float64 }
	cur := pos{math.NaN(), math.NaN(), math.NaN()}
	var prev *pos
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, "G0") && !strings.HasPrefix(line, "G1") {
			continue
		}
		moved := false
		for _, w := range strings.Fields(line)[1:] {
			v, err := strconv.ParseFloat(w[1:], 64)
			require.NoError(t, err, line)
			switch w[0] {
			case 'X':
				cur.x, moved = v, true
			case 'Y':
				cur.y, moved = v, true
			case 'Z':
				cur.z, moved = v, true
			}
		}
		if prev != nil {
			assert.True(t, moved, "motion line without axis words: %s", line)
			assert.NotEqual(t, *prev, cur, "repeated position: %s", line)
		}
		p := cur
		prev = &p
	}
}

func TestOriginOffsetApplied(t *testing.T) {
	tp := &toolpath.Path{}
	tp.Append(toolpath.Segment{Kind: toolpath.MoveRapid, Points: []geometry.Point3D{
		{X: 100, Y: 100, Z: 5},
	}})

	// center anchor on 200x200 stock
	out := Generate(tp, testTool(), machine.MachineConfig{SafeZ: 5, OriginX: -100, OriginY: -100}, Options{})
	assert.Contains(t, out, "G0 X0.000 Y0.000 Z5.000\n")
}

func TestArcCompression(t *testing.T) {
	pts := []geometry.Point3D{{X: 10, Y: 0, Z: -1}}
	for i := 1; i <= 16; i++ {
		a := math.Pi / 2 * float64(i) / 16
		pts = append(pts, geometry.Point3D{X: 10 * math.Cos(a), Y: 10 * math.Sin(a), Z: -1})
	}

	tp := &toolpath.Path{}
	tp.Append(toolpath.Segment{Kind: toolpath.MoveCut, Points: pts})

	out := Generate(tp, testTool(), machine.MachineConfig{SafeZ: 5}, Options{FitArcs: true})
	assert.Contains(t, out, "G3 X0.000 Y10.000 I-10.000 J0.000")

	// without fitting every sample is a G1
	plain := Generate(tp, testTool(), machine.MachineConfig{SafeZ: 5}, Options{})
	assert.NotContains(t, plain, "G3")
	assert.Greater(t, strings.Count(plain, "G1"), 10)
}

func TestFeedEmittedOncePerRate(t *testing.T) {
	out := Generate(lineToolpath(), testTool(), machine.MachineConfig{SafeZ: 5}, Options{})
	assert.Equal(t, 1, strings.Count(out, "F300"))
	assert.Equal(t, 1, strings.Count(out, "F800"))
}
