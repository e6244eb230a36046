package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"router-cam/internal/discretize"
	"router-cam/internal/machine"
	"router-cam/pkg/geometry"
)

func lineJob() *machine.Job {
	return &machine.Job{
		Tool:    machine.DefaultTool(),
		Machine: machine.DefaultMachine(),
		Stock:   machine.DefaultStock(),
		Depth:   1,
		Side:    "none",
		Paths: []geometry.Polyline{
			geometry.NewPolyline(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 10, Y: 0}),
		},
	}
}

func TestRunVectorEndToEnd(t *testing.T) {
	var fracs []float64
	res, err := RunVector(lineJob(), VectorOptions{
		Comment:  "line",
		Progress: func(f float64) { fracs = append(fracs, f) },
	})
	require.NoError(t, err)

	assert.Contains(t, res.GCode, "; line")
	// ramped plunge at the plunge rate, down to depth
	assert.Contains(t, res.GCode, "F300")
	assert.Contains(t, res.GCode, "Z-1.000")
	assert.Contains(t, res.GCode, "X10.000")
	assert.Contains(t, res.GCode, "F800")
	assert.Contains(t, res.GCode, "M2")

	// the ramp hands the cut back at the entry point, so the cut
	// covers the full 10mm line
	assert.InDelta(t, 10, res.Stats.CuttingDistance, 1e-9)
	assert.NotEmpty(t, res.Preview)
	assert.Zero(t, res.GridCols)

	require.NotEmpty(t, fracs)
	assert.Equal(t, 1.0, fracs[len(fracs)-1])
	for i := 1; i < len(fracs); i++ {
		assert.GreaterOrEqual(t, fracs[i], fracs[i-1])
	}
}

func TestRunVectorCompensation(t *testing.T) {
	job := lineJob()
	job.Side = "left"

	res, err := RunVector(job, VectorOptions{})
	require.NoError(t, err)
	// left of the +X direction is +Y: the 1.5mm tool radius shifts the cut up
	assert.Contains(t, res.GCode, "Y1.500")
}

func TestRunVectorRejectsEmptyJob(t *testing.T) {
	job := lineJob()
	job.Paths = nil
	_, err := RunVector(job, VectorOptions{})
	assert.Error(t, err)

	job = lineJob()
	job.Side = "diagonal"
	_, err = RunVector(job, VectorOptions{})
	assert.Error(t, err)
}

func TestFlattenCurves(t *testing.T) {
	paths := []discretize.Path{{
		Start: geometry.Point2D{X: 0, Y: 0},
		Commands: []discretize.Command{
			{Op: discretize.OpLine, P3: geometry.Point2D{X: 5, Y: 0}},
		},
	}}

	polys, err := FlattenCurves(paths, discretize.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Equal(t, geometry.Point2D{X: 5, Y: 0}, polys[0].End())
}

func TestRunMeshEndToEnd(t *testing.T) {
	tris := []geometry.Triangle{{
		A: geometry.Point3D{X: 0, Y: 0, Z: 2},
		B: geometry.Point3D{X: 20, Y: 0, Z: 2},
		C: geometry.Point3D{X: 0, Y: 20, Z: 2},
	}}

	var fracs []float64
	res, err := RunMesh(tris, machine.DefaultTool(), machine.DefaultMachine(), MeshOptions{
		CellSize: 1,
		Progress: func(f float64) { fracs = append(fracs, f) },
	})
	require.NoError(t, err)

	assert.Equal(t, 20, res.GridCols)
	assert.Equal(t, 20, res.GridRows)
	assert.Contains(t, res.GCode, "M3 S12000")
	assert.Contains(t, res.GCode, "M2")
	assert.NotEmpty(t, res.Preview)

	require.NotEmpty(t, fracs)
	assert.Equal(t, 1.0, fracs[len(fracs)-1])
	for i := 1; i < len(fracs); i++ {
		assert.GreaterOrEqual(t, fracs[i], fracs[i-1])
	}
}

func TestRunMeshEngraveFlipsHeights(t *testing.T) {
	tris := []geometry.Triangle{{
		A: geometry.Point3D{X: 0, Y: 0, Z: 2},
		B: geometry.Point3D{X: 10, Y: 0, Z: 2},
		C: geometry.Point3D{X: 0, Y: 10, Z: 2},
	}}

	res, err := RunMesh(tris, machine.DefaultTool(), machine.DefaultMachine(), MeshOptions{
		CellSize: 1,
		Engrave:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, res.GCode, "Z-2.000")
}

func TestRunMeshRejectsEmptyMesh(t *testing.T) {
	_, err := RunMesh(nil, machine.DefaultTool(), machine.DefaultMachine(), MeshOptions{})
	assert.Error(t, err)
}
