package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"router-cam/internal/machine"
	"router-cam/pkg/geometry"
)

func flatTool(diameter float64) machine.ToolConfig {
	return machine.ToolConfig{Kind: machine.ToolFlat, Diameter: diameter}
}

func ballTool(diameter float64) machine.ToolConfig {
	return machine.ToolConfig{Kind: machine.ToolBall, Diameter: diameter}
}

func TestGridDimensions(t *testing.T) {
	cfg := ZMapConfig{Width: 10, Height: 5, CellSize: 1}
	assert.Equal(t, 10, cfg.Cols())
	assert.Equal(t, 5, cfg.Rows())

	// non-divisible extents round up
	cfg.CellSize = 3
	assert.Equal(t, 4, cfg.Cols())
	assert.Equal(t, 2, cfg.Rows())

	x, y := ZMapConfig{MinX: -5, MinY: -5, Width: 10, Height: 10, CellSize: 1}.CellCenter(0, 0)
	assert.Equal(t, -4.5, x)
	assert.Equal(t, -4.5, y)
}

func TestFlatTriangleSamplesToItsHeight(t *testing.T) {
	// one horizontal facet at Z=5 covering the whole grid
	tris := []geometry.Triangle{{
		A: geometry.Point3D{X: -100, Y: -100, Z: 5},
		B: geometry.Point3D{X: 200, Y: -100, Z: 5},
		C: geometry.Point3D{X: 0, Y: 200, Z: 5},
	}}

	cfg := ZMapConfig{Width: 10, Height: 10, CellSize: 1}
	hm, err := Sample(tris, cfg, flatTool(2), nil)
	require.NoError(t, err)

	for row := 0; row < cfg.Rows(); row++ {
		for col := 0; col < cfg.Cols(); col++ {
			assert.InDelta(t, 5, hm.At(col, row), 1e-9)
		}
	}
}

func TestNoContactCellsAreZero(t *testing.T) {
	// a tall facet in the far corner leaves the rest of the grid untouched
	tris := []geometry.Triangle{{
		A: geometry.Point3D{X: 9, Y: 9, Z: 3},
		B: geometry.Point3D{X: 10, Y: 9, Z: 3},
		C: geometry.Point3D{X: 9, Y: 10, Z: 3},
	}}

	cfg := ZMapConfig{Width: 10, Height: 10, CellSize: 1}
	hm, err := Sample(tris, cfg, flatTool(2), nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, hm.At(0, 0))
	assert.InDelta(t, 3, hm.At(9, 9), 1e-9)
}

func TestBallEdgeContact(t *testing.T) {
	// flat facet at Z=0 below the X axis; probing 2mm above its top edge
	// rests the ball (radius 3) on the edge rim
	tri := geometry.Triangle{
		A: geometry.Point3D{X: 0, Y: 0, Z: 0},
		B: geometry.Point3D{X: 10, Y: 0, Z: 0},
		C: geometry.Point3D{X: 5, Y: -10, Z: 0},
	}

	z, ok := triangleContact(tri, ballTool(6), 3, 5, 2)
	require.True(t, ok)
	assert.InDelta(t, -3+math.Sqrt(5), z, 1e-9)
}

func TestVTipHeight(t *testing.T) {
	tool := machine.ToolConfig{Kind: machine.ToolV, Diameter: 6, VAngle: 90}
	// 45 degree flank: 1mm out means 1mm up
	assert.InDelta(t, -1, tipHeight(tool, 3, 0, 1), 1e-9)
	assert.InDelta(t, 0, tipHeight(tool, 3, 0, 0), 1e-9)
}

func TestBallFaceOnSlope(t *testing.T) {
	// 45 degree ramp: the ball sits sqrt(2)-1 radii higher than the
	// plane under its axis
	tri := geometry.Triangle{
		A: geometry.Point3D{X: 0, Y: 0, Z: 0},
		B: geometry.Point3D{X: 10, Y: 0, Z: 10},
		C: geometry.Point3D{X: 0, Y: 10, Z: 0},
	}

	z, ok := faceContact(tri, ballTool(2), 1, 5, 2.5)
	require.True(t, ok)
	assert.InDelta(t, 5+(math.Sqrt(2)-1), z, 1e-9)
}

func TestInvertAndMinMax(t *testing.T) {
	hm := NewHeightMap(ZMapConfig{Width: 2, Height: 1, CellSize: 1})
	hm.Set(0, 0, 3)
	hm.Set(1, 0, -1)

	min, max := hm.MinMax()
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 3.0, max)

	hm.Invert()
	assert.Equal(t, -3.0, hm.At(0, 0))
	assert.Equal(t, 1.0, hm.At(1, 0))
}

func TestSampleReportsProgress(t *testing.T) {
	tris := []geometry.Triangle{{
		A: geometry.Point3D{X: 0, Y: 0, Z: 1},
		B: geometry.Point3D{X: 20, Y: 0, Z: 1},
		C: geometry.Point3D{X: 0, Y: 20, Z: 1},
	}}

	var calls []float64
	_, err := Sample(tris, ZMapConfig{Width: 20, Height: 20, CellSize: 1}, flatTool(2), func(f float64) {
		calls = append(calls, f)
	})
	require.NoError(t, err)

	require.NotEmpty(t, calls)
	assert.Equal(t, 1.0, calls[len(calls)-1])
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i], calls[i-1])
	}
}

func TestSampleRejectsBadConfig(t *testing.T) {
	_, err := Sample(nil, ZMapConfig{Width: 0, Height: 10, CellSize: 1}, flatTool(2), nil)
	assert.Error(t, err)

	_, err = Sample(nil, ZMapConfig{Width: 10, Height: 10, CellSize: 1}, flatTool(0), nil)
	assert.Error(t, err)
}

func TestRenderMapsRange(t *testing.T) {
	hm := NewHeightMap(ZMapConfig{Width: 2, Height: 2, CellSize: 1})
	hm.Set(0, 0, -5)
	hm.Set(1, 1, 5)

	img := Render(hm)
	b := img.Bounds()
	assert.Equal(t, 2, b.Dx())
	assert.Equal(t, 2, b.Dy())

	// row 0 renders at the bottom
	assert.Equal(t, uint8(0), img.GrayAt(0, 1).Y)
	assert.Equal(t, uint8(255), img.GrayAt(1, 0).Y)
}
