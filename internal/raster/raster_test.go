package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"router-cam/internal/surface"
	"router-cam/internal/toolpath"
)

func flatMap(w, h float64, cell float64, z float64) *surface.HeightMap {
	hm := surface.NewHeightMap(surface.ZMapConfig{Width: w, Height: h, CellSize: cell})
	for i := range hm.Samples {
		hm.Samples[i] = z
	}
	return hm
}

func TestZigzagAlternatesDirection(t *testing.T) {
	hm := flatMap(4, 4, 1, -1)

	tp, err := Generate(hm, Options{Stepover: 1, SafeZ: 5}, nil)
	require.NoError(t, err)
	require.Len(t, tp.Segments, 4)

	cut := tp.Segments[2]
	require.Equal(t, toolpath.MoveCut, cut.Kind)

	// flat rows collapse to their endpoints: two points per row
	require.Len(t, cut.Points, 8)
	// row 0 runs +X, row 1 runs -X
	assert.Equal(t, 0.5, cut.Points[0].X)
	assert.Equal(t, 3.5, cut.Points[1].X)
	assert.Equal(t, 3.5, cut.Points[2].X)
	assert.Equal(t, 0.5, cut.Points[3].X)
	assert.Equal(t, 1.5, cut.Points[2].Y)
}

func TestCollinearRowCollapses(t *testing.T) {
	hm := flatMap(10, 1, 1, -2)

	tp, err := Generate(hm, Options{Stepover: 1, SafeZ: 5}, nil)
	require.NoError(t, err)

	cut := tp.Segments[2]
	require.Len(t, cut.Points, 2)
	assert.Equal(t, -2.0, cut.Points[0].Z)
	assert.Equal(t, -2.0, cut.Points[1].Z)
}

func TestStepoverSkipsRows(t *testing.T) {
	hm := flatMap(2, 10, 1, 0)

	tp, err := Generate(hm, Options{Stepover: 2, SafeZ: 5}, nil)
	require.NoError(t, err)

	cut := tp.Segments[2]
	ys := map[float64]bool{}
	for _, p := range cut.Points {
		ys[p.Y] = true
	}
	// rows 0, 2, 4, 6, 8 only
	assert.Len(t, ys, 5)
	assert.True(t, ys[0.5])
	assert.True(t, ys[2.5])
	assert.False(t, ys[1.5])
}

func TestPlungeAndRetractBracketTheCut(t *testing.T) {
	hm := flatMap(3, 3, 1, -1.5)

	tp, err := Generate(hm, Options{Stepover: 1, SafeZ: 4}, nil)
	require.NoError(t, err)
	require.Len(t, tp.Segments, 4)

	assert.Equal(t, toolpath.MoveRapid, tp.Segments[0].Kind)
	assert.Equal(t, 4.0, tp.Segments[0].Points[0].Z)

	plunge := tp.Segments[1]
	assert.Equal(t, toolpath.MovePlunge, plunge.Kind)
	assert.Equal(t, 4.0, plunge.Points[0].Z)
	assert.Equal(t, -1.5, plunge.Points[1].Z)

	retract := tp.Segments[3]
	assert.Equal(t, toolpath.MoveRetract, retract.Kind)
	assert.Equal(t, 4.0, retract.Points[len(retract.Points)-1].Z)
}

func TestVaryingHeightsKeepPoints(t *testing.T) {
	hm := surface.NewHeightMap(surface.ZMapConfig{Width: 3, Height: 1, CellSize: 1})
	hm.Set(0, 0, 0)
	hm.Set(1, 0, -1)
	hm.Set(2, 0, 0)

	tp, err := Generate(hm, Options{Stepover: 1, SafeZ: 5}, nil)
	require.NoError(t, err)

	cut := tp.Segments[2]
	require.Len(t, cut.Points, 3)
	assert.Equal(t, -1.0, cut.Points[1].Z)
}

func TestEmptyMapRejected(t *testing.T) {
	_, err := Generate(surface.NewHeightMap(surface.ZMapConfig{}), Options{}, nil)
	assert.Error(t, err)
}

func TestGenerateProgress(t *testing.T) {
	hm := flatMap(2, 30, 1, 0)

	var calls []float64
	_, err := Generate(hm, Options{Stepover: 1, SafeZ: 5}, func(f float64) {
		calls = append(calls, f)
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, 1.0, calls[len(calls)-1])
}
