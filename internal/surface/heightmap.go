// Package surface samples triangle meshes into a height field by
// simulating a tool dropped vertically onto the surface (drop cutter),
// accelerated by a uniform bucket grid over the triangles.
package surface

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ZMapConfig describes the sampling grid: its XY extent and cell size,
// all in millimeters.
type ZMapConfig struct {
	MinX, MinY    float64
	Width, Height float64
	CellSize      float64
}

// Cols returns the number of sample columns.
func (c ZMapConfig) Cols() int {
	return gridDim(c.Width, c.CellSize)
}

// Rows returns the number of sample rows.
func (c ZMapConfig) Rows() int {
	return gridDim(c.Height, c.CellSize)
}

func gridDim(extent, cell float64) int {
	if extent <= 0 || cell <= 0 {
		return 0
	}
	n := int(extent / cell)
	if float64(n)*cell < extent {
		n++
	}
	return n
}

// CellCenter returns the XY position sampled for a cell.
func (c ZMapConfig) CellCenter(col, row int) (float64, float64) {
	return c.MinX + (float64(col)+0.5)*c.CellSize,
		c.MinY + (float64(row)+0.5)*c.CellSize
}

// Validate rejects configurations that produce an empty grid.
func (c ZMapConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid extent %gx%g must be positive", c.Width, c.Height)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell size %g must be positive", c.CellSize)
	}
	return nil
}

// HeightMap is a dense row-major grid of maximum-safe-Z samples.
// Cells the tool never contacts hold 0, indistinguishable from a
// genuine zero-height sample.
type HeightMap struct {
	Config  ZMapConfig
	Samples []float64
}

// NewHeightMap allocates a zeroed height map for the configuration.
func NewHeightMap(cfg ZMapConfig) *HeightMap {
	return &HeightMap{
		Config:  cfg,
		Samples: make([]float64, cfg.Cols()*cfg.Rows()),
	}
}

// At returns the sample at (col, row).
func (h *HeightMap) At(col, row int) float64 {
	return h.Samples[row*h.Config.Cols()+col]
}

// Set stores the sample at (col, row).
func (h *HeightMap) Set(col, row int, z float64) {
	h.Samples[row*h.Config.Cols()+col] = z
}

// Invert negates every sample in place, turning the tallest features
// into the deepest cuts (engrave mode). No-contact cells stay at 0.
func (h *HeightMap) Invert() {
	floats.Scale(-1, h.Samples)
}

// MinMax returns the lowest and highest sample.
func (h *HeightMap) MinMax() (float64, float64) {
	if len(h.Samples) == 0 {
		return 0, 0
	}
	return floats.Min(h.Samples), floats.Max(h.Samples)
}
