// Command carvetest generates a synthetic ripple surface, runs the
// mesh carving pipeline on it and reports the results. Useful for
// exercising the drop-cutter and rasterizer without a mesh file.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"router-cam/internal/machine"
	"router-cam/internal/pipeline"
	"router-cam/internal/surface"
	"router-cam/pkg/geometry"
)

func main() {
	size := flag.Float64("size", 50, "Surface side length in mm")
	amp := flag.Float64("amp", 3, "Ripple amplitude in mm")
	waves := flag.Float64("waves", 2, "Ripple periods across the surface")
	res := flag.Int("res", 40, "Mesh grid resolution per side")
	toolKind := flag.String("tool", "ball", "Tool kind: flat, ball or v")
	diameter := flag.Float64("diameter", 3, "Tool diameter in mm")
	vangle := flag.Float64("vangle", 60, "V tool included angle in degrees")
	cell := flag.Float64("cell", 0.5, "Sampling cell size in mm")
	stepover := flag.Float64("stepover", 1, "Carving row spacing in mm")
	engrave := flag.Bool("engrave", false, "Cut raised features into the stock")
	outPath := flag.String("out", "", "Write the G-code program here")
	pngPath := flag.String("png", "", "Write the sampled height map as PNG here")
	pngDim := flag.Int("pngdim", 512, "Longest PNG side in pixels")
	flag.Parse()

	kind, err := machine.ParseToolKind(*toolKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	tool := machine.DefaultTool()
	tool.Kind = kind
	tool.Diameter = *diameter
	tool.VAngle = *vangle

	tris, err := rippleMesh(*size, *amp, *waves, *res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build mesh: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d triangles over %.0fx%.0fmm\n", len(tris), *size, *size)

	result, err := pipeline.RunMesh(tris, tool, machine.DefaultMachine(), pipeline.MeshOptions{
		Comment:  fmt.Sprintf("carvetest ripple %gmm %s", *size, tool.Kind),
		FitArcs:  true,
		CellSize: *cell,
		Stepover: *stepover,
		Engrave:  *engrave,
		Progress: func(f float64) {
			fmt.Printf("\rCarving: %3.0f%%", f*100)
		},
	})
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Carving failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sampled %dx%d cells\n", result.GridCols, result.GridRows)
	fmt.Printf("Cutting %.1fmm, rapids %.1fmm, about %.0fs\n",
		result.Stats.CuttingDistance, result.Stats.RapidDistance, result.Stats.EstimatedTime)

	if *pngPath != "" {
		if err := writeHeightPNG(tris, tool, *cell, *pngPath, *pngDim); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write height map: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote height map %s\n", *pngPath)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(result.GCode), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write program: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", *outPath, len(result.GCode))
	}
}

// rippleMesh triangulates z = amp * sin * cos ripples over a square,
// two triangles per grid cell, through the flat vertex buffer the mesh
// readers produce.
func rippleMesh(size, amp, waves float64, res int) ([]geometry.Triangle, error) {
	if res < 2 {
		return nil, fmt.Errorf("resolution %d is too coarse", res)
	}

	height := func(i, j int) (float64, float64, float64) {
		x := size * float64(i) / float64(res)
		y := size * float64(j) / float64(res)
		k := 2 * math.Pi * waves / size
		return x, y, amp * math.Sin(k*x) * math.Cos(k*y)
	}

	var verts []float64
	quad := func(i, j int) {
		x0, y0, z0 := height(i, j)
		x1, y1, z1 := height(i+1, j)
		x2, y2, z2 := height(i+1, j+1)
		x3, y3, z3 := height(i, j+1)
		verts = append(verts,
			x0, y0, z0, x1, y1, z1, x2, y2, z2,
			x0, y0, z0, x2, y2, z2, x3, y3, z3,
		)
	}
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			quad(i, j)
		}
	}
	return geometry.TrianglesFromFloats(verts)
}

// writeHeightPNG re-samples the mesh at the carving resolution and
// writes the grayscale height image.
func writeHeightPNG(tris []geometry.Triangle, tool machine.ToolConfig, cell float64, path string, maxDim int) error {
	bounds, _, _ := geometry.MeshBounds(tris)
	hm, err := surface.Sample(tris, surface.ZMapConfig{
		MinX:     bounds.X,
		MinY:     bounds.Y,
		Width:    bounds.Width,
		Height:   bounds.Height,
		CellSize: cell,
	}, tool, nil)
	if err != nil {
		return err
	}
	return surface.WritePNG(hm, path, maxDim)
}
