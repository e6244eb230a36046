// Package pipeline chains the processing stages into the two
// program-producing runs: vector jobs (drawing outlines to 2.5D
// profile cuts) and mesh jobs (triangle surfaces to zigzag carving).
package pipeline

import (
	"fmt"

	"router-cam/internal/discretize"
	"router-cam/internal/gcode"
	"router-cam/internal/machine"
	"router-cam/internal/offset"
	"router-cam/internal/order"
	"router-cam/internal/raster"
	"router-cam/internal/surface"
	"router-cam/internal/toolpath"
	"router-cam/pkg/geometry"
)

// Progress receives a completion fraction in [0, 1]. Reported values
// never decrease.
type Progress func(frac float64)

// Result is a finished run: the program text plus the data a caller
// needs for previews and time estimates.
type Result struct {
	GCode   string
	Preview []float64
	Stats   toolpath.Stats

	// GridCols and GridRows are set for mesh runs only.
	GridCols, GridRows int
}

// VectorOptions tunes a vector run.
type VectorOptions struct {
	Comment    string
	FitArcs    bool
	Discretize discretize.Options
	Progress   Progress
}

// RunVector turns the job's polylines into a profile-cutting program:
// discretize, tool compensation, travel ordering, plunge/cut/retract
// synthesis, then G-code.
func RunVector(job *machine.Job, opt VectorOptions) (*Result, error) {
	if len(job.Paths) == 0 {
		return nil, fmt.Errorf("job has no paths")
	}
	side, err := parseSide(job.Side)
	if err != nil {
		return nil, err
	}
	dopt := opt.Discretize
	if dopt == (discretize.Options{}) {
		dopt = discretize.DefaultOptions()
	}
	report := monotone(opt.Progress)

	polys := discretize.DiscretizeAll(job.Paths, dopt)
	if len(polys) == 0 {
		return nil, fmt.Errorf("no cuttable paths after discretization")
	}
	report(0.2)

	polys = offset.All(polys, offset.Distance(side, job.Tool.Radius()))
	report(0.4)

	polys = order.Optimize(polys)
	report(0.6)

	tp := toolpath.Synthesize(polys, toolpath.SynthOptions{
		Depth: job.Depth,
		SafeZ: job.Machine.SafeZ,
	})
	report(0.8)

	res := &Result{
		GCode: gcode.Generate(tp, job.Tool, job.Machine, gcode.Options{
			Comment: opt.Comment,
			FitArcs: opt.FitArcs,
		}),
		Preview: toolpath.VisualBuffer(tp),
		Stats:   toolpath.ComputeStats(tp, job.Tool.FeedRate, job.Tool.PlungeRate),
	}
	report(1)
	return res, nil
}

// FlattenCurves converts curved drawing paths into polylines ready for
// a vector job.
func FlattenCurves(paths []discretize.Path, dopt discretize.Options) ([]geometry.Polyline, error) {
	polys := make([]geometry.Polyline, 0, len(paths))
	for i, p := range paths {
		pl, err := p.Flatten(dopt)
		if err != nil {
			return nil, fmt.Errorf("path %d: %v", i, err)
		}
		polys = append(polys, pl)
	}
	return polys, nil
}

// MeshOptions tunes a mesh run.
type MeshOptions struct {
	Comment string
	FitArcs bool

	// CellSize is the sampling resolution in mm; zero means half the
	// tool radius.
	CellSize float64
	// Stepover is the distance between carving rows in mm; zero means
	// the cell size.
	Stepover float64
	// Engrave flips the sampled heights so raised features are cut
	// into the stock.
	Engrave bool

	Progress Progress
}

// RunMesh carves the triangle surface: drop-cutter sampling over the
// mesh's XY bounds, zigzag rasterization, then G-code.
func RunMesh(tris []geometry.Triangle, tool machine.ToolConfig, mach machine.MachineConfig, opt MeshOptions) (*Result, error) {
	if len(tris) == 0 {
		return nil, fmt.Errorf("mesh has no triangles")
	}

	cell := opt.CellSize
	if cell <= 0 {
		cell = tool.Radius() / 2
	}
	if cell <= 0 {
		return nil, fmt.Errorf("no usable cell size: tool diameter %g", tool.Diameter)
	}
	step := opt.Stepover
	if step <= 0 {
		step = cell
	}
	report := monotone(opt.Progress)

	bounds, _, _ := geometry.MeshBounds(tris)
	cfg := surface.ZMapConfig{
		MinX:     bounds.X,
		MinY:     bounds.Y,
		Width:    bounds.Width,
		Height:   bounds.Height,
		CellSize: cell,
	}

	hm, err := surface.Sample(tris, cfg, tool, func(f float64) {
		report(f * 0.6)
	})
	if err != nil {
		return nil, err
	}
	if opt.Engrave {
		hm.Invert()
	}

	tp, err := raster.Generate(hm, raster.Options{
		Stepover: step,
		SafeZ:    mach.SafeZ,
	}, func(f float64) {
		report(0.6 + f*0.3)
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		GCode: gcode.Generate(tp, tool, mach, gcode.Options{
			Comment: opt.Comment,
			FitArcs: opt.FitArcs,
		}),
		Preview:  toolpath.VisualBuffer(tp),
		Stats:    toolpath.ComputeStats(tp, tool.FeedRate, tool.PlungeRate),
		GridCols: cfg.Cols(),
		GridRows: cfg.Rows(),
	}
	report(1)
	return res, nil
}

// parseSide maps a job file side string to a compensation side.
func parseSide(s string) (offset.Side, error) {
	switch s {
	case "", "none":
		return offset.SideNone, nil
	case "left":
		return offset.SideLeft, nil
	case "right":
		return offset.SideRight, nil
	}
	return 0, fmt.Errorf("unrecognized compensation side %q", s)
}

// monotone wraps a progress callback so reported fractions never go
// backwards, whatever the stages report.
func monotone(p Progress) Progress {
	if p == nil {
		return func(float64) {}
	}
	last := 0.0
	return func(f float64) {
		if f < last {
			return
		}
		last = f
		p(f)
	}
}
