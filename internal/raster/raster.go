// Package raster turns a sampled height field into a boustrophedon
// (zigzag) carving toolpath: consecutive rows are cut in alternating
// X directions, connected by short cutting moves, with a single plunge
// at the start and a single retract at the end.
package raster

import (
	"fmt"

	"router-cam/internal/surface"
	"router-cam/internal/toolpath"
	"router-cam/pkg/geometry"
)

// progressRowStride is how many emitted rows pass between progress
// callbacks.
const progressRowStride = 10

// Options controls row selection and clearance heights.
type Options struct {
	// Stepover is the requested distance between rows in mm. It is
	// quantized to a whole number of grid rows, at least one.
	Stepover float64
	// SafeZ is the clearance height for the entry rapid and the final
	// retract.
	SafeZ float64
}

// Generate converts the height map into a zigzag toolpath. Even output
// rows run toward +X, odd rows toward -X. The progress callback, when
// non-nil, receives a fraction in [0, 1] every few rows and once at
// completion.
func Generate(hm *surface.HeightMap, opt Options, progress func(float64)) (*toolpath.Path, error) {
	cols, rows := hm.Config.Cols(), hm.Config.Rows()
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("height map is empty")
	}

	rowStep := 1
	if opt.Stepover > hm.Config.CellSize {
		rowStep = int(opt.Stepover/hm.Config.CellSize + 0.5)
	}

	var pts []geometry.Point3D
	emitted := 0
	total := (rows + rowStep - 1) / rowStep
	for row := 0; row < rows; row += rowStep {
		if emitted%2 == 0 {
			for col := 0; col < cols; col++ {
				pts = appendSample(pts, hm, col, row)
			}
		} else {
			for col := cols - 1; col >= 0; col-- {
				pts = appendSample(pts, hm, col, row)
			}
		}
		emitted++
		if progress != nil && emitted%progressRowStride == 0 {
			progress(float64(emitted) / float64(total))
		}
	}

	tp := &toolpath.Path{}
	if len(pts) > 0 {
		first := pts[0]
		tp.Append(toolpath.Segment{Kind: toolpath.MoveRapid, Points: []geometry.Point3D{
			{X: first.X, Y: first.Y, Z: opt.SafeZ},
		}})
		tp.Append(toolpath.Segment{Kind: toolpath.MovePlunge, Points: []geometry.Point3D{
			{X: first.X, Y: first.Y, Z: opt.SafeZ},
			first,
		}})
		tp.Append(toolpath.Segment{Kind: toolpath.MoveCut, Points: pts})
		last := pts[len(pts)-1]
		tp.Append(toolpath.Segment{Kind: toolpath.MoveRetract, Points: []geometry.Point3D{
			last,
			{X: last.X, Y: last.Y, Z: opt.SafeZ},
		}})
	}

	if progress != nil {
		progress(1)
	}
	return tp, nil
}

// appendSample adds the cell's sample point, dropping points that
// merely extend the previous straight run.
func appendSample(pts []geometry.Point3D, hm *surface.HeightMap, col, row int) []geometry.Point3D {
	x, y := hm.Config.CellCenter(col, row)
	p := geometry.Point3D{X: x, Y: y, Z: hm.At(col, row)}

	n := len(pts)
	if n >= 2 && collinear(pts[n-2], pts[n-1], p) {
		pts[n-1] = p
		return pts
	}
	return append(pts, p)
}

// collinear reports whether b lies on the straight segment from a to c,
// within a tight tolerance.
func collinear(a, b, c geometry.Point3D) bool {
	ux, uy, uz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	vx, vy, vz := c.X-b.X, c.Y-b.Y, c.Z-b.Z

	// cross product of the two steps
	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx
	if cx*cx+cy*cy+cz*cz > 1e-18 {
		return false
	}
	// same direction, not a reversal
	return ux*vx+uy*vy+uz*vz >= 0
}
