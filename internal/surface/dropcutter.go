package surface

import (
	"fmt"
	"math"
	"sort"

	"router-cam/internal/machine"
	"router-cam/pkg/geometry"
)

// bucketDivisor caps the bucket count so sparse meshes do not pay for
// a fine grid: buckets are at least stockExtent/32 across.
const bucketDivisor = 32

// progressRowStride is how many sample rows pass between progress
// callbacks.
const progressRowStride = 8

// Sample drops the tool onto the mesh at every grid cell and records
// the highest safe tip Z. Cells the tool footprint never touches hold
// 0. The progress callback, when non-nil, is invoked with a fraction
// in [0, 1] every few rows and once at completion.
func Sample(tris []geometry.Triangle, cfg ZMapConfig, tool machine.ToolConfig, progress func(float64)) (*HeightMap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	radius := tool.Radius()
	if radius <= 0 {
		return nil, fmt.Errorf("tool diameter %g must be positive", tool.Diameter)
	}
	if tool.Kind == machine.ToolV && tool.VAngle <= 0 {
		return nil, fmt.Errorf("v tool needs a positive included angle, got %g", tool.VAngle)
	}

	grid := newBucketGrid(tris, cfg, radius)
	hm := NewHeightMap(cfg)

	rows, cols := cfg.Rows(), cfg.Cols()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x, y := cfg.CellCenter(col, row)
			hm.Set(col, row, dropTool(tris, grid.candidates(x, y), tool, radius, x, y))
		}
		if progress != nil && row%progressRowStride == 0 {
			progress(float64(row) / float64(rows))
		}
	}
	if progress != nil {
		progress(1)
	}
	return hm, nil
}

// dropTool returns the highest tip Z at which the tool, centered on
// (x, y), still touches one of the candidate triangles. Candidates are
// ordered by descending MaxZ so the scan can stop as soon as no
// remaining triangle can raise the best contact.
func dropTool(tris []geometry.Triangle, candidates []int, tool machine.ToolConfig, radius, x, y float64) float64 {
	best := math.Inf(-1)
	for _, idx := range candidates {
		tri := tris[idx]
		if tri.MaxZ() <= best {
			break
		}
		if z, ok := triangleContact(tri, tool, radius, x, y); ok && z > best {
			best = z
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// triangleContact tests the tool axis at (x, y) against one triangle:
// face contact when the axis projects inside the facet, then the three
// edges. Edge parameters clamp to the endpoints, which covers vertex
// contact as well.
func triangleContact(tri geometry.Triangle, tool machine.ToolConfig, radius, x, y float64) (float64, bool) {
	best := math.Inf(-1)
	found := false

	if tri.ContainsXY(x, y) {
		if z, ok := faceContact(tri, tool, radius, x, y); ok {
			best = z
			found = true
		}
	}

	edges := [3][2]geometry.Point3D{{tri.A, tri.B}, {tri.B, tri.C}, {tri.C, tri.A}}
	for _, e := range edges {
		fz, d := closestOnEdge(e[0], e[1], x, y)
		if d > radius {
			continue
		}
		z := tipHeight(tool, radius, fz, d)
		if !found || z > best {
			best = z
			found = true
		}
	}

	return best, found
}

// faceContact derives the tool tip height against the facet's
// supporting plane. Ball and V tools on a sloped face touch up-slope
// of the axis; when the true contact point would fall past the facet
// boundary the edge tests govern instead, so the result is clamped to
// the facet's highest vertex.
func faceContact(tri geometry.Triangle, tool machine.ToolConfig, radius, x, y float64) (float64, bool) {
	z, ok := tri.PlaneZ(x, y)
	if !ok {
		return 0, false
	}

	n := tri.Normal()
	if math.Abs(n.Z) < 1e-12 {
		return 0, false
	}
	// slope is |grad z| of the plane
	slope := math.Hypot(n.X, n.Y) / math.Abs(n.Z)

	switch tool.Kind {
	case machine.ToolBall:
		z += radius * (math.Sqrt(1+slope*slope) - 1)
	case machine.ToolV:
		cot := 1 / math.Tan(tool.VHalfAngle())
		if slope > cot {
			// face steeper than the cone flank, contact is on the
			// facet boundary
			return 0, false
		}
	}
	if max := tri.MaxZ(); z > max {
		z = max
	}
	return z, true
}

// closestOnEdge returns the feature Z and XY distance of the point on
// the segment ab nearest to (x, y), parameterized in the XY plane.
// Edges that project to a single point fall back to endpoint a.
func closestOnEdge(a, b geometry.Point3D, x, y float64) (featureZ, dist float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	var t float64
	if l2 > 1e-18 {
		t = ((x-a.X)*dx + (y-a.Y)*dy) / l2
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	cx, cy := a.X+t*dx, a.Y+t*dy
	return a.Z + t*(b.Z-a.Z), math.Hypot(x-cx, y-cy)
}

// tipHeight gives the tool tip Z when the cutting surface rests on a
// feature point at the given Z and horizontal offset from the axis.
// The offset is at most the tool radius.
func tipHeight(tool machine.ToolConfig, radius, featureZ, d float64) float64 {
	switch tool.Kind {
	case machine.ToolBall:
		r2 := radius*radius - d*d
		if r2 < 0 {
			r2 = 0
		}
		return featureZ - radius + math.Sqrt(r2)
	case machine.ToolV:
		return featureZ - d/math.Tan(tool.VHalfAngle())
	default:
		return featureZ
	}
}

// bucketGrid indexes triangles by the sample cells their tool-expanded
// XY bounds cover, so each drop only tests nearby facets.
type bucketGrid struct {
	minX, minY float64
	size       float64
	cols, rows int
	buckets    [][]int
}

func newBucketGrid(tris []geometry.Triangle, cfg ZMapConfig, radius float64) *bucketGrid {
	extent := math.Max(cfg.Width, cfg.Height)
	size := math.Max(4*radius, extent/bucketDivisor)

	g := &bucketGrid{
		minX: cfg.MinX,
		minY: cfg.MinY,
		size: size,
		cols: gridDim(cfg.Width, size),
		rows: gridDim(cfg.Height, size),
	}
	if g.cols < 1 {
		g.cols = 1
	}
	if g.rows < 1 {
		g.rows = 1
	}
	g.buckets = make([][]int, g.cols*g.rows)

	for i, tri := range tris {
		b := tri.BoundsXY().Expanded(radius)
		c0, r0 := g.clampCell(b.X, b.Y)
		c1, r1 := g.clampCell(b.X+b.Width, b.Y+b.Height)
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				g.buckets[r*g.cols+c] = append(g.buckets[r*g.cols+c], i)
			}
		}
	}

	// highest facets first lets the drop scan stop early
	for _, b := range g.buckets {
		sort.Slice(b, func(i, j int) bool {
			return tris[b[i]].MaxZ() > tris[b[j]].MaxZ()
		})
	}
	return g
}

func (g *bucketGrid) clampCell(x, y float64) (int, int) {
	c := int((x - g.minX) / g.size)
	r := int((y - g.minY) / g.size)
	if c < 0 {
		c = 0
	} else if c >= g.cols {
		c = g.cols - 1
	}
	if r < 0 {
		r = 0
	} else if r >= g.rows {
		r = g.rows - 1
	}
	return c, r
}

// candidates returns the triangle indices whose expanded bounds cover
// the bucket containing (x, y), ordered by descending MaxZ.
func (g *bucketGrid) candidates(x, y float64) []int {
	c, r := g.clampCell(x, y)
	return g.buckets[r*g.cols+c]
}
