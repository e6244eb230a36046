package discretize

import (
	"router-cam/pkg/geometry"
)

// Options holds the discretization tolerances, all in millimeters.
type Options struct {
	// DedupeTolerance merges consecutive points closer than this.
	DedupeTolerance float64
	// SimplifyEpsilon is the Douglas-Peucker perpendicular-distance tolerance.
	SimplifyEpsilon float64
	// MaxChord re-subdivides segments longer than this.
	MaxChord float64
	// Flatness is the Bezier control-point deviation tolerance.
	Flatness float64
}

// DefaultOptions returns the standard machining tolerances.
func DefaultOptions() Options {
	return Options{
		DedupeTolerance: 0.001,
		SimplifyEpsilon: 0.05,
		MaxChord:        1.0,
		Flatness:        0.5,
	}
}

// Discretize conditions a polyline for machining: dedupe, simplify,
// re-subdivide. Returns false when the result degenerates below two
// points, so producers can filter it out.
func Discretize(pl geometry.Polyline, opts Options) (geometry.Polyline, bool) {
	pts := dedupe(pl.Points, opts.DedupeTolerance)
	if len(pts) < 2 {
		return geometry.Polyline{}, false
	}

	pts = simplify(pts, opts.SimplifyEpsilon)

	// Restore the closing duplicate before subdividing so the closing
	// edge respects the chord bound too.
	if pl.Closed && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	pts = subdivide(pts, opts.MaxChord)

	return geometry.Polyline{Points: pts, Closed: pl.Closed}, true
}

// DiscretizeAll runs Discretize over a set of polylines, dropping
// degenerate results.
func DiscretizeAll(pls []geometry.Polyline, opts Options) []geometry.Polyline {
	out := make([]geometry.Polyline, 0, len(pls))
	for _, pl := range pls {
		if d, ok := Discretize(pl, opts); ok {
			out = append(out, d)
		}
	}
	return out
}

// dedupe removes consecutive points closer than tolerance.
func dedupe(points []geometry.Point2D, tolerance float64) []geometry.Point2D {
	if len(points) == 0 {
		return nil
	}

	out := make([]geometry.Point2D, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p.Distance(out[len(out)-1]) >= tolerance {
			out = append(out, p)
		}
	}
	return out
}

// simplify reduces the number of vertices using the Douglas-Peucker
// algorithm, always preserving the endpoints.
func simplify(points []geometry.Point2D, epsilon float64) []geometry.Point2D {
	if len(points) <= 2 {
		return points
	}

	// Find point with maximum distance from the line between the endpoints
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := geometry.PerpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := simplify(points[:index+1], epsilon)
		right := simplify(points[index:], epsilon)

		result := make([]geometry.Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// Everything between the endpoints is within epsilon
	return []geometry.Point2D{points[0], points[end]}
}

// subdivide splits segments longer than maxChord into equal parts so
// downstream per-point processing sees a bounded spacing.
func subdivide(points []geometry.Point2D, maxChord float64) []geometry.Point2D {
	if len(points) < 2 || maxChord <= 0 {
		return points
	}

	out := make([]geometry.Point2D, 0, len(points))
	out = append(out, points[0])

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		dist := a.Distance(b)
		if dist > maxChord {
			n := int(dist/maxChord) + 1
			for k := 1; k < n; k++ {
				t := float64(k) / float64(n)
				out = append(out, a.Add(b.Sub(a).Scale(t)))
			}
		}
		out = append(out, b)
	}
	return out
}
