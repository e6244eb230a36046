// Package arcfit compresses runs of collinear-Z toolpath points into
// circular arcs. A candidate circle is taken through the run's first,
// middle and last points; the run is accepted when every point lies on
// the circle within tolerance, and greedily extended one point at a
// time.
package arcfit

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"router-cam/pkg/geometry"
)

// ElementKind distinguishes line and arc output elements.
type ElementKind int

const (
	// ElemLine is a straight move to End.
	ElemLine ElementKind = iota
	// ElemArc is a circular move to End around Start+CenterOffset.
	ElemArc
)

// Element is one output move. For arcs, CenterOffset is the circle
// center relative to the element's start point (the previous element's
// End), matching G-code I/J words.
type Element struct {
	Kind         ElementKind
	End          geometry.Point3D
	CenterOffset geometry.Point2D
	Clockwise    bool
}

// Options bounds which runs are worth replacing with arcs.
type Options struct {
	// Tolerance is the maximum radial deviation of any run point from
	// the fitted circle, in mm.
	Tolerance float64
	// MaxRadius rejects near-straight runs whose fitted circle is
	// degenerate.
	MaxRadius float64
	// MinPoints is the shortest run worth emitting as an arc.
	MinPoints int
}

// DefaultOptions returns the fitting bounds used by the G-code emitter.
func DefaultOptions() Options {
	return Options{Tolerance: 0.01, MaxRadius: 1000, MinPoints: 5}
}

// Fit walks the points and replaces arc-shaped runs with ElemArc
// elements, leaving everything else as single ElemLine moves. The
// first point is the implicit start position and produces no element.
func Fit(points []geometry.Point3D, opt Options) []Element {
	if opt.MinPoints < 3 {
		opt.MinPoints = 3
	}

	var out []Element
	i := 0
	for i < len(points)-1 {
		run, center, cw := longestArc(points[i:], opt)
		if run >= opt.MinPoints {
			end := points[i+run-1]
			out = append(out, Element{
				Kind:         ElemArc,
				End:          end,
				CenterOffset: center.Sub(points[i].XY()),
				Clockwise:    cw,
			})
			i += run - 1
			continue
		}
		out = append(out, Element{Kind: ElemLine, End: points[i+1]})
		i++
	}
	return out
}

// longestArc returns the length of the longest prefix of pts that fits
// a single circle, with its center and winding direction. A result
// below 3 means no arc starts here.
func longestArc(pts []geometry.Point3D, opt Options) (int, geometry.Point2D, bool) {
	bestRun := 0
	var bestCenter geometry.Point2D
	var bestCW bool

	for n := 3; n <= len(pts); n++ {
		if pts[n-2].Z != pts[0].Z || pts[n-1].Z != pts[0].Z {
			break
		}
		center, ok := fitCircle(pts[:n], opt)
		if !ok {
			break
		}
		bestRun = n
		bestCenter = center
		bestCW = winding(pts)
	}
	return bestRun, bestCenter, bestCW
}

// fitCircle solves for the circle through the run's first, middle and
// last points and accepts it when every run point lies within
// tolerance of it. Collinear triples make the system singular and are
// rejected.
func fitCircle(pts []geometry.Point3D, opt Options) (geometry.Point2D, bool) {
	a := pts[0].XY()
	m := pts[len(pts)/2].XY()
	b := pts[len(pts)-1].XY()

	// center c satisfies |c-a| = |c-m| = |c-b|, linearized
	sys := mat.NewDense(2, 2, []float64{
		2 * (m.X - a.X), 2 * (m.Y - a.Y),
		2 * (b.X - a.X), 2 * (b.Y - a.Y),
	})
	rhs := mat.NewVecDense(2, []float64{
		m.X*m.X + m.Y*m.Y - a.X*a.X - a.Y*a.Y,
		b.X*b.X + b.Y*b.Y - a.X*a.X - a.Y*a.Y,
	})

	var sol mat.VecDense
	if err := sol.SolveVec(sys, rhs); err != nil {
		return geometry.Point2D{}, false
	}

	center := geometry.Point2D{X: sol.AtVec(0), Y: sol.AtVec(1)}
	radius := center.Distance(a)
	if radius <= opt.Tolerance || radius > opt.MaxRadius {
		return geometry.Point2D{}, false
	}

	for _, p := range pts {
		if math.Abs(center.Distance(p.XY())-radius) > opt.Tolerance {
			return geometry.Point2D{}, false
		}
	}
	return center, true
}

// winding reports whether the run sweeps clockwise, from the signed
// area of its first three points. Three distinct points on a circle
// are never collinear, so the sign is well defined for any accepted
// run.
func winding(pts []geometry.Point3D) bool {
	a := pts[0].XY()
	b := pts[1].XY()
	c := pts[2].XY()
	return b.Sub(a).Cross(c.Sub(b)) < 0
}
