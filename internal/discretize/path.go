// Package discretize flattens curved paths into polylines and
// conditions polylines for machining: deduplication, simplification
// and chord re-subdivision under millimeter tolerances.
package discretize

import (
	"fmt"
	"math"

	"router-cam/pkg/geometry"
)

// CommandOp identifies a path command.
type CommandOp byte

const (
	// OpLine is a straight segment to P3.
	OpLine CommandOp = 'L'
	// OpCubic is a cubic Bezier with control points P1, P2 and endpoint P3.
	OpCubic CommandOp = 'C'
	// OpQuad is a quadratic Bezier with control point P1 and endpoint P3.
	OpQuad CommandOp = 'Q'
	// OpArc is a circular arc around Center from the current point to P3.
	// Clockwise selects the winding direction.
	OpArc CommandOp = 'A'
)

// Command is a single drawing command. P3 is always the endpoint;
// which of the other fields are meaningful depends on Op.
type Command struct {
	Op        CommandOp
	P1, P2    geometry.Point2D
	P3        geometry.Point2D
	Center    geometry.Point2D
	Clockwise bool
}

// Path is a start point followed by drawing commands, the shape vector
// readers hand over before flattening.
type Path struct {
	Start    geometry.Point2D
	Commands []Command
	Closed   bool
}

// Flatten converts the path to a polyline by discretizing every curved
// command. An unrecognized command op or a non-finite coordinate aborts
// with an error; nothing is partially flattened.
func (p Path) Flatten(opts Options) (geometry.Polyline, error) {
	if !p.Start.IsFinite() {
		return geometry.Polyline{}, fmt.Errorf("path start point is not finite")
	}

	pts := []geometry.Point2D{p.Start}
	cur := p.Start

	for i, cmd := range p.Commands {
		if !cmd.P3.IsFinite() {
			return geometry.Polyline{}, fmt.Errorf("command %d (%c): endpoint is not finite", i, cmd.Op)
		}

		switch cmd.Op {
		case OpLine:
			pts = append(pts, cmd.P3)
		case OpCubic:
			if !cmd.P1.IsFinite() || !cmd.P2.IsFinite() {
				return geometry.Polyline{}, fmt.Errorf("command %d (C): control point is not finite", i)
			}
			pts = flattenCubic(cur, cmd.P1, cmd.P2, cmd.P3, opts.Flatness, 0, pts)
		case OpQuad:
			if !cmd.P1.IsFinite() {
				return geometry.Polyline{}, fmt.Errorf("command %d (Q): control point is not finite", i)
			}
			// Elevate to cubic and reuse the cubic flattener.
			c1 := cur.Add(cmd.P1.Sub(cur).Scale(2.0 / 3.0))
			c2 := cmd.P3.Add(cmd.P1.Sub(cmd.P3).Scale(2.0 / 3.0))
			pts = flattenCubic(cur, c1, c2, cmd.P3, opts.Flatness, 0, pts)
		case OpArc:
			if !cmd.Center.IsFinite() {
				return geometry.Polyline{}, fmt.Errorf("command %d (A): center is not finite", i)
			}
			pts = flattenArc(cur, cmd.P3, cmd.Center, cmd.Clockwise, pts)
		default:
			return geometry.Polyline{}, fmt.Errorf("unrecognized path command %q at index %d", cmd.Op, i)
		}
		cur = cmd.P3
	}

	pl := geometry.Polyline{Points: pts, Closed: p.Closed}
	if p.Closed && len(pts) >= 2 && pts[0] != pts[len(pts)-1] {
		pl.Points = append(pl.Points, pts[0])
	}
	return pl, nil
}

// maxSubdivisionDepth caps De Casteljau recursion.
const maxSubdivisionDepth = 12

// flattenCubic recursively bisects a cubic Bezier until both control
// points deviate from the chord by less than the flatness tolerance,
// appending the resulting points (excluding p0) to out.
func flattenCubic(p0, p1, p2, p3 geometry.Point2D, flatness float64, depth int, out []geometry.Point2D) []geometry.Point2D {
	d1 := geometry.PerpendicularDistance(p1, p0, p3)
	d2 := geometry.PerpendicularDistance(p2, p0, p3)
	if (d1 <= flatness && d2 <= flatness) || depth >= maxSubdivisionDepth {
		return append(out, p3)
	}

	// De Casteljau midpoint subdivision
	m01 := midpoint(p0, p1)
	m12 := midpoint(p1, p2)
	m23 := midpoint(p2, p3)
	m012 := midpoint(m01, m12)
	m123 := midpoint(m12, m23)
	m0123 := midpoint(m012, m123)

	out = flattenCubic(p0, m01, m012, m0123, flatness, depth+1, out)
	return flattenCubic(m0123, m123, m23, p3, flatness, depth+1, out)
}

func midpoint(a, b geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// arcStep is the fixed angular sampling step for circular arcs.
const arcStep = math.Pi / 16

// minArcSamples is the minimum number of sampled points per arc.
const minArcSamples = 4

// flattenArc samples a circular arc from 'from' to 'to' around center,
// appending the samples (excluding 'from') to out. The radius is taken
// from the start point; the endpoint is emitted exactly.
func flattenArc(from, to, center geometry.Point2D, clockwise bool, out []geometry.Point2D) []geometry.Point2D {
	radius := from.Distance(center)
	if radius == 0 {
		return append(out, to)
	}

	a0 := math.Atan2(from.Y-center.Y, from.X-center.X)
	a1 := math.Atan2(to.Y-center.Y, to.X-center.X)

	sweep := a1 - a0
	if clockwise {
		for sweep >= 0 {
			sweep -= 2 * math.Pi
		}
	} else {
		for sweep <= 0 {
			sweep += 2 * math.Pi
		}
	}

	n := int(math.Ceil(math.Abs(sweep) / arcStep))
	if n < minArcSamples {
		n = minArcSamples
	}

	for i := 1; i < n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		out = append(out, geometry.Point2D{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return append(out, to)
}
