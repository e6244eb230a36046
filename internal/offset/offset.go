// Package offset displaces polylines perpendicular to their edges for
// tool-radius compensation, using per-edge normals and unclamped miter
// joins at the vertices.
package offset

import (
	"router-cam/pkg/geometry"
)

// Side selects which side of the path the tool travels on.
type Side int

const (
	// SideNone disables compensation; the tool centerline follows the path.
	SideNone Side = iota
	// SideLeft offsets along the left-hand edge normals.
	SideLeft
	// SideRight offsets opposite the left-hand edge normals.
	SideRight
)

// Distance converts a side selection and tool radius into a signed
// offset distance for Polyline.
func Distance(side Side, toolRadius float64) float64 {
	switch side {
	case SideLeft:
		return toolRadius
	case SideRight:
		return -toolRadius
	default:
		return 0
	}
}

// Polyline offsets pl perpendicular to its edges by the signed distance.
// Zero distance or fewer than two points returns the input unchanged.
//
// Sharp concave corners are mitered without a limit, so their offset
// points can land far from the source vertex; self-intersecting results
// are not cleaned up.
func Polyline(pl geometry.Polyline, distance float64) geometry.Polyline {
	if distance == 0 || pl.Len() < 2 {
		return pl
	}
	if pl.Closed {
		return offsetClosed(pl, distance)
	}
	return offsetOpen(pl, distance)
}

// All offsets every polyline in the slice.
func All(pls []geometry.Polyline, distance float64) []geometry.Polyline {
	out := make([]geometry.Polyline, len(pls))
	for i, pl := range pls {
		out[i] = Polyline(pl, distance)
	}
	return out
}

// edgeNormal returns the left-hand unit normal of the edge a->b.
// A zero-length edge degrades to the zero normal; the caller's bisector
// fallback handles it.
func edgeNormal(a, b geometry.Point2D) geometry.Point2D {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return geometry.Point2D{}
	}
	return geometry.Point2D{X: -d.Y / l, Y: d.X / l}
}

// miterPoint offsets vertex p along the bisector of its two adjacent
// edge normals. The bisector is scaled by distance/dot(normal, bisector),
// the miter length that keeps both offset edges at the requested
// distance. Degenerate normals fall back to whichever neighbor exists.
func miterPoint(p geometry.Point2D, n1, n2 geometry.Point2D, distance float64) geometry.Point2D {
	bis := n1.Add(n2).Normalized()
	if bis.X == 0 && bis.Y == 0 {
		// 180 degree turn or two zero-length edges: offset along one normal
		if n1.X != 0 || n1.Y != 0 {
			bis = n1
		} else if n2.X != 0 || n2.Y != 0 {
			bis = n2
		} else {
			return p
		}
	}

	n := n1
	if n.X == 0 && n.Y == 0 {
		n = n2
	}

	dot := n.Dot(bis)
	if dot == 0 {
		dot = 1
	}
	return p.Add(bis.Scale(distance / dot))
}

// offsetClosed offsets a closed polyline. The explicit closing
// duplicate is stripped for the computation and re-appended at the end.
func offsetClosed(pl geometry.Polyline, distance float64) geometry.Polyline {
	pts := pl.Points
	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	n := len(pts)
	if n < 2 {
		return pl
	}

	normals := make([]geometry.Point2D, n)
	for i := 0; i < n; i++ {
		normals[i] = edgeNormal(pts[i], pts[(i+1)%n])
	}

	out := make([]geometry.Point2D, 0, n+1)
	for i := 0; i < n; i++ {
		prev := normals[(i-1+n)%n]
		cur := normals[i]
		out = append(out, miterPoint(pts[i], prev, cur, distance))
	}
	out = append(out, out[0])

	return geometry.Polyline{Points: out, Closed: true}
}

// offsetOpen offsets an open polyline. Endpoints use their single
// adjacent edge normal; interior vertices use the bisector rule.
func offsetOpen(pl geometry.Polyline, distance float64) geometry.Polyline {
	pts := pl.Points
	n := len(pts)

	normals := make([]geometry.Point2D, n-1)
	for i := 0; i < n-1; i++ {
		normals[i] = edgeNormal(pts[i], pts[i+1])
	}

	out := make([]geometry.Point2D, 0, n)
	out = append(out, pts[0].Add(normals[0].Scale(distance)))
	for i := 1; i < n-1; i++ {
		out = append(out, miterPoint(pts[i], normals[i-1], normals[i], distance))
	}
	out = append(out, pts[n-1].Add(normals[n-2].Scale(distance)))

	return geometry.Polyline{Points: out, Closed: false}
}
