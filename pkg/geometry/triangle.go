package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a mesh facet with three 3D vertices. Triangles are
// supplied once per run and never mutated.
type Triangle struct {
	A, B, C Point3D
}

// vec converts a Point3D to a gonum r3 vector.
func vec(p Point3D) r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Normal returns the (unnormalized) face normal A->B x A->C.
func (t Triangle) Normal() r3.Vec {
	return r3.Cross(r3.Sub(vec(t.B), vec(t.A)), r3.Sub(vec(t.C), vec(t.A)))
}

// IsDegenerate reports whether the triangle has (near) zero area.
func (t Triangle) IsDegenerate() bool {
	return r3.Norm(t.Normal()) < 1e-12
}

// MaxZ returns the highest vertex Z.
func (t Triangle) MaxZ() float64 {
	return math.Max(t.A.Z, math.Max(t.B.Z, t.C.Z))
}

// MinZ returns the lowest vertex Z.
func (t Triangle) MinZ() float64 {
	return math.Min(t.A.Z, math.Min(t.B.Z, t.C.Z))
}

// BoundsXY returns the triangle's bounding box projected on the XY plane.
func (t Triangle) BoundsXY() Rect {
	return BoundingBox([]Point2D{t.A.XY(), t.B.XY(), t.C.XY()})
}

// ContainsXY reports whether the XY projection of the triangle contains
// the point (x, y). Points on an edge count as inside.
func (t Triangle) ContainsXY(x, y float64) bool {
	p := Point2D{X: x, Y: y}
	a, b, c := t.A.XY(), t.B.XY(), t.C.XY()

	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// PlaneZ returns the Z of the triangle's supporting plane at (x, y).
// Returns false for triangles whose plane is vertical.
func (t Triangle) PlaneZ(x, y float64) (float64, bool) {
	n := t.Normal()
	if math.Abs(n.Z) < 1e-12 {
		return 0, false
	}
	// Plane equation: n . (p - A) = 0
	z := t.A.Z - (n.X*(x-t.A.X)+n.Y*(y-t.A.Y))/n.Z
	return z, true
}

// TrianglesFromFloats builds triangles from a flat vertex buffer of
// 9 floats per triangle (x,y,z for each of the three vertices), the
// layout mesh readers hand over. Degenerate (zero-area) triangles are
// dropped; a buffer length that is not a multiple of 9 or a non-finite
// coordinate is an error.
func TrianglesFromFloats(verts []float64) ([]Triangle, error) {
	if len(verts)%9 != 0 {
		return nil, fmt.Errorf("triangle buffer length %d is not a multiple of 9", len(verts))
	}

	for i, v := range verts {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite coordinate at index %d", i)
		}
	}

	tris := make([]Triangle, 0, len(verts)/9)
	for i := 0; i+9 <= len(verts); i += 9 {
		t := Triangle{
			A: Point3D{X: verts[i], Y: verts[i+1], Z: verts[i+2]},
			B: Point3D{X: verts[i+3], Y: verts[i+4], Z: verts[i+5]},
			C: Point3D{X: verts[i+6], Y: verts[i+7], Z: verts[i+8]},
		}
		if t.IsDegenerate() {
			continue
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// MeshBounds returns the XY bounding box and Z range of a triangle set.
func MeshBounds(tris []Triangle) (Rect, float64, float64) {
	if len(tris) == 0 {
		return Rect{}, 0, 0
	}
	bounds := tris[0].BoundsXY()
	minZ, maxZ := tris[0].MinZ(), tris[0].MaxZ()
	for _, t := range tris[1:] {
		bounds = bounds.Union(t.BoundsXY())
		minZ = math.Min(minZ, t.MinZ())
		maxZ = math.Max(maxZ, t.MaxZ())
	}
	return bounds, minZ, maxZ
}
