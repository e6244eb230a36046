package geometry

// Polyline is an ordered sequence of 2D points, optionally closed.
// A closed polyline carries an explicit duplicate of its first point
// as its last point.
type Polyline struct {
	Points []Point2D `json:"points"`
	Closed bool      `json:"closed"`
}

// NewPolyline creates an open polyline from points.
func NewPolyline(points ...Point2D) Polyline {
	return Polyline{Points: points}
}

// NewClosedPolyline creates a closed polyline, appending the closing
// duplicate point if it is not already present.
func NewClosedPolyline(points ...Point2D) Polyline {
	pts := make([]Point2D, len(points))
	copy(pts, points)
	if len(pts) >= 2 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return Polyline{Points: pts, Closed: true}
}

// Len returns the number of points.
func (pl Polyline) Len() int {
	return len(pl.Points)
}

// Length returns the total path length along the polyline.
func (pl Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(pl.Points); i++ {
		total += pl.Points[i].Distance(pl.Points[i-1])
	}
	return total
}

// Start returns the first point. The polyline must not be empty.
func (pl Polyline) Start() Point2D {
	return pl.Points[0]
}

// End returns the last point. The polyline must not be empty.
func (pl Polyline) End() Point2D {
	return pl.Points[len(pl.Points)-1]
}

// Reversed returns a copy of the polyline with point order reversed.
func (pl Polyline) Reversed() Polyline {
	pts := make([]Point2D, len(pl.Points))
	for i, p := range pl.Points {
		pts[len(pl.Points)-1-i] = p
	}
	return Polyline{Points: pts, Closed: pl.Closed}
}

// Clone returns a deep copy of the polyline.
func (pl Polyline) Clone() Polyline {
	pts := make([]Point2D, len(pl.Points))
	copy(pts, pl.Points)
	return Polyline{Points: pts, Closed: pl.Closed}
}

// Bounds returns the axis-aligned bounding box of the polyline.
func (pl Polyline) Bounds() Rect {
	return BoundingBox(pl.Points)
}

// SignedArea returns the signed area enclosed by the polyline treated
// as a polygon. Positive for counter-clockwise winding.
func (pl Polyline) SignedArea() float64 {
	n := len(pl.Points)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pl.Points[i].Cross(pl.Points[j])
	}
	return area / 2
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PerpendicularDistance calculates the perpendicular distance from point p
// to the line through a and b.
func PerpendicularDistance(p, a, b Point2D) float64 {
	d := b.Sub(a)
	if d.X == 0 && d.Y == 0 {
		return p.Distance(a)
	}
	num := d.Cross(p.Sub(a))
	if num < 0 {
		num = -num
	}
	return num / d.Length()
}

// PointToSegmentDistance calculates the minimum distance from point p to
// the line segment a-b.
func PointToSegmentDistance(p, a, b Point2D) float64 {
	d := b.Sub(a)
	if d.X == 0 && d.Y == 0 {
		return p.Distance(a)
	}

	t := p.Sub(a).Dot(d) / d.Dot(d)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return p.Distance(a.Add(d.Scale(t)))
}
