// Package toolpath defines the machine motion representation shared by
// the 2D and 3D pipelines, and synthesizes toolpaths from ordered
// polylines: rapids, plunges (vertical or ramped), cuts and retracts.
package toolpath

import (
	"router-cam/pkg/geometry"
)

// MoveKind tags a segment with its motion type.
type MoveKind int

const (
	// MoveRapid is a travel move above the stock at the rapid rate.
	MoveRapid MoveKind = iota
	// MoveCut is a cutting move at the feed rate.
	MoveCut
	// MovePlunge is a descent into material at the plunge rate.
	MovePlunge
	// MoveRetract is a vertical lift back to safe height.
	MoveRetract
)

func (k MoveKind) String() string {
	switch k {
	case MoveRapid:
		return "rapid"
	case MoveCut:
		return "cut"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	default:
		return "unknown"
	}
}

// Segment is an ordered run of points sharing one move kind. Segments
// are built once and never mutated afterwards.
type Segment struct {
	Points []geometry.Point3D
	Kind   MoveKind
}

// Length returns the path length along the segment.
func (s Segment) Length() float64 {
	var total float64
	for i := 1; i < len(s.Points); i++ {
		total += s.Points[i].Distance(s.Points[i-1])
	}
	return total
}

// Path owns the ordered segments of one run.
type Path struct {
	Segments []Segment
}

// Append adds a segment, dropping empty ones.
func (p *Path) Append(seg Segment) {
	if len(seg.Points) == 0 {
		return
	}
	p.Segments = append(p.Segments, seg)
}

// Stats aggregates distances and a cycle-time estimate for a path.
type Stats struct {
	RapidDistance   float64 // mm
	CuttingDistance float64 // mm, cut moves only
	PlungeDistance  float64 // mm
	EstimatedTime   float64 // seconds
}

// TotalDistance returns the distance across every move kind.
func (s Stats) TotalDistance() float64 {
	return s.RapidDistance + s.CuttingDistance + s.PlungeDistance
}

// NominalRapidRate is the fixed rate used for rapid and retract time
// estimation, in mm/min.
const NominalRapidRate = 3000.0

// ComputeStats accumulates distance and time over a path. Cutting and
// plunge distance are divided by their configured rates; rapids and
// retracts use the nominal rapid rate.
func ComputeStats(p *Path, feedRate, plungeRate float64) Stats {
	var st Stats
	for _, seg := range p.Segments {
		l := seg.Length()
		switch seg.Kind {
		case MoveCut:
			st.CuttingDistance += l
			if feedRate > 0 {
				st.EstimatedTime += 60 * l / feedRate
			}
		case MovePlunge:
			st.PlungeDistance += l
			if plungeRate > 0 {
				st.EstimatedTime += 60 * l / plungeRate
			}
		default:
			st.RapidDistance += l
			st.EstimatedTime += 60 * l / NominalRapidRate
		}
	}
	return st
}

// VisualBuffer flattens the path into a numeric buffer for preview
// rendering: X, Y, Z, move-kind code per point.
func VisualBuffer(p *Path) []float64 {
	var n int
	for _, seg := range p.Segments {
		n += len(seg.Points)
	}

	buf := make([]float64, 0, n*4)
	for _, seg := range p.Segments {
		for _, pt := range seg.Points {
			buf = append(buf, pt.X, pt.Y, pt.Z, float64(seg.Kind))
		}
	}
	return buf
}
