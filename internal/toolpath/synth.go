package toolpath

import (
	"math"

	"router-cam/pkg/geometry"
)

// rampAngle is the descent slope used for ramped plunges, from
// horizontal.
const rampAngle = 3 * math.Pi / 180

// rampLengthFactor gates ramping: the polyline must provide at least
// this multiple of the total Z drop in XY run-up.
const rampLengthFactor = 3

// SynthOptions parameterizes 2D toolpath synthesis.
type SynthOptions struct {
	// Depth is the cut depth below the stock surface, positive mm.
	Depth float64
	// SafeZ is the rapid clearance height above the stock surface.
	SafeZ float64
}

// Synthesize converts ordered polylines into a toolpath: rapid above
// each polyline's first point at safe-Z, plunge (ramped out and back
// along the path when there is room, vertical otherwise), cut the
// whole polyline at constant depth, and retract back to safe-Z.
func Synthesize(paths []geometry.Polyline, opts SynthOptions) *Path {
	tp := &Path{}
	cutZ := -opts.Depth

	for _, pl := range paths {
		if pl.Len() < 2 {
			continue
		}
		appendPolyline(tp, pl, cutZ, opts.SafeZ)
	}
	return tp
}

func appendPolyline(tp *Path, pl geometry.Polyline, cutZ, safeZ float64) {
	first := pl.Start()

	// Rapid to above the entry point.
	tp.Append(Segment{
		Kind: MoveRapid,
		Points: []geometry.Point3D{
			{X: first.X, Y: first.Y, Z: safeZ},
		},
	})

	if canRamp(pl, -cutZ) {
		tp.Append(rampedPlunge(pl, cutZ, safeZ))
	} else {
		// Straight vertical plunge to depth.
		tp.Append(Segment{
			Kind: MovePlunge,
			Points: []geometry.Point3D{
				{X: first.X, Y: first.Y, Z: safeZ},
				{X: first.X, Y: first.Y, Z: cutZ},
			},
		})
	}

	// Either plunge ends at the entry point at depth, so the cut
	// always covers the full polyline.
	cut := Segment{Kind: MoveCut}
	for _, p := range pl.Points {
		cut.Points = append(cut.Points, geometry.Point3D{X: p.X, Y: p.Y, Z: cutZ})
	}
	tp.Append(cut)

	last := pl.End()
	tp.Append(Segment{
		Kind: MoveRetract,
		Points: []geometry.Point3D{
			{X: last.X, Y: last.Y, Z: cutZ},
			{X: last.X, Y: last.Y, Z: safeZ},
		},
	})
}

// canRamp reports whether the polyline is long enough for a ramped
// entry: at least three points and at least rampLengthFactor times the
// total Z drop of XY run.
func canRamp(pl geometry.Polyline, drop float64) bool {
	return pl.Len() >= 3 && drop > 0 && pl.Length() >= rampLengthFactor*drop
}

// rampedPlunge descends along the path at the ramp angle to half depth
// and retraces the same ground back to the entry point, landing there
// at full depth. A path shorter than the ramp wants still ramps over
// the length there is, at a steeper angle.
func rampedPlunge(pl geometry.Polyline, cutZ, safeZ float64) Segment {
	first := pl.Start()
	half := -cutZ / 2
	reach := half / math.Tan(rampAngle)
	if total := pl.Length(); reach > total {
		reach = total
	}

	// Waypoints of the outbound leg with their run distance from the
	// entry point.
	type waypoint struct {
		pt geometry.Point2D
		s  float64
	}
	way := []waypoint{{first, 0}}
	dist := 0.0
	prev := first
	for _, p := range pl.Points[1:] {
		step := p.Distance(prev)
		if dist+step >= reach {
			if step > 0 {
				t := (reach - dist) / step
				way = append(way, waypoint{prev.Add(p.Sub(prev).Scale(t)), reach})
			}
			break
		}
		dist += step
		way = append(way, waypoint{p, dist})
		prev = p
	}

	plunge := Segment{Kind: MovePlunge}
	plunge.Points = append(plunge.Points,
		geometry.Point3D{X: first.X, Y: first.Y, Z: safeZ},
		geometry.Point3D{X: first.X, Y: first.Y, Z: 0},
	)
	for _, w := range way[1:] {
		plunge.Points = append(plunge.Points,
			geometry.Point3D{X: w.pt.X, Y: w.pt.Y, Z: -half * w.s / reach})
	}
	for i := len(way) - 2; i >= 0; i-- {
		w := way[i]
		plunge.Points = append(plunge.Points,
			geometry.Point3D{X: w.pt.X, Y: w.pt.Y, Z: -half - half*(reach-w.s)/reach})
	}
	return plunge
}
