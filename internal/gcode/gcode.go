// Package gcode serializes toolpaths as G-code for grbl-class
// routers. Emission is modal: axis and feed words are written only
// when they change, and motion lines that would not move any axis are
// suppressed entirely.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"router-cam/internal/arcfit"
	"router-cam/internal/machine"
	"router-cam/internal/toolpath"
	"router-cam/pkg/geometry"
)

// arcFitMinPoints is the shortest cut segment worth running through
// the arc fitter.
const arcFitMinPoints = 5

// Options controls program framing and arc compression.
type Options struct {
	// Comment is written on the first line of the program.
	Comment string
	// FitArcs replaces arc-shaped runs in cut segments with G2/G3.
	FitArcs bool
	// Arc holds the fitter bounds; zero means arcfit.DefaultOptions.
	Arc arcfit.Options
}

// Generate serializes the toolpath. The machine origin offsets are
// added to every emitted X and Y; Z is passed through unchanged.
func Generate(tp *toolpath.Path, tool machine.ToolConfig, mach machine.MachineConfig, opt Options) string {
	if opt.FitArcs && opt.Arc == (arcfit.Options{}) {
		opt.Arc = arcfit.DefaultOptions()
	}

	e := &emitter{mach: mach}
	e.x, e.y, e.z, e.f = math.NaN(), math.NaN(), math.NaN(), math.NaN()

	if opt.Comment != "" {
		e.comment(opt.Comment)
	}
	e.code("G90")
	e.code("G21")
	e.code(fmt.Sprintf("M3 S%.0f", tool.SpindleSpeed))
	e.code(fmt.Sprintf("G0 Z%.3f", quant(mach.SafeZ)))
	e.z = quant(mach.SafeZ)

	for _, seg := range tp.Segments {
		switch seg.Kind {
		case toolpath.MoveRapid, toolpath.MoveRetract:
			for _, p := range seg.Points {
				e.linear("G0", p, 0)
			}
		case toolpath.MovePlunge:
			for _, p := range seg.Points {
				e.linear("G1", p, tool.PlungeRate)
			}
		case toolpath.MoveCut:
			e.cut(seg.Points, tool.FeedRate, opt)
		}
	}

	if z := quant(mach.SafeZ); z != e.z {
		e.code(fmt.Sprintf("G0 Z%.3f", z))
		e.z = z
	}
	if e.x != 0 || e.y != 0 {
		e.code("G0 X0.000 Y0.000")
		e.x, e.y = 0, 0
	}
	e.code("M5")
	e.code("M2")
	return e.b.String()
}

// cut emits a cutting segment, optionally compressing it with the arc
// fitter. The segment's first point matches the current position and
// is dropped by modal suppression.
func (e *emitter) cut(pts []geometry.Point3D, feed float64, opt Options) {
	if !opt.FitArcs || len(pts) < arcFitMinPoints {
		for _, p := range pts {
			e.linear("G1", p, feed)
		}
		return
	}

	e.linear("G1", pts[0], feed)
	for _, el := range arcfit.Fit(pts, opt.Arc) {
		if el.Kind == arcfit.ElemLine {
			e.linear("G1", el.End, feed)
			continue
		}
		e.arc(el, feed)
	}
}

type emitter struct {
	b    strings.Builder
	mach machine.MachineConfig

	x, y, z, f float64
}

// quant snaps a coordinate to the 0.001mm output resolution, so that
// sub-half-micron jitter cannot produce distinct motion lines.
func quant(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func (e *emitter) comment(s string) {
	fmt.Fprintf(&e.b, "; %s\n", s)
}

func (e *emitter) code(s string) {
	e.b.WriteString(s)
	e.b.WriteByte('\n')
}

// linear emits a G0/G1 with only the axis words that change. A move
// that changes no axis is suppressed.
func (e *emitter) linear(cmd string, p geometry.Point3D, feed float64) {
	x := quant(p.X + e.mach.OriginX)
	y := quant(p.Y + e.mach.OriginY)
	z := quant(p.Z)

	var words strings.Builder
	if x != e.x {
		fmt.Fprintf(&words, " X%.3f", x)
	}
	if y != e.y {
		fmt.Fprintf(&words, " Y%.3f", y)
	}
	if z != e.z {
		fmt.Fprintf(&words, " Z%.3f", z)
	}
	if words.Len() == 0 {
		return
	}

	e.x, e.y, e.z = x, y, z
	if feed > 0 && feed != e.f {
		fmt.Fprintf(&words, " F%.0f", feed)
		e.f = feed
	}
	e.code(cmd + words.String())
}

// arc emits a G2 (clockwise) or G3 with I/J center offsets relative to
// the current position.
func (e *emitter) arc(el arcfit.Element, feed float64) {
	cmd := "G3"
	if el.Clockwise {
		cmd = "G2"
	}

	x := quant(el.End.X + e.mach.OriginX)
	y := quant(el.End.Y + e.mach.OriginY)

	var words strings.Builder
	fmt.Fprintf(&words, " X%.3f Y%.3f", x, y)
	fmt.Fprintf(&words, " I%.3f J%.3f", quant(el.CenterOffset.X), quant(el.CenterOffset.Y))

	e.x, e.y = x, y
	if feed > 0 && feed != e.f {
		fmt.Fprintf(&words, " F%.0f", feed)
		e.f = feed
	}
	e.code(cmd + words.String())
}
