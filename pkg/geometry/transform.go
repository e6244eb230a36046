package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Rotation returns a rotation transform around the origin.
func Rotation(radians float64) AffineTransform {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return AffineTransform{A: cos, B: -sin, C: sin, D: cos}
}

// Scaling returns a scaling transform.
func Scaling(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyAll applies the transform to every point of a slice, returning
// a new slice.
func (t AffineTransform) ApplyAll(points []Point2D) []Point2D {
	out := make([]Point2D, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// Compose returns this transform composed with another (this * other).
// The composed transform applies other first, then t.
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}

	invDet := 1.0 / det
	return AffineTransform{
		A:  t.D * invDet,
		B:  -t.B * invDet,
		TX: (t.B*t.TY - t.D*t.TX) * invDet,
		C:  -t.C * invDet,
		D:  t.A * invDet,
		TY: (t.C*t.TX - t.A*t.TY) * invDet,
	}, true
}

// ParseTransform parses an SVG-style transform attribute string such as
// "translate(10,20) scale(2) rotate(45)" into a single AffineTransform.
// Functions compose left to right: the leftmost function is applied last,
// so "translate(10,0) scale(2)" maps (5,0) to (20,0).
//
// Supported functions: translate(tx[,ty]), scale(sx[,sy]),
// rotate(deg[,cx,cy]), matrix(a,b,c,d,e,f). Anything else is an error.
func ParseTransform(s string) (AffineTransform, error) {
	result := Identity()
	rest := strings.TrimSpace(s)

	for rest != "" {
		open := strings.IndexByte(rest, '(')
		close := strings.IndexByte(rest, ')')
		if open < 0 || close < open {
			return AffineTransform{}, fmt.Errorf("malformed transform %q", s)
		}

		name := strings.TrimSpace(rest[:open])
		args, err := parseTransformArgs(rest[open+1 : close])
		if err != nil {
			return AffineTransform{}, fmt.Errorf("transform %s: %v", name, err)
		}

		var t AffineTransform
		switch name {
		case "translate":
			switch len(args) {
			case 1:
				t = Translation(args[0], 0)
			case 2:
				t = Translation(args[0], args[1])
			default:
				return AffineTransform{}, fmt.Errorf("translate expects 1 or 2 arguments, got %d", len(args))
			}
		case "scale":
			switch len(args) {
			case 1:
				t = Scaling(args[0], args[0])
			case 2:
				t = Scaling(args[0], args[1])
			default:
				return AffineTransform{}, fmt.Errorf("scale expects 1 or 2 arguments, got %d", len(args))
			}
		case "rotate":
			switch len(args) {
			case 1:
				t = Rotation(args[0] * math.Pi / 180)
			case 3:
				// rotate about (cx,cy): translate there, rotate, translate back
				t = Translation(args[1], args[2]).
					Compose(Rotation(args[0] * math.Pi / 180)).
					Compose(Translation(-args[1], -args[2]))
			default:
				return AffineTransform{}, fmt.Errorf("rotate expects 1 or 3 arguments, got %d", len(args))
			}
		case "matrix":
			if len(args) != 6 {
				return AffineTransform{}, fmt.Errorf("matrix expects 6 arguments, got %d", len(args))
			}
			// SVG matrix(a,b,c,d,e,f) is column-major
			t = AffineTransform{
				A: args[0], B: args[2], TX: args[4],
				C: args[1], D: args[3], TY: args[5],
			}
		default:
			return AffineTransform{}, fmt.Errorf("unrecognized transform function %q", name)
		}

		result = result.Compose(t)
		rest = strings.TrimSpace(rest[close+1:])
		rest = strings.TrimPrefix(rest, ",")
		rest = strings.TrimSpace(rest)
	}

	return result, nil
}

// parseTransformArgs splits a comma/whitespace separated argument list.
func parseTransformArgs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	args := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite number %q", f)
		}
		args = append(args, v)
	}
	return args, nil
}
