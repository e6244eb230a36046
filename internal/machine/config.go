// Package machine holds the immutable per-run configuration: cutting
// tool, machine and stock parameters, and the origin-anchor vocabulary.
// Every pipeline invocation receives a complete snapshot of these
// structs; nothing here is global or mutable.
package machine

import (
	"fmt"
	"math"
)

// ToolKind identifies the cutting tip geometry.
type ToolKind int

const (
	// ToolFlat is a flat (square) end mill.
	ToolFlat ToolKind = iota
	// ToolBall is a ball-nose end mill.
	ToolBall
	// ToolV is a V-engraving bit.
	ToolV
)

func (k ToolKind) String() string {
	switch k {
	case ToolFlat:
		return "flat"
	case ToolBall:
		return "ball"
	case ToolV:
		return "v-bit"
	default:
		return "unknown"
	}
}

// ParseToolKind maps a configuration string to a ToolKind.
func ParseToolKind(s string) (ToolKind, error) {
	switch s {
	case "flat", "endmill":
		return ToolFlat, nil
	case "ball", "ballnose":
		return ToolBall, nil
	case "v", "vbit", "v-bit":
		return ToolV, nil
	}
	return 0, fmt.Errorf("unrecognized tool kind %q", s)
}

// ToolConfig describes the cutting tool for one run.
type ToolConfig struct {
	Kind         ToolKind
	Diameter     float64 // mm
	VAngle       float64 // degrees, full included angle, V tools only
	SpindleSpeed float64 // rpm
	FeedRate     float64 // mm/min
	PlungeRate   float64 // mm/min
}

// Radius returns the tool radius.
func (t ToolConfig) Radius() float64 {
	return t.Diameter / 2
}

// VHalfAngle returns the V tool's half angle in radians.
func (t ToolConfig) VHalfAngle() float64 {
	return t.VAngle / 2 * math.Pi / 180
}

// DefaultTool returns a common 3mm flat end mill setup.
func DefaultTool() ToolConfig {
	return ToolConfig{
		Kind:         ToolFlat,
		Diameter:     3,
		SpindleSpeed: 12000,
		FeedRate:     800,
		PlungeRate:   300,
	}
}

// MachineConfig describes the machine for one run.
type MachineConfig struct {
	SafeZ   float64 // rapid clearance above stock, mm
	OriginX float64 // added to every emitted X, mm
	OriginY float64 // added to every emitted Y, mm
}

// DefaultMachine returns a machine with 5mm clearance and the origin at
// the stock's front-left corner.
func DefaultMachine() MachineConfig {
	return MachineConfig{SafeZ: 5}
}

// StockConfig describes the stock blank for one run.
type StockConfig struct {
	Width     float64 // X extent, mm
	Height    float64 // Y extent, mm
	Thickness float64 // Z extent, mm
}

// DefaultStock returns a 200x200x10mm blank.
func DefaultStock() StockConfig {
	return StockConfig{Width: 200, Height: 200, Thickness: 10}
}

// Origin anchor names. The vocabulary is the nine positions
// {front,center,back} x {left,center,right}; "center" alone is the
// vertical-center row's middle anchor.
const (
	OriginFrontLeft   = "front-left"
	OriginFrontCenter = "front-center"
	OriginFrontRight  = "front-right"
	OriginCenterLeft  = "center-left"
	OriginCenter      = "center"
	OriginCenterRight = "center-right"
	OriginBackLeft    = "back-left"
	OriginBackCenter  = "back-center"
	OriginBackRight   = "back-right"
)

// OriginOffset maps an origin anchor name and stock dimensions to the
// X/Y offsets added to every emitted coordinate: X is 0, -width/2 or
// -width for left, center and right anchors; Y is 0, -height/2 or
// -height for front, center-row and back anchors. Unknown names are a
// malformed-input error.
func OriginOffset(anchor string, width, height float64) (float64, float64, error) {
	var x, y float64

	switch anchor {
	case OriginFrontLeft, OriginCenterLeft, OriginBackLeft:
		x = 0
	case OriginFrontCenter, OriginCenter, OriginBackCenter:
		x = -width / 2
	case OriginFrontRight, OriginCenterRight, OriginBackRight:
		x = -width
	default:
		return 0, 0, fmt.Errorf("unrecognized origin anchor %q", anchor)
	}

	switch anchor {
	case OriginFrontLeft, OriginFrontCenter, OriginFrontRight:
		y = 0
	case OriginCenterLeft, OriginCenter, OriginCenterRight:
		y = -height / 2
	case OriginBackLeft, OriginBackCenter, OriginBackRight:
		y = -height
	}

	return x, y, nil
}
