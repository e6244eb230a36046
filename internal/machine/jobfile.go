package machine

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"router-cam/pkg/geometry"
)

// JobFile is the on-disk TOML description of a complete vector job:
// tool, machine and stock parameters plus the paths to cut. The path
// points are supplied by an external reader; transforms are already
// applied.
type JobFile struct {
	Tool    ToolFileSection    `toml:"tool"`
	Machine MachineFileSection `toml:"machine"`
	Stock   StockFileSection   `toml:"stock"`
	Cut     CutFileSection     `toml:"cut"`
	Paths   []PathFileSection  `toml:"paths"`
}

// ToolFileSection mirrors ToolConfig with string tool kinds.
type ToolFileSection struct {
	Kind         string  `toml:"kind"`
	Diameter     float64 `toml:"diameter"`
	VAngle       float64 `toml:"v_angle"`
	SpindleSpeed float64 `toml:"spindle_speed"`
	FeedRate     float64 `toml:"feed_rate"`
	PlungeRate   float64 `toml:"plunge_rate"`
}

// MachineFileSection selects the origin by anchor name.
type MachineFileSection struct {
	SafeZ  float64 `toml:"safe_z"`
	Origin string  `toml:"origin"`
}

// StockFileSection mirrors StockConfig.
type StockFileSection struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	Thickness float64 `toml:"thickness"`
}

// CutFileSection holds per-job cutting parameters.
type CutFileSection struct {
	Depth float64 `toml:"depth"`
	// Side is "none", "left" or "right" tool compensation.
	Side string `toml:"side"`
}

// PathFileSection is one polyline: a list of [x, y] pairs.
type PathFileSection struct {
	Points [][]float64 `toml:"points"`
	Closed bool        `toml:"closed"`
}

// Job is the decoded, validated form of a JobFile.
type Job struct {
	Tool    ToolConfig
	Machine MachineConfig
	Stock   StockConfig
	Depth   float64
	Side    string
	Paths   []geometry.Polyline
}

// LoadJob reads and validates a TOML job file.
func LoadJob(path string) (*Job, error) {
	var jf JobFile
	if _, err := toml.DecodeFile(path, &jf); err != nil {
		return nil, fmt.Errorf("decode %s: %v", path, err)
	}
	return jf.ToJob()
}

// ToJob validates the file sections and builds the run configuration.
func (jf JobFile) ToJob() (*Job, error) {
	tool := DefaultTool()
	if jf.Tool.Kind != "" {
		kind, err := ParseToolKind(jf.Tool.Kind)
		if err != nil {
			return nil, err
		}
		tool.Kind = kind
	}
	if jf.Tool.Diameter > 0 {
		tool.Diameter = jf.Tool.Diameter
	}
	if jf.Tool.VAngle > 0 {
		tool.VAngle = jf.Tool.VAngle
	}
	if jf.Tool.SpindleSpeed > 0 {
		tool.SpindleSpeed = jf.Tool.SpindleSpeed
	}
	if jf.Tool.FeedRate > 0 {
		tool.FeedRate = jf.Tool.FeedRate
	}
	if jf.Tool.PlungeRate > 0 {
		tool.PlungeRate = jf.Tool.PlungeRate
	}

	stock := DefaultStock()
	if jf.Stock.Width > 0 {
		stock.Width = jf.Stock.Width
	}
	if jf.Stock.Height > 0 {
		stock.Height = jf.Stock.Height
	}
	if jf.Stock.Thickness > 0 {
		stock.Thickness = jf.Stock.Thickness
	}

	mach := DefaultMachine()
	if jf.Machine.SafeZ > 0 {
		mach.SafeZ = jf.Machine.SafeZ
	}
	if jf.Machine.Origin != "" {
		ox, oy, err := OriginOffset(jf.Machine.Origin, stock.Width, stock.Height)
		if err != nil {
			return nil, err
		}
		mach.OriginX = ox
		mach.OriginY = oy
	}

	if jf.Cut.Depth <= 0 {
		return nil, fmt.Errorf("cut depth must be positive, got %g", jf.Cut.Depth)
	}

	side := jf.Cut.Side
	if side == "" {
		side = "none"
	}
	switch side {
	case "none", "left", "right":
	default:
		return nil, fmt.Errorf("unrecognized compensation side %q", side)
	}

	paths := make([]geometry.Polyline, 0, len(jf.Paths))
	for i, ps := range jf.Paths {
		pts := make([]geometry.Point2D, 0, len(ps.Points))
		for j, xy := range ps.Points {
			if len(xy) != 2 {
				return nil, fmt.Errorf("path %d point %d: expected [x, y], got %d values", i, j, len(xy))
			}
			p := geometry.Point2D{X: xy[0], Y: xy[1]}
			if !p.IsFinite() {
				return nil, fmt.Errorf("path %d point %d: non-finite coordinate", i, j)
			}
			pts = append(pts, p)
		}
		if len(pts) < 2 {
			continue
		}
		if ps.Closed {
			paths = append(paths, geometry.NewClosedPolyline(pts...))
		} else {
			paths = append(paths, geometry.NewPolyline(pts...))
		}
	}

	return &Job{
		Tool:    tool,
		Machine: mach,
		Stock:   stock,
		Depth:   jf.Cut.Depth,
		Side:    side,
		Paths:   paths,
	}, nil
}
