package grid

import "math"

// Approximate length of one degree of latitude.
const FeetPerDegLat = 364000.0

// Config describes the field: its extents in cells, the physical size of a
// cell edge and where the grid origin sits on the earth.
//
// OrientationDeg rotates the grid's local axes counter-clockwise from
// east/north. The same convention is used everywhere in the module.
type Config struct {
	MaxX           int     `yaml:"max_x" json:"max_x"`
	MaxY           int     `yaml:"max_y" json:"max_y"`
	FeetPerCell    float64 `yaml:"feet_per_cell" json:"feet_per_cell"`
	OriginLat      float64 `yaml:"origin_lat" json:"origin_lat"`
	OriginLon      float64 `yaml:"origin_lon" json:"origin_lon"`
	OrientationDeg float64 `yaml:"orientation_deg" json:"orientation_deg"`
}

func DefaultConfig() Config {
	return Config{
		MaxX:           4096,
		MaxY:           4096,
		FeetPerCell:    1.0,
		OriginLat:      23.8103,
		OriginLon:      90.4125,
		OrientationDeg: 0,
	}
}

func (c Config) Validate() error {
	if c.MaxX <= 0 {
		return &InvalidConfigError{Field: "max_x", Value: float64(c.MaxX)}
	}
	if c.MaxY <= 0 {
		return &InvalidConfigError{Field: "max_y", Value: float64(c.MaxY)}
	}
	if !(c.FeetPerCell > 0) {
		return &InvalidConfigError{Field: "feet_per_cell", Value: c.FeetPerCell}
	}
	return nil
}

type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Path is an ordered list of cells from start to goal inclusive.
type Path []Cell

// Steps is the number of moves along the path.
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Target is a bounds-checked cell together with its geodetic center.
type Target struct {
	Cell Cell
	Geo  Geo
}

// Grid maps cells to geodetic coordinates. It is immutable and safe for
// concurrent use.
type Grid struct {
	cfg Config
}

func New(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Grid{cfg}, nil
}

func (g *Grid) Config() Config {
	return g.cfg
}

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cfg.MaxX && y >= 0 && y < g.cfg.MaxY
}

// CellCenterGeo returns the latitude/longitude of the center of cell (x, y).
// Longitude is scaled by the cosine of the cell latitude. The zero-divisor
// fallback to the origin longitude only guards an exact zero, which
// math.Cos never returns for a latitude of 90 degrees in float64, so near
// the poles the longitude offset grows without bound instead.
func (g *Grid) CellCenterGeo(x, y int) (float64, float64) {
	dx := (float64(x) + 0.5) * g.cfg.FeetPerCell
	dy := (float64(y) + 0.5) * g.cfg.FeetPerCell

	theta := g.cfg.OrientationDeg * (math.Pi / 180)
	sin, cos := math.Sincos(theta)
	east := dx*cos - dy*sin
	north := dx*sin + dy*cos

	lat := g.cfg.OriginLat + north/FeetPerDegLat
	feetPerDegLon := math.Cos(lat*(math.Pi/180)) * FeetPerDegLat
	if feetPerDegLon == 0 {
		return lat, g.cfg.OriginLon
	}

	return lat, g.cfg.OriginLon + east/feetPerDegLon
}

// Resolve validates the cell against the grid extents and computes its
// geodetic center.
func (g *Grid) Resolve(x, y int) (Target, error) {
	if !g.InBounds(x, y) {
		return Target{}, &OutOfBoundsError{X: x, Y: y, MaxX: g.cfg.MaxX, MaxY: g.cfg.MaxY}
	}
	lat, lon := g.CellCenterGeo(x, y)
	return Target{Cell{x, y}, Geo{lat, lon}}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
