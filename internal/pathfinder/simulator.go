// Package pathfinder plans collision-free routes for the simulated drone
// over a 4-connected grid.
package pathfinder

import (
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/drone"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/obstacle"
)

// Neighbor enumeration order: +x, -x, +y, -y. Search tie-breaking depends
// on it, so it must not change.
var neighborOffsets = [4]grid.Cell{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Simulator holds the grid extents, the obstacle model and the drone whose
// position is used as the default search start. Extents and obstacles never
// change after construction; the drone state is only read.
type Simulator struct {
	maxX, maxY int
	obstacles  obstacle.Blocker
	drone      *drone.Tracker
}

func New(maxX, maxY int, obstacles obstacle.Blocker, tracker *drone.Tracker) (*Simulator, error) {
	if maxX <= 0 {
		return nil, &grid.InvalidConfigError{Field: "max_x", Value: float64(maxX)}
	}
	if maxY <= 0 {
		return nil, &grid.InvalidConfigError{Field: "max_y", Value: float64(maxY)}
	}
	if obstacles == nil {
		obstacles = obstacle.NewSet()
	}
	if tracker == nil {
		tracker = drone.NewTracker(drone.DefaultState())
	}

	s := &Simulator{maxX, maxY, obstacles, tracker}
	if pos := tracker.Position(); !s.InBounds(pos.X, pos.Y) {
		return nil, &grid.OutOfBoundsError{X: pos.X, Y: pos.Y, MaxX: maxX, MaxY: maxY}
	}

	return s, nil
}

func (s *Simulator) InBounds(x, y int) bool {
	return x >= 0 && x < s.maxX && y >= 0 && y < s.maxY
}

func (s *Simulator) IsBlocked(x, y int) bool {
	return s.obstacles.IsBlocked(x, y)
}

// Traversable reports whether a cell can be part of a path.
func (s *Simulator) Traversable(x, y int) bool {
	return s.InBounds(x, y) && !s.obstacles.IsBlocked(x, y)
}

// Neighbors returns the traversable cells one unit step away from (x, y) in
// the fixed order +x, -x, +y, -y.
func (s *Simulator) Neighbors(x, y int) []grid.Cell {
	return s.appendNeighbors(make([]grid.Cell, 0, len(neighborOffsets)), grid.Cell{X: x, Y: y})
}

func (s *Simulator) appendNeighbors(dst []grid.Cell, c grid.Cell) []grid.Cell {
	for _, d := range neighborOffsets {
		nx, ny := c.X+d.X, c.Y+d.Y
		if s.Traversable(nx, ny) {
			dst = append(dst, grid.Cell{X: nx, Y: ny})
		}
	}
	return dst
}

// Start is the drone's current cell.
func (s *Simulator) Start() grid.Cell {
	return s.drone.Position()
}

func (s *Simulator) Drone() *drone.Tracker {
	return s.drone
}
