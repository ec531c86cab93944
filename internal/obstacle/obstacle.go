// Package obstacle models the static blocked regions of the field.
//
// Obstacle sets are immutable once built. To change obstacles, build a new
// set and hand it to a new pathfinder.
package obstacle

// Blocker answers point-in-obstacle queries.
type Blocker interface {
	IsBlocked(x, y int) bool
}

// Rect is an axis-aligned rectangle of cells with inclusive corners.
type Rect struct {
	X1 int `yaml:"x1" json:"x1"`
	Y1 int `yaml:"y1" json:"y1"`
	X2 int `yaml:"x2" json:"x2"`
	Y2 int `yaml:"y2" json:"y2"`
}

// NewRect orders the corners so that X1 <= X2 and Y1 <= Y2.
func NewRect(x1, y1, x2, y2 int) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{x1, y1, x2, y2}
}

func (r Rect) Normalized() Rect {
	return NewRect(r.X1, r.Y1, r.X2, r.Y2)
}

func (r Rect) Contains(x, y int) bool {
	return r.X1 <= x && x <= r.X2 && r.Y1 <= y && y <= r.Y2
}

// Set is a linear-scan obstacle model. Lookups are O(n) in the number of
// rectangles, fine for a handful of obstacles; use Index beyond that.
type Set struct {
	rects []Rect
}

func NewSet(rects ...Rect) *Set {
	s := &Set{make([]Rect, 0, len(rects))}
	for _, r := range rects {
		s.rects = append(s.rects, r.Normalized())
	}
	return s
}

func (s *Set) IsBlocked(x, y int) bool {
	if s == nil {
		return false
	}
	for _, r := range s.rects {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

func (s *Set) Rects() []Rect {
	out := make([]Rect, len(s.rects))
	copy(out, s.rects)
	return out
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rects)
}
