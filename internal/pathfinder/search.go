package pathfinder

import (
	"context"

	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

type Outcome int

const (
	Found Outcome = iota
	Unreachable
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Unreachable:
		return "unreachable"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ErrBudgetExhausted is the abort reason when a search hits its expansion
// limit.
var ErrBudgetExhausted = errors.New("node expansion budget exhausted")

// Budget bounds a search. Zero means no limit.
type Budget struct {
	MaxExpansions int
}

// how many expansions run between context checks
const cancelCheckInterval = 1024

type Result struct {
	Outcome  Outcome
	Path     grid.Path
	Expanded int
	// Err is set only for Aborted and tells why.
	Err error
}

// PlanPath returns the shortest 4-connected path from start to goal. The
// boolean is false when no path exists.
func (s *Simulator) PlanPath(start, goal grid.Cell) (grid.Path, bool) {
	res := s.Search(context.Background(), start, goal, Budget{})
	return res.Path, res.Outcome == Found
}

// Search runs A* with unit step cost and the Manhattan heuristic. It stops
// with Aborted when the budget is spent or ctx is done; that outcome says
// nothing about whether a path exists.
func (s *Simulator) Search(ctx context.Context, start, goal grid.Cell, budget Budget) Result {
	if start == goal {
		return Result{Outcome: Found, Path: grid.Path{start}}
	}
	// An illegal start has no outgoing edges and an illegal goal no
	// incoming ones.
	if !s.Traversable(start.X, start.Y) || !s.Traversable(goal.X, goal.Y) {
		return Result{Outcome: Unreachable}
	}

	open := &frontier{}
	open.push(start, 0, start.Manhattan(goal))
	came := make(map[grid.Cell]grid.Cell)
	gscore := map[grid.Cell]int{start: 0}
	closed := make(map[grid.Cell]struct{})

	expanded := 0
	neighbors := make([]grid.Cell, 0, len(neighborOffsets))
	for open.Len() > 0 {
		cur := open.pop()
		if cur.cell == goal {
			return Result{Outcome: Found, Path: reconstruct(came, goal), Expanded: expanded}
		}
		if _, done := closed[cur.cell]; done {
			continue
		}

		if budget.MaxExpansions > 0 && expanded >= budget.MaxExpansions {
			return Result{Outcome: Aborted, Expanded: expanded, Err: ErrBudgetExhausted}
		}
		if expanded%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Outcome: Aborted, Expanded: expanded, Err: err}
			}
		}

		closed[cur.cell] = struct{}{}
		expanded++

		neighbors = s.appendNeighbors(neighbors[:0], cur.cell)
		for _, n := range neighbors {
			if _, done := closed[n]; done {
				continue
			}
			tentative := gscore[cur.cell] + 1
			if g, seen := gscore[n]; seen && tentative >= g {
				continue
			}
			came[n] = cur.cell
			gscore[n] = tentative
			open.push(n, tentative, tentative+n.Manhattan(goal))
		}
	}

	return Result{Outcome: Unreachable, Expanded: expanded}
}

func reconstruct(came map[grid.Cell]grid.Cell, goal grid.Cell) grid.Path {
	path := grid.Path{goal}
	cur := goal
	for {
		prev, ok := came[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
