package pathfinder

import (
	"context"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/drone"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/obstacle"
)

func newTestSimulator(t *testing.T, maxX, maxY int, rects ...obstacle.Rect) *Simulator {
	t.Helper()
	s, err := New(maxX, maxY, obstacle.NewSet(rects...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func assertValidPath(t *testing.T, s *Simulator, path grid.Path, start, goal grid.Cell) {
	t.Helper()
	if len(path) == 0 {
		t.Fatal("empty path")
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Fatalf("path runs %v -> %v, want %v -> %v", path[0], path[len(path)-1], start, goal)
	}
	for i, c := range path {
		if !s.Traversable(c.X, c.Y) {
			t.Fatalf("path cell %d %v is not traversable", i, c)
		}
		if i > 0 && path[i-1].Manhattan(c) != 1 {
			t.Fatalf("cells %v and %v are not 4-adjacent", path[i-1], c)
		}
	}
}

func TestNewValidatesExtentsAndStart(t *testing.T) {
	_, err := New(0, 5, nil, nil)
	var cfgErr *grid.InvalidConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected InvalidConfigError, got %v", err)
	}

	tracker := drone.NewTracker(drone.State{Position: grid.Cell{X: 7, Y: 0}, BatteryPct: 100})
	_, err = New(5, 5, nil, tracker)
	var oob *grid.OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("expected OutOfBoundsError, got %v", err)
	}
}

func TestNeighborsOrderAndFiltering(t *testing.T) {
	s := newTestSimulator(t, 3, 3, obstacle.NewRect(1, 2, 1, 2))

	got := s.Neighbors(1, 1)
	want := []grid.Cell{{X: 2, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Neighbors(1,1) = %v, want %v", got, want)
	}

	got = s.Neighbors(0, 0)
	want = []grid.Cell{{X: 1, Y: 0}, {X: 0, Y: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Neighbors(0,0) = %v, want %v", got, want)
	}
}

func TestPlanPathSameCell(t *testing.T) {
	s := newTestSimulator(t, 5, 5, obstacle.NewRect(2, 2, 2, 2))

	for _, c := range []grid.Cell{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: -3, Y: 9}} {
		path, ok := s.PlanPath(c, c)
		if !ok || !reflect.DeepEqual(path, grid.Path{c}) {
			t.Fatalf("PlanPath(%v,%v) = %v, %v", c, c, path, ok)
		}
	}
}

func TestPlanPathOpenGrid(t *testing.T) {
	s := newTestSimulator(t, 10, 10)
	start, goal := grid.Cell{X: 0, Y: 0}, grid.Cell{X: 9, Y: 9}

	path, ok := s.PlanPath(start, goal)
	if !ok {
		t.Fatal("expected a path")
	}
	if len(path) != 19 || path.Steps() != 18 {
		t.Fatalf("path length %d, want 19", len(path))
	}
	assertValidPath(t, s, path, start, goal)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		a := grid.Cell{X: rng.Intn(10), Y: rng.Intn(10)}
		b := grid.Cell{X: rng.Intn(10), Y: rng.Intn(10)}
		path, ok := s.PlanPath(a, b)
		if !ok || len(path) != 1+a.Manhattan(b) {
			t.Fatalf("PlanPath(%v,%v) = %d cells, ok=%v", a, b, len(path), ok)
		}
		assertValidPath(t, s, path, a, b)
	}
}

func TestPlanPathTieBreakingIsPinned(t *testing.T) {
	s := newTestSimulator(t, 3, 3)

	path, ok := s.PlanPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 2, Y: 2})
	want := grid.Path{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}}
	if !ok || !reflect.DeepEqual(path, want) {
		t.Fatalf("got %v, want %v", path, want)
	}

	for i := 0; i < 10; i++ {
		again, _ := s.PlanPath(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 2, Y: 2})
		if !reflect.DeepEqual(again, path) {
			t.Fatalf("repeated search returned %v", again)
		}
	}
}

func TestPlanPathWallIsUnreachable(t *testing.T) {
	s := newTestSimulator(t, 5, 5, obstacle.NewRect(2, 0, 2, 4))

	path, ok := s.PlanPath(grid.Cell{X: 0, Y: 2}, grid.Cell{X: 4, Y: 2})
	if ok || path != nil {
		t.Fatalf("expected unreachable, got %v", path)
	}

	res := s.Search(context.Background(), grid.Cell{X: 0, Y: 2}, grid.Cell{X: 4, Y: 2}, Budget{})
	if res.Outcome != Unreachable || res.Err != nil {
		t.Fatalf("expected clean unreachable result, got %+v", res)
	}
	// every cell left of the wall gets expanded before giving up
	if res.Expanded != 10 {
		t.Fatalf("expanded %d cells, want 10", res.Expanded)
	}
}

func TestPlanPathAroundObstacle(t *testing.T) {
	s := newTestSimulator(t, 5, 5, obstacle.NewRect(2, 0, 2, 3))
	start, goal := grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 0}

	path, ok := s.PlanPath(start, goal)
	if !ok {
		t.Fatal("expected a path around the obstacle")
	}
	assertValidPath(t, s, path, start, goal)
	if path.Steps() != 12 {
		t.Fatalf("expected 12 steps around the wall, got %d", path.Steps())
	}
}

func TestPlanPathIllegalEndpoints(t *testing.T) {
	s := newTestSimulator(t, 5, 5, obstacle.NewRect(4, 4, 4, 4), obstacle.NewRect(0, 4, 0, 4))

	cases := []struct {
		name        string
		start, goal grid.Cell
	}{
		{"blocked goal", grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 4}},
		{"blocked start", grid.Cell{X: 0, Y: 4}, grid.Cell{X: 0, Y: 0}},
		{"start out of bounds", grid.Cell{X: -1, Y: 0}, grid.Cell{X: 2, Y: 2}},
		{"goal out of bounds", grid.Cell{X: 0, Y: 0}, grid.Cell{X: 5, Y: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if path, ok := s.PlanPath(tc.start, tc.goal); ok {
				t.Fatalf("expected unreachable, got %v", path)
			}
		})
	}
}

func TestSearchBudgetAborts(t *testing.T) {
	s := newTestSimulator(t, 50, 50)
	start, goal := grid.Cell{X: 0, Y: 0}, grid.Cell{X: 49, Y: 49}

	res := s.Search(context.Background(), start, goal, Budget{MaxExpansions: 5})
	if res.Outcome != Aborted || res.Err != ErrBudgetExhausted || res.Expanded != 5 {
		t.Fatalf("expected budget abort after 5 expansions, got %+v", res)
	}
	if res.Path != nil {
		t.Fatal("aborted search must not return a path")
	}

	res = s.Search(context.Background(), start, goal, Budget{MaxExpansions: 100000})
	if res.Outcome != Found || len(res.Path) != 99 {
		t.Fatalf("expected found path with generous budget, got %v (%d cells)", res.Outcome, len(res.Path))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = s.Search(ctx, start, goal, Budget{})
	if res.Outcome != Aborted || res.Err != context.Canceled {
		t.Fatalf("expected cancellation abort, got %+v", res)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Found: "found", Unreachable: "unreachable", Aborted: "aborted", Outcome(42): "unknown"} {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}

// bfsLength is an independent shortest path length, -1 when unreachable.
func bfsLength(s *Simulator, start, goal grid.Cell) int {
	if start == goal {
		return 1
	}
	if !s.Traversable(start.X, start.Y) || !s.Traversable(goal.X, goal.Y) {
		return -1
	}
	dist := map[grid.Cell]int{start: 1}
	queue := []grid.Cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range s.Neighbors(cur.X, cur.Y) {
			if _, seen := dist[n]; seen {
				continue
			}
			dist[n] = dist[cur] + 1
			if n == goal {
				return dist[n]
			}
			queue = append(queue, n)
		}
	}
	return -1
}

func TestPlanPathMatchesBreadthFirstSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 200; round++ {
		maxX, maxY := 2+rng.Intn(14), 2+rng.Intn(14)
		rects := make([]obstacle.Rect, 0)
		for i := 0; i < rng.Intn(8); i++ {
			x, y := rng.Intn(maxX), rng.Intn(maxY)
			rects = append(rects, obstacle.NewRect(x, y, x+rng.Intn(4), y+rng.Intn(4)))
		}
		s := newTestSimulator(t, maxX, maxY, rects...)

		start := grid.Cell{X: rng.Intn(maxX), Y: rng.Intn(maxY)}
		goal := grid.Cell{X: rng.Intn(maxX), Y: rng.Intn(maxY)}

		want := bfsLength(s, start, goal)
		path, ok := s.PlanPath(start, goal)
		if want == -1 {
			if ok {
				t.Fatalf("round %d: BFS found no path but A* returned %v", round, path)
			}
			continue
		}
		if !ok {
			t.Fatalf("round %d: A* found no path from %v to %v, BFS length %d", round, start, goal, want)
		}
		if len(path) != want {
			t.Fatalf("round %d: A* length %d, BFS length %d", round, len(path), want)
		}
		if start != goal {
			assertValidPath(t, s, path, start, goal)
		}
	}
}

func TestStartReadsDronePosition(t *testing.T) {
	tracker := drone.NewTracker(drone.DefaultState())
	s, err := New(10, 10, obstacle.NewIndex(4, obstacle.NewRect(5, 0, 5, 8)), tracker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tracker.MoveTo(grid.Cell{X: 3, Y: 3})
	if s.Start() != (grid.Cell{X: 3, Y: 3}) {
		t.Fatalf("Start() = %v", s.Start())
	}

	path, ok := s.PlanPath(s.Start(), grid.Cell{X: 7, Y: 3})
	if !ok {
		t.Fatal("expected path around indexed wall")
	}
	assertValidPath(t, s, path, grid.Cell{X: 3, Y: 3}, grid.Cell{X: 7, Y: 3})
	if tracker.Position() != (grid.Cell{X: 3, Y: 3}) {
		t.Fatal("search must not move the drone")
	}
}
