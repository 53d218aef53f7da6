package grid

import (
	"testing"

	"github.com/warebots/fleetsim/core/model"
)

func assertContiguous(t *testing.T, start model.Position, path []model.Position) {
	t.Helper()
	prev := start
	for i, p := range path {
		if prev.Manhattan(p) != 1 {
			t.Fatalf("step %d: (%d, %d) -> (%d, %d) is not adjacent", i, prev.X, prev.Y, p.X, p.Y)
		}
		prev = p
	}
}

func TestFindPathStraightLine(t *testing.T) {
	pf := NewPathfinder(New())
	start := model.Position{X: 0, Y: 0}
	goal := model.Position{X: 3, Y: 0}

	path := pf.FindPath(start, goal, nil)
	if len(path) != 3 {
		t.Fatalf("expected 3 steps, got %d: %v", len(path), path)
	}
	if path[0].Equal(start) {
		t.Fatalf("path must exclude the start cell")
	}
	if !path[len(path)-1].Equal(goal) {
		t.Fatalf("path must end at the goal, got %v", path[len(path)-1])
	}
	assertContiguous(t, start, path)
}

func TestFindPathAvoidsObstacles(t *testing.T) {
	g := New()
	pf := NewPathfinder(g)
	start := model.Position{X: 5, Y: 3}
	goal := model.Position{X: 8, Y: 3}

	// (6,3) and (7,3) are shelf blocks, the direct row is blocked.
	path := pf.FindPath(start, goal, nil)
	for _, p := range path {
		if !g.IsWalkable(p) {
			t.Fatalf("path crosses obstacle (%d, %d)", p.X, p.Y)
		}
	}
	if !path[len(path)-1].Equal(goal) {
		t.Fatalf("path must end at the goal")
	}
	assertContiguous(t, start, path)
	if len(path) <= 3 {
		t.Fatalf("detour must be longer than the blocked direct route, got %d steps", len(path))
	}
}

func TestFindPathSameStartGoal(t *testing.T) {
	pf := NewPathfinder(New())
	p := model.Position{X: 4, Y: 4}
	path := pf.FindPath(p, p, nil)
	if len(path) != 1 || !path[0].Equal(p) {
		t.Fatalf("expected single-element path, got %v", path)
	}
}

func TestFindPathTransientBlockage(t *testing.T) {
	pf := NewPathfinder(New())
	start := model.Position{X: 0, Y: 0}
	goal := model.Position{X: 2, Y: 0}
	blocked := []model.Position{{X: 1, Y: 0}}

	path := pf.FindPath(start, goal, blocked)
	for _, p := range path {
		if p.Equal(blocked[0]) {
			t.Fatalf("path crosses blocked cell (%d, %d)", p.X, p.Y)
		}
	}
	assertContiguous(t, start, path)
}

func TestFindPathBlockedGoalStillReachable(t *testing.T) {
	pf := NewPathfinder(New())
	start := model.Position{X: 0, Y: 0}
	goal := model.Position{X: 2, Y: 0}

	// Blocking the goal itself must not prevent approaching it.
	path := pf.FindPath(start, goal, []model.Position{goal})
	if !path[len(path)-1].Equal(goal) {
		t.Fatalf("expected path to reach blocked goal, got %v", path)
	}
}

func TestFindPathNoRouteFallback(t *testing.T) {
	// Wall off column 1 completely so the left edge is unreachable.
	var wall []model.Position
	for y := 0; y < Height; y++ {
		wall = append(wall, model.Position{X: 1, Y: y})
	}
	pf := NewPathfinder(NewWithObstacles(wall))

	start := model.Position{X: 0, Y: 0}
	goal := model.Position{X: 5, Y: 0}
	path := pf.FindPath(start, goal, nil)
	if len(path) != 2 || !path[0].Equal(start) || !path[1].Equal(goal) {
		t.Fatalf("expected [start, goal] fallback, got %v", path)
	}
}

func TestFindPathIsShortest(t *testing.T) {
	pf := NewPathfinder(New())
	start := model.Position{X: 2, Y: 2}
	goal := model.Position{X: 2, Y: 8}
	path := pf.FindPath(start, goal, nil)
	// Column 2 is free of obstacles, so the shortest path length equals the
	// Manhattan distance.
	if len(path) != start.Manhattan(goal) {
		t.Fatalf("expected %d steps, got %d", start.Manhattan(goal), len(path))
	}
}
