package grid

import (
	"container/heap"

	"github.com/warebots/fleetsim/core/model"
)

// Pathfinder runs A* over a grid. It keeps no state between queries, so it
// is cheap to call every tick with fresh transient blockage.
type Pathfinder struct {
	grid *Grid
}

// NewPathfinder returns a pathfinder over g.
func NewPathfinder(g *Grid) *Pathfinder {
	return &Pathfinder{grid: g}
}

type node struct {
	pos    model.Position
	g, f   int
	parent *node
	index  int
}

type openHeap []*node

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x interface{}) { n := x.(*node); n.index = len(*h); *h = append(*h, n) }
func (h *openHeap) Pop() interface{} {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

var directions = []model.Position{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// FindPath returns the tile sequence from start to goal, goal included and
// start excluded. 4-directional movement with uniform entry cost; the
// Manhattan heuristic keeps the search admissible, so returned paths are
// shortest. Cells in blocked are impassable for this query only, except
// when the blocked cell is the goal itself: a robot may always approach its
// own destination.
//
// If start equals goal a single-element path is returned. If no route
// exists, the degenerate straight line [start, goal] is returned as a
// best-effort fallback; callers must detect non-adjacency if they care.
func (pf *Pathfinder) FindPath(start, goal model.Position, blocked []model.Position) []model.Position {
	if start.Equal(goal) {
		return []model.Position{goal}
	}

	blockedSet := make(map[model.Position]struct{}, len(blocked))
	for _, b := range blocked {
		blockedSet[b] = struct{}{}
	}

	open := &openHeap{}
	heap.Init(open)
	byPos := map[model.Position]*node{}
	closed := map[model.Position]struct{}{}

	startNode := &node{pos: start, g: 0, f: start.Manhattan(goal)}
	heap.Push(open, startNode)
	byPos[start] = startNode

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.pos.Equal(goal) {
			return reconstruct(current)
		}
		closed[current.pos] = struct{}{}

		for _, d := range directions {
			next := model.Position{X: current.pos.X + d.X, Y: current.pos.Y + d.Y}
			if _, ok := closed[next]; ok {
				continue
			}
			if _, ok := blockedSet[next]; ok && !next.Equal(goal) {
				continue
			}
			if !pf.grid.IsWalkable(next) {
				continue
			}
			tentative := current.g + 1
			if existing, ok := byPos[next]; ok {
				if tentative < existing.g {
					existing.g = tentative
					existing.f = tentative + next.Manhattan(goal)
					existing.parent = current
					heap.Fix(open, existing.index)
				}
				continue
			}
			n := &node{pos: next, g: tentative, f: tentative + next.Manhattan(goal), parent: current}
			heap.Push(open, n)
			byPos[next] = n
		}
	}

	// No route; callers treat this as "path not guaranteed walkable".
	return []model.Position{start, goal}
}

// reconstruct walks parents back to the start and returns the path without
// the start cell.
func reconstruct(n *node) []model.Position {
	var rev []model.Position
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur.pos)
	}
	// rev ends at the start; drop it and reverse.
	path := make([]model.Position, 0, len(rev)-1)
	for i := len(rev) - 2; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}
