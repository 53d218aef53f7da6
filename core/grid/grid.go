// Package grid holds the static warehouse floor description and the
// shortest-path search used for robot routing.
package grid

import "github.com/warebots/fleetsim/core/model"

const (
	// Width and Height are the fixed bounds of the warehouse floor.
	Width  = 20
	Height = 15
)

// ChargeZone is the tile robots navigate to for recharging.
var ChargeZone = model.Position{X: 1, Y: 1}

// defaultObstacles are the shelf blocks scattered through the center aisles.
var defaultObstacles = []model.Position{
	{X: 6, Y: 3}, {X: 7, Y: 3},
	{X: 6, Y: 5}, {X: 7, Y: 5},
	{X: 6, Y: 7}, {X: 7, Y: 7},
	{X: 15, Y: 3}, {X: 16, Y: 3},
	{X: 15, Y: 5}, {X: 16, Y: 5},
	{X: 10, Y: 2}, {X: 10, Y: 3},
	{X: 12, Y: 2}, {X: 12, Y: 3},
	{X: 10, Y: 11}, {X: 10, Y: 12},
	{X: 14, Y: 8}, {X: 14, Y: 9},
}

// Grid is the immutable warehouse floor layout. Tiles never change after
// construction; transient blockage is handled per pathfinder query.
type Grid struct {
	tiles     [][]model.TileType
	obstacles []model.Position
	walkable  []model.Position
}

// New builds the default 20x15 layout with the four named zones and the
// standard obstacle set.
func New() *Grid {
	return NewWithObstacles(defaultObstacles)
}

// NewWithObstacles builds the default layout with a custom obstacle set.
func NewWithObstacles(obstacles []model.Position) *Grid {
	g := &Grid{obstacles: append([]model.Position(nil), obstacles...)}
	g.tiles = make([][]model.TileType, Height)
	for y := 0; y < Height; y++ {
		row := make([]model.TileType, Width)
		for x := 0; x < Width; x++ {
			row[x] = zoneTile(model.Position{X: x, Y: y})
		}
		g.tiles[y] = row
	}
	for _, obs := range g.obstacles {
		if g.InBounds(obs) {
			g.tiles[obs.Y][obs.X] = model.TileObstacle
		}
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if g.tiles[y][x] != model.TileObstacle {
				g.walkable = append(g.walkable, model.Position{X: x, Y: y})
			}
		}
	}
	return g
}

func zoneTile(p model.Position) model.TileType {
	switch ZoneFor(p) {
	case model.ZoneA:
		return model.TileZoneA
	case model.ZoneB:
		return model.TileZoneB
	case model.ZoneC:
		return model.TileZoneC
	case model.ZoneD:
		return model.TileZoneD
	default:
		return model.TileFloor
	}
}

// ZoneFor returns the named zone covering p, or ZoneNone.
func ZoneFor(p model.Position) model.Zone {
	switch {
	case p.X >= 0 && p.X <= 3 && p.Y >= 0 && p.Y <= 3:
		return model.ZoneD // charging
	case p.X >= 0 && p.X <= 5 && p.Y >= 10 && p.Y <= 14:
		return model.ZoneA // pickup
	case p.X >= 8 && p.X <= 14 && p.Y >= 4 && p.Y <= 10:
		return model.ZoneB // storage
	case p.X >= 15 && p.X <= 19 && p.Y >= 10 && p.Y <= 14:
		return model.ZoneC // delivery
	default:
		return model.ZoneNone
	}
}

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p model.Position) bool {
	return p.X >= 0 && p.X < Width && p.Y >= 0 && p.Y < Height
}

// Tile returns the tile type at p. Out-of-bounds positions read as obstacles.
func (g *Grid) Tile(p model.Position) model.TileType {
	if !g.InBounds(p) {
		return model.TileObstacle
	}
	return g.tiles[p.Y][p.X]
}

// IsWalkable reports whether a robot may enter p.
func (g *Grid) IsWalkable(p model.Position) bool {
	return g.InBounds(p) && g.tiles[p.Y][p.X] != model.TileObstacle
}

// Walkable returns the precomputed set of non-obstacle tiles.
func (g *Grid) Walkable() []model.Position {
	return g.walkable
}

// Obstacles returns the permanent obstacle set.
func (g *Grid) Obstacles() []model.Position {
	return g.obstacles
}

// Tiles returns a copy of the tile matrix, indexed [y][x].
func (g *Grid) Tiles() [][]model.TileType {
	out := make([][]model.TileType, len(g.tiles))
	for y, row := range g.tiles {
		out[y] = append([]model.TileType(nil), row...)
	}
	return out
}
