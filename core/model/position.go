package model

// Position is a tile coordinate on the warehouse grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan returns the Manhattan distance to other.
func (p Position) Manhattan(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// Equal reports whether both positions reference the same tile.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TileType classifies a grid tile.
type TileType string

const (
	TileFloor    TileType = "FLOOR"
	TileObstacle TileType = "OBSTACLE"
	TileZoneA    TileType = "ZONE_A"
	TileZoneB    TileType = "ZONE_B"
	TileZoneC    TileType = "ZONE_C"
	TileZoneD    TileType = "ZONE_D"
)

// Zone names a rectangular warehouse region. ZoneNone is returned for
// positions outside every named zone.
type Zone string

const (
	ZoneA    Zone = "ZONE_A" // pickup
	ZoneB    Zone = "ZONE_B" // storage
	ZoneC    Zone = "ZONE_C" // delivery
	ZoneD    Zone = "ZONE_D" // charging
	ZoneNone Zone = "NONE"
)

// ZoneOccupancy counts robots per named zone.
type ZoneOccupancy map[Zone]int

// NewZoneOccupancy returns a zeroed occupancy map covering all named zones.
func NewZoneOccupancy() ZoneOccupancy {
	return ZoneOccupancy{ZoneA: 0, ZoneB: 0, ZoneC: 0, ZoneD: 0}
}
