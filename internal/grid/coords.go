package grid

import "math"

// TileSize is the width of one tile in world units.
const TileSize = 32.0

// TilePos addresses a single tile on an integer grid.
type TilePos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WorldPos is a continuous position in world units.
type WorldPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FloorIndex identifies one floor inside a container.
type FloorIndex int

// Tile returns the tile containing the world position.
func (p WorldPos) Tile() TilePos {
	return TilePos{
		X: int(math.Floor(p.X / TileSize)),
		Y: int(math.Floor(p.Y / TileSize)),
	}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p WorldPos) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Add returns the component-wise sum of two positions.
func (p WorldPos) Add(other WorldPos) WorldPos {
	return WorldPos{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference of two positions.
func (p WorldPos) Sub(other WorldPos) WorldPos {
	return WorldPos{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the position multiplied by a scalar.
func (p WorldPos) Scale(factor float64) WorldPos {
	return WorldPos{X: p.X * factor, Y: p.Y * factor}
}

// DistanceTo returns the Euclidean distance to another position.
func (p WorldPos) DistanceTo(other WorldPos) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// DistanceSquaredTo avoids the square root when only comparing distances.
func (p WorldPos) DistanceSquaredTo(other WorldPos) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// World returns the top-left corner of the tile in world units.
func (t TilePos) World() WorldPos {
	return WorldPos{X: float64(t.X) * TileSize, Y: float64(t.Y) * TileSize}
}

// Center returns the center of the tile in world units.
func (t TilePos) Center() WorldPos {
	return WorldPos{
		X: float64(t.X)*TileSize + TileSize/2,
		Y: float64(t.Y)*TileSize + TileSize/2,
	}
}

// Offset returns the tile shifted by the given deltas.
func (t TilePos) Offset(dx, dy int) TilePos {
	return TilePos{X: t.X + dx, Y: t.Y + dy}
}

// WorldToLocal translates a world position into the local frame anchored at
// origin. The caller supplies the container's current world position.
func WorldToLocal(origin, world WorldPos) WorldPos {
	return world.Sub(origin)
}

// LocalToWorld translates a container-local position back into world space.
func LocalToWorld(origin, local WorldPos) WorldPos {
	return origin.Add(local)
}
