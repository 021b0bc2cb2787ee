package world

import (
	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

// Floor is one deck of a container: a sparse mapping from local tile
// positions to content. Absence of an entry is the normal "empty" state.
type Floor struct {
	static   map[grid.TilePos]grid.StaticTile
	entities map[grid.TilePos]uuid.UUID
}

// NewFloor returns an empty deck.
func NewFloor() *Floor {
	return &Floor{
		static:   make(map[grid.TilePos]grid.StaticTile),
		entities: make(map[grid.TilePos]uuid.UUID),
	}
}

// ContentAt resolves the slot at a local position. An entity reference wins
// over a static tile; an unset slot is empty.
func (f *Floor) ContentAt(pos grid.TilePos) grid.TileContent {
	if f == nil {
		return grid.Empty
	}
	if id, ok := f.entities[pos]; ok {
		return grid.EntityContent(id)
	}
	if tile, ok := f.static[pos]; ok {
		return grid.StaticContent(tile)
	}
	return grid.Empty
}

// StaticAt returns the static tile at a local position, if any.
func (f *Floor) StaticAt(pos grid.TilePos) (grid.StaticTile, bool) {
	if f == nil {
		return grid.StaticTile{}, false
	}
	tile, ok := f.static[pos]
	return tile, ok
}

// Container is a mobile multi-floor structure translated into world space by
// its current position. Each floor is an independent local-frame tile map;
// floors are reached only through the composite (container, floor) key.
type Container struct {
	ID       uuid.UUID
	Pos      grid.WorldPos
	Velocity grid.WorldPos
	Team     Team
	Floors   []*Floor
}

// NewContainer builds a container with the fixed floor count at the given
// world anchor. Interiors start empty; layout generation fills them in.
func NewContainer(id uuid.UUID, pos grid.WorldPos, team Team) *Container {
	floors := make([]*Floor, FloorsPerContainer)
	for i := range floors {
		floors[i] = NewFloor()
	}
	return &Container{ID: id, Pos: pos, Team: team, Floors: floors}
}

// Floor returns the deck at the given index, or nil when out of range.
func (c *Container) Floor(idx grid.FloorIndex) *Floor {
	if c == nil || idx < 0 || int(idx) >= len(c.Floors) {
		return nil
	}
	return c.Floors[idx]
}

// Contains reports whether a world position falls inside the container's
// exterior footprint at its current position.
func (c *Container) Contains(pos grid.WorldPos) bool {
	if c == nil {
		return false
	}
	local := grid.WorldToLocal(c.Pos, pos)
	extent := float64(ContainerSizeTiles) * grid.TileSize
	return local.X >= 0 && local.X < extent && local.Y >= 0 && local.Y < extent
}

// EntrancePos is the local spawn position used when an actor boards.
func (c *Container) EntrancePos() grid.TilePos {
	return grid.TilePos{X: FloorWidthTiles / 2, Y: FloorHeightTiles - 2}
}
