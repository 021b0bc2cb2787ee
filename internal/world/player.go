package world

import (
	"time"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

// PlayerState tracks one connected viewer. A player is in exactly one of
// two places: outside at a world position, or inside a container on one
// floor at a container-local position. Frame discriminates the two and Pos
// is interpreted in that frame.
type PlayerState struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Frame         grid.Frame     `json:"frame"`
	Pos           grid.WorldPos  `json:"pos"`
	Facing        grid.Direction `json:"facing"`
	LastHeartbeat time.Time      `json:"-"`
}

// Tile returns the tile the player currently stands on, in their frame.
func (p *PlayerState) Tile() grid.TilePos {
	if p == nil {
		return grid.TilePos{}
	}
	return p.Pos.Tile()
}

// TileRef returns the frame-tagged address of the player's tile.
func (p *PlayerState) TileRef() grid.TileRef {
	if p == nil {
		return grid.TileRef{}
	}
	if p.Frame.Inside {
		return grid.FloorRef(p.Frame.Container, p.Frame.Floor, p.Tile())
	}
	return grid.WorldRef(p.Tile())
}
