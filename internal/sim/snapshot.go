package sim

import (
	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/world"
)

// FrameView mirrors a viewer frame for serialization.
type FrameView struct {
	Inside    bool      `json:"inside"`
	Container uuid.UUID `json:"container,omitempty"`
	Floor     int       `json:"floor"`
}

// PlayerView mirrors player state exposed to callers.
type PlayerView struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Facing string    `json:"facing"`
	Frame  FrameView `json:"frame"`
}

// ContainerView mirrors container state exposed to callers.
type ContainerView struct {
	ID     uuid.UUID `json:"id"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	VX     float64   `json:"vx"`
	VY     float64   `json:"vy"`
	Team   string    `json:"team"`
	Floors int       `json:"floors"`
}

// EntityView mirrors one complex entity record exposed to callers.
type EntityView struct {
	ID         uuid.UUID        `json:"id"`
	Anchor     TileRefView      `json:"anchor"`
	Attributes world.Attributes `json:"attributes"`
}

// TileRefView mirrors a composite tile reference for serialization.
type TileRefView struct {
	Container uuid.UUID `json:"container,omitempty"`
	Floor     int       `json:"floor"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
}

func NewTileRefView(ref grid.TileRef) TileRefView {
	return TileRefView{
		Container: ref.Container,
		Floor:     int(ref.Floor),
		X:         ref.Pos.X,
		Y:         ref.Pos.Y,
	}
}

// Snapshot captures the state exposed to non-simulation callers for one
// tick. It is value-copied and safe to hand to other goroutines.
type Snapshot struct {
	Tick       uint64          `json:"tick"`
	Version    uint64          `json:"version"`
	Players    []PlayerView    `json:"players,omitempty"`
	Containers []ContainerView `json:"containers,omitempty"`
	Entities   []EntityView    `json:"entities,omitempty"`
}
