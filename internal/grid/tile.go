package grid

import "github.com/google/uuid"

// TileKind enumerates the static tile variants. Static tiles are plain
// values with fixed behavior; anything needing mutable state lives in the
// entity store and is referenced from the tile slot by id.
type TileKind uint8

const (
	KindGrass TileKind = iota
	KindRock
	KindMetalFloor
	KindCargoFloor
	KindMetalWall
	KindReinforcedWall
	KindWindow
	KindReinforcedWindow
	KindLadder
	KindStairUp
	KindStairDown
	KindEntrance
)

func (k TileKind) String() string {
	switch k {
	case KindGrass:
		return "grass"
	case KindRock:
		return "rock"
	case KindMetalFloor:
		return "metal-floor"
	case KindCargoFloor:
		return "cargo-floor"
	case KindMetalWall:
		return "metal-wall"
	case KindReinforcedWall:
		return "reinforced-wall"
	case KindWindow:
		return "window"
	case KindReinforcedWindow:
		return "reinforced-window"
	case KindLadder:
		return "ladder"
	case KindStairUp:
		return "stair-up"
	case KindStairDown:
		return "stair-down"
	case KindEntrance:
		return "entrance"
	default:
		return "unknown"
	}
}

// StaticTile is the tagged-variant value describing a simple tile. Facing is
// meaningful only for window kinds.
type StaticTile struct {
	Kind   TileKind  `json:"kind"`
	Facing Direction `json:"facing,omitempty"`
}

// Window builds a window tile with the given outward facing.
func Window(facing Direction) StaticTile {
	return StaticTile{Kind: KindWindow, Facing: facing}
}

// ReinforcedWindow builds a reinforced window tile with the given facing.
func ReinforcedWindow(facing Direction) StaticTile {
	return StaticTile{Kind: KindReinforcedWindow, Facing: facing}
}

// Tile builds a static tile of a kind that carries no facing.
func Tile(kind TileKind) StaticTile {
	return StaticTile{Kind: kind}
}

// Walkable reports whether actors may stand on the tile.
func (t StaticTile) Walkable() bool {
	switch t.Kind {
	case KindGrass, KindMetalFloor, KindCargoFloor,
		KindLadder, KindStairUp, KindStairDown, KindEntrance:
		return true
	default:
		return false
	}
}

// BlocksVision reports whether the tile terminates a sight ray outright.
func (t StaticTile) BlocksVision() bool {
	switch t.Kind {
	case KindRock, KindMetalWall, KindReinforcedWall:
		return true
	default:
		return false
	}
}

// VisionAttenuation is the opacity the tile adds to a ray passing through.
func (t StaticTile) VisionAttenuation() float64 {
	switch t.Kind {
	case KindWindow:
		return 0.2
	case KindReinforcedWindow:
		return 0.3
	case KindRock, KindMetalWall, KindReinforcedWall:
		return 1.0
	default:
		return 0
	}
}

// IsWindow reports whether the tile opens a directional vision cone.
func (t StaticTile) IsWindow() bool {
	return t.Kind == KindWindow || t.Kind == KindReinforcedWindow
}

// IsConnector reports whether the tile links floors (ladder or stairway).
func (t StaticTile) IsConnector() bool {
	switch t.Kind {
	case KindLadder, KindStairUp, KindStairDown:
		return true
	default:
		return false
	}
}

// ContentKind discriminates the per-position tile slot.
type ContentKind uint8

const (
	ContentEmpty ContentKind = iota
	ContentStatic
	ContentEntity
)

// TileContent is the value held by one tile slot: empty, a static tile, or
// a reference into the entity store.
type TileContent struct {
	Kind   ContentKind `json:"kind"`
	Static StaticTile  `json:"static,omitempty"`
	Entity uuid.UUID   `json:"entity,omitempty"`
}

// Empty is the default content of any unset tile slot.
var Empty = TileContent{Kind: ContentEmpty}

// StaticContent wraps a static tile value as tile content.
func StaticContent(t StaticTile) TileContent {
	return TileContent{Kind: ContentStatic, Static: t}
}

// EntityContent wraps an entity reference as tile content.
func EntityContent(id uuid.UUID) TileContent {
	return TileContent{Kind: ContentEntity, Entity: id}
}

// IsEmpty reports whether the slot holds nothing.
func (c TileContent) IsEmpty() bool {
	return c.Kind == ContentEmpty
}

// TileRef is the frame-tagged address of a tile: exterior world when
// Container is the zero uuid, otherwise a container floor in local
// coordinates. Floors are addressed by this explicit composite key, never
// by folding the floor index into coordinate arithmetic.
type TileRef struct {
	Container uuid.UUID  `json:"container,omitempty"`
	Floor     FloorIndex `json:"floor,omitempty"`
	Pos       TilePos    `json:"pos"`
}

// WorldRef builds a reference to an exterior world tile.
func WorldRef(pos TilePos) TileRef {
	return TileRef{Pos: pos}
}

// FloorRef builds a reference to a container floor tile.
func FloorRef(container uuid.UUID, floor FloorIndex, pos TilePos) TileRef {
	return TileRef{Container: container, Floor: floor, Pos: pos}
}

// IsWorld reports whether the reference addresses the exterior map.
func (r TileRef) IsWorld() bool {
	return r.Container == uuid.Nil
}

// Frame is a viewer's resolution context: either the exterior world or one
// specific floor of one container. It is carried explicitly through query
// and visibility calls so simultaneous viewers cannot interfere.
type Frame struct {
	Inside    bool       `json:"inside,omitempty"`
	Container uuid.UUID  `json:"container,omitempty"`
	Floor     FloorIndex `json:"floor,omitempty"`
}

// WorldFrame is the exterior resolution context.
var WorldFrame = Frame{}

// ContainerFrame builds the context for a viewer on the given floor.
func ContainerFrame(container uuid.UUID, floor FloorIndex) Frame {
	return Frame{Inside: true, Container: container, Floor: floor}
}
