package server

import (
	"sort"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/sim"
	"mech-arena/server/internal/vision"
)

// ProtocolVersion is bumped whenever the wire format changes shape.
const ProtocolVersion = 1

// VisibleTile is one entry of a viewer's visible set on the wire. A zero
// Container uuid addresses the exterior world map.
type VisibleTile struct {
	Container   uuid.UUID `json:"container,omitempty"`
	Floor       int       `json:"floor"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Attenuation float64   `json:"attenuation"`
	Kind        string    `json:"kind"`
	Entity      uuid.UUID `json:"entity,omitempty"`
}

// StateMessage is the per-tick frame sent to one viewer. Players and
// entities are filtered to what that viewer can currently see.
type StateMessage struct {
	Ver        int                 `json:"ver"`
	Type       string              `json:"type"`
	Tick       uint64              `json:"tick"`
	Version    uint64              `json:"version"`
	You        uuid.UUID           `json:"you"`
	Frame      sim.FrameView       `json:"frame"`
	Players    []sim.PlayerView    `json:"players,omitempty"`
	Containers []sim.ContainerView `json:"containers,omitempty"`
	Entities   []sim.EntityView    `json:"entities,omitempty"`
	Visible    []VisibleTile       `json:"visible,omitempty"`
}

// JoinResponse is returned when a player registers with the hub.
type JoinResponse struct {
	Ver      int       `json:"ver"`
	Type     string    `json:"type"`
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	TickRate int       `json:"tickRate"`
	SpawnX   float64   `json:"spawnX"`
	SpawnY   float64   `json:"spawnY"`
}

// visibleTiles flattens a visibility result into wire entries, resolving
// each tile's kind and any entity reference for the client renderer.
func visibleTiles(result *vision.Result, snap vision.Snapshot) []VisibleTile {
	if result == nil || result.Len() == 0 {
		return nil
	}
	out := make([]VisibleTile, 0, result.Len())
	for ref, att := range result.Tiles {
		entry := VisibleTile{
			Container:   ref.Container,
			Floor:       int(ref.Floor),
			X:           ref.Pos.X,
			Y:           ref.Pos.Y,
			Attenuation: att,
		}
		content := snap.Tiles.ContentAt(ref)
		switch content.Kind {
		case grid.ContentStatic:
			entry.Kind = content.Static.Kind.String()
		case grid.ContentEntity:
			entry.Kind = "entity"
			entry.Entity = content.Entity
		default:
			entry.Kind = "empty"
		}
		out = append(out, entry)
	}
	// Map iteration order is random; keep the wire frame reproducible.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Container != b.Container {
			return a.Container.String() < b.Container.String()
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}
