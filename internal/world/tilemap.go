package world

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

// TileMap stores the exterior static tiles and entity references sparsely,
// plus every container and its floors. All mutations bump the structural
// version counter consumed by the visibility cache.
//
// Mutations are applied strictly between ticks; reads during the parallel
// visibility pass see a quiescent map, so only the version counter needs to
// be atomic.
type TileMap struct {
	static     map[grid.TilePos]grid.StaticTile
	entities   map[grid.TilePos]uuid.UUID
	containers map[uuid.UUID]*Container

	version atomic.Uint64
}

// NewTileMap returns an empty world map.
func NewTileMap() *TileMap {
	return &TileMap{
		static:     make(map[grid.TilePos]grid.StaticTile),
		entities:   make(map[grid.TilePos]uuid.UUID),
		containers: make(map[uuid.UUID]*Container),
	}
}

// Version returns the current structural version. Any tile, entity, or
// container-anchor mutation increments it.
func (m *TileMap) Version() uint64 {
	if m == nil {
		return 0
	}
	return m.version.Load()
}

func (m *TileMap) bumpVersion() {
	m.version.Add(1)
}

// AddContainer registers a container. Its floors become addressable through
// composite (container, floor) references.
func (m *TileMap) AddContainer(c *Container) error {
	if m == nil || c == nil || c.ID == uuid.Nil {
		return fmt.Errorf("add container: %w", ErrInvalidPosition)
	}
	if !c.Pos.IsFinite() {
		return fmt.Errorf("add container %s: %w", c.ID, ErrInvalidPosition)
	}
	m.containers[c.ID] = c
	m.bumpVersion()
	return nil
}

// RemoveContainer drops a container and all of its floors.
func (m *TileMap) RemoveContainer(id uuid.UUID) {
	if m == nil {
		return
	}
	if _, ok := m.containers[id]; !ok {
		return
	}
	delete(m.containers, id)
	m.bumpVersion()
}

// Container returns the registered container with the given id.
func (m *TileMap) Container(id uuid.UUID) (*Container, bool) {
	if m == nil {
		return nil, false
	}
	c, ok := m.containers[id]
	return c, ok
}

// Containers returns the registered containers. The slice order is not
// stable across calls.
func (m *TileMap) Containers() []*Container {
	if m == nil {
		return nil
	}
	out := make([]*Container, 0, len(m.containers))
	for _, c := range m.containers {
		out = append(out, c)
	}
	return out
}

// SetContainerPos moves a container's world anchor. Crossing a tile boundary
// changes which exterior tiles the footprint covers, so that bumps the
// structural version.
func (m *TileMap) SetContainerPos(id uuid.UUID, pos grid.WorldPos) error {
	if m == nil {
		return ErrInvalidPosition
	}
	if !pos.IsFinite() {
		return fmt.Errorf("move container %s: %w", id, ErrInvalidPosition)
	}
	c, ok := m.containers[id]
	if !ok {
		return fmt.Errorf("move container %s: %w", id, ErrInvalidPosition)
	}
	oldTile := c.Pos.Tile()
	c.Pos = pos
	if pos.Tile() != oldTile {
		m.bumpVersion()
	}
	return nil
}

// floorFor resolves the floor addressed by a non-world reference.
func (m *TileMap) floorFor(ref grid.TileRef) (*Floor, error) {
	c, ok := m.containers[ref.Container]
	if !ok {
		return nil, fmt.Errorf("container %s: %w", ref.Container, ErrInvalidPosition)
	}
	floor := c.Floor(ref.Floor)
	if floor == nil {
		return nil, fmt.Errorf("container %s floor %d: %w", ref.Container, ref.Floor, ErrInvalidPosition)
	}
	return floor, nil
}

// ContentAt resolves a frame-tagged tile reference. Unset slots resolve to
// empty content, never an error.
func (m *TileMap) ContentAt(ref grid.TileRef) grid.TileContent {
	if m == nil {
		return grid.Empty
	}
	if ref.IsWorld() {
		if id, ok := m.entities[ref.Pos]; ok {
			return grid.EntityContent(id)
		}
		if tile, ok := m.static[ref.Pos]; ok {
			return grid.StaticContent(tile)
		}
		return grid.Empty
	}
	floor, err := m.floorFor(ref)
	if err != nil {
		return grid.Empty
	}
	return floor.ContentAt(ref.Pos)
}

// StaticAt returns the static tile at a reference, if any.
func (m *TileMap) StaticAt(ref grid.TileRef) (grid.StaticTile, bool) {
	if m == nil {
		return grid.StaticTile{}, false
	}
	if ref.IsWorld() {
		tile, ok := m.static[ref.Pos]
		return tile, ok
	}
	floor, err := m.floorFor(ref)
	if err != nil {
		return grid.StaticTile{}, false
	}
	return floor.StaticAt(ref.Pos)
}

// SetStaticTile writes a static tile value at the referenced slot. Slots
// holding an entity reference are rejected; the entity must be despawned
// first so references never dangle.
func (m *TileMap) SetStaticTile(ref grid.TileRef, tile grid.StaticTile) error {
	if m == nil {
		return ErrInvalidPosition
	}
	if ref.IsWorld() {
		if _, held := m.entities[ref.Pos]; held {
			return fmt.Errorf("set static tile at %v: %w", ref.Pos, ErrOccupiedTile)
		}
		m.static[ref.Pos] = tile
		m.bumpVersion()
		return nil
	}
	floor, err := m.floorFor(ref)
	if err != nil {
		return err
	}
	if _, held := floor.entities[ref.Pos]; held {
		return fmt.Errorf("set static tile at %v: %w", ref, ErrOccupiedTile)
	}
	floor.static[ref.Pos] = tile
	m.bumpVersion()
	return nil
}

// ClearStaticTile removes the static tile at the referenced slot, if any.
func (m *TileMap) ClearStaticTile(ref grid.TileRef) error {
	if m == nil {
		return ErrInvalidPosition
	}
	if ref.IsWorld() {
		if _, ok := m.static[ref.Pos]; ok {
			delete(m.static, ref.Pos)
			m.bumpVersion()
		}
		return nil
	}
	floor, err := m.floorFor(ref)
	if err != nil {
		return err
	}
	if _, ok := floor.static[ref.Pos]; ok {
		delete(floor.static, ref.Pos)
		m.bumpVersion()
	}
	return nil
}

// setEntityRef installs an entity reference. The entity store is the only
// caller; it has already verified the slot is empty.
func (m *TileMap) setEntityRef(ref grid.TileRef, id uuid.UUID) error {
	if ref.IsWorld() {
		m.entities[ref.Pos] = id
		m.bumpVersion()
		return nil
	}
	floor, err := m.floorFor(ref)
	if err != nil {
		return err
	}
	floor.entities[ref.Pos] = id
	m.bumpVersion()
	return nil
}

// clearEntityRef removes an entity reference, guarding against clearing a
// slot that meanwhile points at a different entity.
func (m *TileMap) clearEntityRef(ref grid.TileRef, id uuid.UUID) {
	if ref.IsWorld() {
		if held, ok := m.entities[ref.Pos]; ok && held == id {
			delete(m.entities, ref.Pos)
			m.bumpVersion()
		}
		return
	}
	floor, err := m.floorFor(ref)
	if err != nil {
		return
	}
	if held, ok := floor.entities[ref.Pos]; ok && held == id {
		delete(floor.entities, ref.Pos)
		m.bumpVersion()
	}
}

// containerAt finds the container whose exterior footprint covers the world
// position. Container counts are small, so a linear scan is fine.
func (m *TileMap) containerAt(pos grid.WorldPos) (*Container, bool) {
	for _, c := range m.containers {
		if c.Contains(pos) {
			return c, true
		}
	}
	return nil, false
}

// ResolveRef maps a continuous position plus the viewer's frame onto a tile
// reference. Positions carried with an inside frame are container-local and
// stay on the viewer's floor; exterior positions over a container footprint
// resolve to its entry floor, everything else to the exterior map. Returns
// false for non-finite positions or an unknown container frame.
func (m *TileMap) ResolveRef(pos grid.WorldPos, frame grid.Frame) (grid.TileRef, bool) {
	if m == nil || !pos.IsFinite() {
		return grid.TileRef{}, false
	}
	if frame.Inside {
		c, ok := m.containers[frame.Container]
		if !ok || c.Floor(frame.Floor) == nil {
			return grid.TileRef{}, false
		}
		return grid.FloorRef(c.ID, frame.Floor, pos.Tile()), true
	}
	if c, ok := m.containerAt(pos); ok {
		local := grid.WorldToLocal(c.Pos, pos).Tile()
		return grid.FloorRef(c.ID, 0, local), true
	}
	return grid.WorldRef(pos.Tile()), true
}

// TileAt resolves the content a viewer in the given frame observes at a
// continuous world position.
func (m *TileMap) TileAt(pos grid.WorldPos, frame grid.Frame) grid.TileContent {
	ref, ok := m.ResolveRef(pos, frame)
	if !ok {
		return grid.Empty
	}
	return m.ContentAt(ref)
}
