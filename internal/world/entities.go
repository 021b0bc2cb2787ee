package world

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/logging"
)

// EntityRecord is the single source of truth for one complex object. Every
// tile slot it occupies references the same record by id.
type EntityRecord struct {
	ID         uuid.UUID
	Anchor     grid.TileRef
	Attributes Attributes
	Occupied   []grid.TileRef
}

type floorKey struct {
	Container uuid.UUID
	Floor     grid.FloorIndex
}

// EntityStore owns complex dynamic objects and the invariant that tile
// references never dangle: spawn installs every reference or none, despawn
// clears every reference in the same step.
type EntityStore struct {
	tiles     *TileMap
	records   map[uuid.UUID]*EntityRecord
	exterior  *cellIndex
	byFloor   map[floorKey]map[uuid.UUID]struct{}
	publisher logging.Publisher
}

// NewEntityStore builds a store bound to the tile map it installs
// references into.
func NewEntityStore(tiles *TileMap, publisher logging.Publisher) *EntityStore {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &EntityStore{
		tiles:     tiles,
		records:   make(map[uuid.UUID]*EntityRecord),
		exterior:  newCellIndex(),
		byFloor:   make(map[floorKey]map[uuid.UUID]struct{}),
		publisher: publisher,
	}
}

// Spawn allocates a fresh id, stores the attribute set, and installs a tile
// reference at every occupied position. If any target slot already holds
// content the spawn fails with ErrOccupiedTile and nothing is written.
func (s *EntityStore) Spawn(attrs Attributes, occupied []grid.TileRef) (uuid.UUID, error) {
	if s == nil || s.tiles == nil {
		return uuid.Nil, fmt.Errorf("spawn: %w", ErrInvalidPosition)
	}
	if len(occupied) == 0 {
		return uuid.Nil, fmt.Errorf("spawn without occupied tiles: %w", ErrInvalidPosition)
	}
	for _, ref := range occupied {
		if !ref.IsWorld() {
			if _, err := s.tiles.floorFor(ref); err != nil {
				return uuid.Nil, fmt.Errorf("spawn: %w", err)
			}
		}
		if !s.tiles.ContentAt(ref).IsEmpty() {
			return uuid.Nil, fmt.Errorf("spawn at %v: %w", ref, ErrOccupiedTile)
		}
	}

	id := uuid.New()
	record := &EntityRecord{
		ID:         id,
		Anchor:     occupied[0],
		Attributes: attrs,
		Occupied:   append([]grid.TileRef(nil), occupied...),
	}
	for _, ref := range occupied {
		// Pre-validated above; installation cannot fail part-way.
		_ = s.tiles.setEntityRef(ref, id)
	}
	s.records[id] = record
	s.indexRecord(record)
	return id, nil
}

// Despawn removes the record and clears the tile reference at every
// position the entity occupied, as a single step.
func (s *EntityStore) Despawn(id uuid.UUID) error {
	if s == nil {
		return ErrInvalidPosition
	}
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("despawn %s: %w", id, ErrDanglingReference)
	}
	for _, ref := range record.Occupied {
		s.tiles.clearEntityRef(ref, id)
	}
	s.unindexRecord(record)
	delete(s.records, id)
	return nil
}

// Record returns the backing record for an entity id.
func (s *EntityStore) Record(id uuid.UUID) (*EntityRecord, bool) {
	if s == nil {
		return nil, false
	}
	record, ok := s.records[id]
	return record, ok
}

// Records returns the live records. The slice order is not stable.
func (s *EntityStore) Records() []*EntityRecord {
	if s == nil {
		return nil
	}
	out := make([]*EntityRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out
}

// Len reports the number of live records.
func (s *EntityStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// QueryAt resolves the entity occupying the referenced slot, if any. A
// reference with no backing record is healed in place: the stale slot is
// cleared and a warning event published, and the query reports no entity.
func (s *EntityStore) QueryAt(ref grid.TileRef) (uuid.UUID, bool) {
	if s == nil || s.tiles == nil {
		return uuid.Nil, false
	}
	content := s.tiles.ContentAt(ref)
	if content.Kind != grid.ContentEntity {
		return uuid.Nil, false
	}
	if _, ok := s.records[content.Entity]; !ok {
		s.tiles.clearEntityRef(ref, content.Entity)
		s.publisher.Publish(context.Background(), logging.Event{
			Type:     logging.EventDanglingReference,
			Severity: logging.SeverityWarn,
			Category: logging.CategorySystem,
			Actor:    logging.EntityRef{ID: content.Entity.String(), Kind: logging.EntityKindObject},
			Payload:  map[string]any{"ref": ref},
		})
		return uuid.Nil, false
	}
	return content.Entity, true
}

// QueryInRadius returns the entities whose anchor lies within the radius of
// the center, resolved in the caller's frame: container-local coordinates
// for inside frames, exterior world coordinates otherwise.
func (s *EntityStore) QueryInRadius(center grid.WorldPos, radius float64, frame grid.Frame) []uuid.UUID {
	if s == nil || radius < 0 || !center.IsFinite() {
		return nil
	}
	if frame.Inside {
		bucket := s.byFloor[floorKey{Container: frame.Container, Floor: frame.Floor}]
		if len(bucket) == 0 {
			return nil
		}
		out := make([]uuid.UUID, 0, len(bucket))
		for id := range bucket {
			record := s.records[id]
			if record == nil {
				continue
			}
			if record.Anchor.Pos.Center().DistanceSquaredTo(center) <= radius*radius {
				out = append(out, id)
			}
		}
		return out
	}
	candidates := s.exterior.Query(center, radius)
	out := candidates[:0]
	for _, id := range candidates {
		record := s.records[id]
		if record == nil {
			continue
		}
		if record.Anchor.Pos.Center().DistanceSquaredTo(center) <= radius*radius {
			out = append(out, id)
		}
	}
	return out
}

func (s *EntityStore) indexRecord(record *EntityRecord) {
	if record.Anchor.IsWorld() {
		tiles := make([]grid.TilePos, 0, len(record.Occupied))
		for _, ref := range record.Occupied {
			tiles = append(tiles, ref.Pos)
		}
		s.exterior.Insert(record.ID, tiles)
		return
	}
	key := floorKey{Container: record.Anchor.Container, Floor: record.Anchor.Floor}
	bucket := s.byFloor[key]
	if bucket == nil {
		bucket = make(map[uuid.UUID]struct{})
		s.byFloor[key] = bucket
	}
	bucket[record.ID] = struct{}{}
}

func (s *EntityStore) unindexRecord(record *EntityRecord) {
	if record.Anchor.IsWorld() {
		s.exterior.Remove(record.ID)
		return
	}
	key := floorKey{Container: record.Anchor.Container, Floor: record.Anchor.Floor}
	if bucket, ok := s.byFloor[key]; ok {
		delete(bucket, record.ID)
		if len(bucket) == 0 {
			delete(s.byFloor, key)
		}
	}
}
