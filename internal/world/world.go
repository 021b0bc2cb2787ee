package world

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/logging"
)

// Deps bundles runtime dependencies required to construct a World instance.
type Deps struct {
	Publisher logging.Publisher
	RNG       RNGFactory
}

// World owns the tile map, the entity store, the connected players, and the
// deterministic RNG root. All mutation happens between ticks on the
// simulation goroutine.
type World struct {
	config Config
	seed   string

	publisher  logging.Publisher
	rngFactory RNGFactory
	rng        *rand.Rand

	tiles    *TileMap
	entities *EntityStore
	players  map[uuid.UUID]*PlayerState
}

// New constructs a world with normalized configuration and seeded RNG.
func New(cfg Config, deps Deps) (*World, error) {
	normalized := cfg.normalized()

	factory := deps.RNG
	if factory == nil {
		factory = NewDeterministicRNG
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	tiles := NewTileMap()
	w := &World{
		config:     normalized,
		seed:       normalized.Seed,
		publisher:  publisher,
		rngFactory: factory,
		rng:        factory(normalized.Seed, "world"),
		tiles:      tiles,
		entities:   NewEntityStore(tiles, publisher),
		players:    make(map[uuid.UUID]*PlayerState),
	}

	if normalized.Scatter {
		w.scatterTerrain()
	}
	for i := 0; i < normalized.Containers; i++ {
		team := TeamRed
		if i%2 == 1 {
			team = TeamBlue
		}
		if _, err := w.SpawnContainer(w.containerSpawnPos(i), team); err != nil {
			return nil, fmt.Errorf("seed container %d: %w", i, err)
		}
	}
	return w, nil
}

// Config returns the normalized configuration captured at construction.
func (w *World) Config() Config {
	if w == nil {
		return Config{}
	}
	return w.config
}

// Tiles exposes the tile map.
func (w *World) Tiles() *TileMap {
	if w == nil {
		return nil
	}
	return w.tiles
}

// Entities exposes the entity store.
func (w *World) Entities() *EntityStore {
	if w == nil {
		return nil
	}
	return w.entities
}

// Version returns the current structural version of the world.
func (w *World) Version() uint64 {
	if w == nil {
		return 0
	}
	return w.tiles.Version()
}

// SubsystemRNG derives a deterministic RNG stream for the given label.
func (w *World) SubsystemRNG(label string) *rand.Rand {
	if w == nil {
		return NewDeterministicRNG(DefaultSeed, label)
	}
	return w.rngFactory(w.seed, label)
}

// AddPlayer registers a new outside viewer at the arena spawn point.
func (w *World) AddPlayer(name string) *PlayerState {
	if w == nil {
		return nil
	}
	player := &PlayerState{
		ID:     uuid.New(),
		Name:   name,
		Frame:  grid.WorldFrame,
		Pos:    w.spawnPos(),
		Facing: grid.DirDown,
	}
	w.players[player.ID] = player
	return player
}

// RemovePlayer drops a disconnected viewer.
func (w *World) RemovePlayer(id uuid.UUID) {
	if w == nil {
		return
	}
	delete(w.players, id)
}

// Player returns the state for a connected viewer.
func (w *World) Player(id uuid.UUID) (*PlayerState, bool) {
	if w == nil {
		return nil, false
	}
	p, ok := w.players[id]
	return p, ok
}

// Players returns the connected viewers. The slice order is not stable.
func (w *World) Players() []*PlayerState {
	if w == nil {
		return nil
	}
	out := make([]*PlayerState, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return out
}

// SpawnContainer creates a container with the default interior at the given
// world anchor and registers it.
func (w *World) SpawnContainer(pos grid.WorldPos, team Team) (*Container, error) {
	if w == nil {
		return nil, ErrInvalidPosition
	}
	c := NewContainer(uuid.New(), pos, team)
	if err := w.tiles.AddContainer(c); err != nil {
		return nil, err
	}
	if err := BuildInterior(w.tiles, c); err != nil {
		w.tiles.RemoveContainer(c.ID)
		return nil, err
	}
	return c, nil
}

// DespawnContainer removes a container and every entity anchored to it.
func (w *World) DespawnContainer(id uuid.UUID) {
	if w == nil {
		return
	}
	for _, record := range w.entities.records {
		if !record.Anchor.IsWorld() && record.Anchor.Container == id {
			_ = w.entities.Despawn(record.ID)
		}
	}
	w.tiles.RemoveContainer(id)
}

// Step advances container motion by dt seconds. Player movement is driven
// by validated commands, not integrated here.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	for _, c := range w.tiles.containers {
		if c.Velocity.X == 0 && c.Velocity.Y == 0 {
			continue
		}
		next := c.Pos.Add(c.Velocity.Scale(dt))
		_ = w.tiles.SetContainerPos(c.ID, next)
	}
}

func (w *World) spawnPos() grid.WorldPos {
	return grid.TilePos{
		X: w.config.WidthTiles / 2,
		Y: w.config.HeightTiles / 2,
	}.Center()
}

func (w *World) containerSpawnPos(index int) grid.WorldPos {
	margin := 10
	x := margin + index*(ContainerSizeTiles+8)
	y := margin + (index%2)*(w.config.HeightTiles-2*margin-ContainerSizeTiles)
	return grid.TilePos{X: x, Y: y}.World()
}

// scatterTerrain places rock obstacles drawn from the deterministic
// terrain stream. Unset tiles stay passable ground.
func (w *World) scatterTerrain() {
	rng := w.SubsystemRNG("terrain.rocks")
	placed := 0
	for placed < w.config.RockCount {
		pos := grid.TilePos{
			X: rng.Intn(w.config.WidthTiles),
			Y: rng.Intn(w.config.HeightTiles),
		}
		ref := grid.WorldRef(pos)
		if _, occupied := w.tiles.StaticAt(ref); occupied {
			continue
		}
		if err := w.tiles.SetStaticTile(ref, grid.Tile(grid.KindRock)); err != nil {
			continue
		}
		placed++
	}
}
