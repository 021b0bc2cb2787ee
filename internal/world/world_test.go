package world

import (
	"testing"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

func TestWorldSeedingIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Containers = 0

	a, err := New(cfg, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(cfg, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rocks := 0
	for y := 0; y < cfg.HeightTiles; y++ {
		for x := 0; x < cfg.WidthTiles; x++ {
			ref := grid.WorldRef(grid.TilePos{X: x, Y: y})
			ta, oka := a.Tiles().StaticAt(ref)
			tb, okb := b.Tiles().StaticAt(ref)
			if oka != okb || ta != tb {
				t.Fatalf("worlds diverge at (%d,%d): %v/%v vs %v/%v", x, y, ta, oka, tb, okb)
			}
			if oka && ta.Kind == grid.KindRock {
				rocks++
			}
		}
	}
	if rocks != cfg.RockCount {
		t.Fatalf("placed %d rocks, want %d", rocks, cfg.RockCount)
	}
}

func TestWorldSeedChangesLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Containers = 0

	a, err := New(cfg, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg.Seed = "other"
	b, err := New(cfg, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	same := true
	for y := 0; y < cfg.HeightTiles && same; y++ {
		for x := 0; x < cfg.WidthTiles; x++ {
			ref := grid.WorldRef(grid.TilePos{X: x, Y: y})
			ta, oka := a.Tiles().StaticAt(ref)
			tb, okb := b.Tiles().StaticAt(ref)
			if oka != okb || ta != tb {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatalf("different seeds produced identical terrain")
	}
}

func TestWorldSpawnsConfiguredContainers(t *testing.T) {
	cfg := DefaultConfig()
	w, err := New(cfg, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	containers := w.Tiles().Containers()
	if len(containers) != cfg.Containers {
		t.Fatalf("spawned %d containers, want %d", len(containers), cfg.Containers)
	}
	teams := map[Team]int{}
	for _, c := range containers {
		teams[c.Team]++
		entrance, ok := w.Tiles().StaticAt(grid.FloorRef(c.ID, 0, c.EntrancePos().Offset(0, 1)))
		if !ok || entrance.Kind != grid.KindEntrance {
			t.Fatalf("container %s missing entrance tile: %v ok=%v", c.ID, entrance.Kind, ok)
		}
	}
	if teams[TeamRed] == 0 || teams[TeamBlue] == 0 {
		t.Fatalf("teams not balanced: %v", teams)
	}
}

func TestWorldStepIntegratesContainerVelocity(t *testing.T) {
	w := newTestWorld(t)
	c, err := w.SpawnContainer(grid.WorldPos{X: 320, Y: 320}, TeamRed)
	if err != nil {
		t.Fatalf("SpawnContainer: %v", err)
	}
	c.Velocity = grid.WorldPos{X: grid.TileSize, Y: 0}

	before := w.Version()
	w.Step(0.5)
	if got := c.Pos.X; got != 320+grid.TileSize/2 {
		t.Fatalf("container x = %v, want %v", got, 320+grid.TileSize/2)
	}

	// Half a tile of motion crosses the tile boundary from the anchor's
	// starting tile only after a full tile of travel.
	w.Step(0.5)
	if w.Version() == before {
		t.Fatalf("tile-boundary container motion did not bump version")
	}
}

func TestWorldPlayerRegistry(t *testing.T) {
	w := newTestWorld(t)
	p := w.AddPlayer("pilot")
	if p == nil || p.ID == uuid.Nil {
		t.Fatalf("AddPlayer returned %+v", p)
	}
	if got, ok := w.Player(p.ID); !ok || got != p {
		t.Fatalf("Player lookup failed")
	}
	if len(w.Players()) != 1 {
		t.Fatalf("Players() = %d entries, want 1", len(w.Players()))
	}
	w.RemovePlayer(p.ID)
	if _, ok := w.Player(p.ID); ok {
		t.Fatalf("player still present after removal")
	}
}
