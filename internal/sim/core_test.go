package sim

import (
	"testing"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/world"
)

func newTestCore(t *testing.T) (*WorldCore, *world.World) {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.Scatter = false
	cfg.Containers = 0
	w, err := world.New(cfg, world.Deps{})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewWorldCore(w, Deps{}), w
}

func TestCoreIntegratesMoveIntent(t *testing.T) {
	core, w := newTestCore(t)
	player := w.AddPlayer("pilot")
	start := player.Pos

	cmds := []Command{{
		ActorID: player.ID,
		Type:    CommandMove,
		Move:    &MoveCommand{DX: 1, DY: 0, Facing: grid.DirRight},
	}}
	if err := core.Apply(cmds); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	core.Step(0.1)

	wantX := start.X + MoveSpeed*0.1
	if player.Pos.X <= start.X || player.Pos.X != wantX {
		t.Fatalf("player x = %v, want %v", player.Pos.X, wantX)
	}
	if player.Facing != grid.DirRight {
		t.Fatalf("facing = %v, want right", player.Facing)
	}

	// Zero intent stops the player.
	if err := core.Apply([]Command{{
		ActorID: player.ID,
		Type:    CommandMove,
		Move:    &MoveCommand{DX: 0, DY: 0, Facing: grid.DirRight},
	}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	held := player.Pos
	core.Step(0.1)
	if player.Pos != held {
		t.Fatalf("player moved after zero intent: %v -> %v", held, player.Pos)
	}
}

func TestCoreMoveIntentBlockedByWall(t *testing.T) {
	core, w := newTestCore(t)
	player := w.AddPlayer("pilot")

	// Wall directly to the player's right.
	wallTile := player.Pos.Tile().Offset(1, 0)
	if err := w.Tiles().SetStaticTile(grid.WorldRef(wallTile), grid.Tile(grid.KindMetalWall)); err != nil {
		t.Fatalf("SetStaticTile: %v", err)
	}

	if err := core.Apply([]Command{{
		ActorID: player.ID,
		Type:    CommandMove,
		Move:    &MoveCommand{DX: 1, DY: 0, Facing: grid.DirRight},
	}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	before := player.Pos
	// A quarter second of travel lands inside the wall tile.
	core.Step(0.25)
	if player.Pos != before {
		t.Fatalf("blocked move changed position: %v -> %v", before, player.Pos)
	}
}

func TestCoreEnterAndExitCommands(t *testing.T) {
	core, w := newTestCore(t)
	player := w.AddPlayer("pilot")
	c, err := w.SpawnContainer(grid.WorldPos{X: 640, Y: 640}, world.TeamRed)
	if err != nil {
		t.Fatalf("SpawnContainer: %v", err)
	}

	if err := core.Apply([]Command{{
		ActorID: player.ID,
		Type:    CommandEnter,
		Enter:   &EnterCommand{Container: c.ID, Floor: 0},
	}}); err != nil {
		t.Fatalf("Apply enter: %v", err)
	}
	if !player.Frame.Inside || player.Frame.Container != c.ID {
		t.Fatalf("frame after enter = %+v", player.Frame)
	}

	if err := core.Apply([]Command{{ActorID: player.ID, Type: CommandExit}}); err != nil {
		t.Fatalf("Apply exit: %v", err)
	}
	if player.Frame.Inside {
		t.Fatalf("frame still inside after exit")
	}
}

func TestCoreActionTogglesFacingStation(t *testing.T) {
	core, w := newTestCore(t)
	player := w.AddPlayer("pilot")

	stationTile := player.Pos.Tile().Offset(1, 0)
	id, err := w.Entities().Spawn(
		world.StationAttributes("pilot seat", world.StationPilot),
		[]grid.TileRef{grid.WorldRef(stationTile)},
	)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	player.Facing = grid.DirRight

	if err := core.Apply([]Command{{ActorID: player.ID, Type: CommandAction}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	record, _ := w.Entities().Record(id)
	if !record.Attributes.Station.Operating {
		t.Fatalf("station not operating after action")
	}

	if err := core.Apply([]Command{{ActorID: player.ID, Type: CommandAction}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if record.Attributes.Station.Operating {
		t.Fatalf("station still operating after second action")
	}
}

func TestCoreSnapshotIsDeterministicallyOrdered(t *testing.T) {
	core, w := newTestCore(t)
	for i := 0; i < 5; i++ {
		w.AddPlayer("pilot")
	}
	if _, err := w.SpawnContainer(grid.WorldPos{X: 320, Y: 320}, world.TeamRed); err != nil {
		t.Fatalf("SpawnContainer: %v", err)
	}
	if _, err := w.SpawnContainer(grid.WorldPos{X: 1600, Y: 1600}, world.TeamBlue); err != nil {
		t.Fatalf("SpawnContainer: %v", err)
	}

	first := core.Snapshot()
	second := core.Snapshot()
	if len(first.Players) != 5 || len(first.Containers) != 2 {
		t.Fatalf("snapshot sizes = %d players %d containers", len(first.Players), len(first.Containers))
	}
	for i := range first.Players {
		if first.Players[i].ID != second.Players[i].ID {
			t.Fatalf("player order unstable at %d", i)
		}
	}
	for i := range first.Containers {
		if first.Containers[i].ID != second.Containers[i].ID {
			t.Fatalf("container order unstable at %d", i)
		}
	}
}

func TestCoreIgnoresUnknownActors(t *testing.T) {
	core, _ := newTestCore(t)
	if err := core.Apply([]Command{{
		ActorID: uuid.New(),
		Type:    CommandMove,
		Move:    &MoveCommand{DX: 1, DY: 0},
	}}); err != nil {
		t.Fatalf("Apply with unknown actor: %v", err)
	}
	core.Step(0.1)
}
