package grid

import (
	"testing"

	"github.com/google/uuid"
)

func TestStaticTileAttributes(t *testing.T) {
	cases := []struct {
		name        string
		tile        StaticTile
		walkable    bool
		blocks      bool
		attenuation float64
	}{
		{"grass", Tile(KindGrass), true, false, 0},
		{"rock", Tile(KindRock), false, true, 1.0},
		{"metal floor", Tile(KindMetalFloor), true, false, 0},
		{"cargo floor", Tile(KindCargoFloor), true, false, 0},
		{"metal wall", Tile(KindMetalWall), false, true, 1.0},
		{"reinforced wall", Tile(KindReinforcedWall), false, true, 1.0},
		{"window", Window(DirRight), false, false, 0.2},
		{"reinforced window", ReinforcedWindow(DirUp), false, false, 0.3},
		{"ladder", Tile(KindLadder), true, false, 0},
		{"stair up", Tile(KindStairUp), true, false, 0},
		{"entrance", Tile(KindEntrance), true, false, 0},
	}
	for _, tc := range cases {
		if got := tc.tile.Walkable(); got != tc.walkable {
			t.Fatalf("%s: Walkable = %v, want %v", tc.name, got, tc.walkable)
		}
		if got := tc.tile.BlocksVision(); got != tc.blocks {
			t.Fatalf("%s: BlocksVision = %v, want %v", tc.name, got, tc.blocks)
		}
		if got := tc.tile.VisionAttenuation(); got != tc.attenuation {
			t.Fatalf("%s: VisionAttenuation = %v, want %v", tc.name, got, tc.attenuation)
		}
	}
}

func TestWindowTilesCarryFacing(t *testing.T) {
	win := Window(DirLeft)
	if !win.IsWindow() {
		t.Fatalf("expected window kind to report IsWindow")
	}
	if win.Facing != DirLeft {
		t.Fatalf("facing = %v, want %v", win.Facing, DirLeft)
	}
	if Tile(KindMetalWall).IsWindow() {
		t.Fatalf("wall must not report IsWindow")
	}
}

func TestConnectorKinds(t *testing.T) {
	for _, kind := range []TileKind{KindLadder, KindStairUp, KindStairDown} {
		if !Tile(kind).IsConnector() {
			t.Fatalf("kind %d should be a connector", kind)
		}
	}
	if Tile(KindEntrance).IsConnector() {
		t.Fatalf("entrance is a transition, not a floor connector")
	}
}

func TestTileContentConstructors(t *testing.T) {
	if !Empty.IsEmpty() {
		t.Fatalf("Empty must report IsEmpty")
	}
	static := StaticContent(Tile(KindGrass))
	if static.Kind != ContentStatic || static.IsEmpty() {
		t.Fatalf("static content misclassified: %+v", static)
	}
	id := uuid.New()
	ref := EntityContent(id)
	if ref.Kind != ContentEntity || ref.Entity != id {
		t.Fatalf("entity content misclassified: %+v", ref)
	}
}

func TestTileRefFrames(t *testing.T) {
	world := WorldRef(TilePos{X: 1, Y: 2})
	if !world.IsWorld() {
		t.Fatalf("world ref must report IsWorld")
	}
	container := uuid.New()
	floor := FloorRef(container, 2, TilePos{X: 3, Y: 4})
	if floor.IsWorld() {
		t.Fatalf("floor ref must not report IsWorld")
	}
	frame := ContainerFrame(container, 2)
	if !frame.Inside || frame.Container != container || frame.Floor != 2 {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if WorldFrame.Inside {
		t.Fatalf("world frame must not be inside a container")
	}
}

func TestDirectionVectorsMatchAngles(t *testing.T) {
	for _, dir := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
		dx, dy := dir.Vector()
		if dx == 0 && dy == 0 {
			t.Fatalf("%v produced a zero vector", dir)
		}
		ox, oy := dir.Opposite().Vector()
		if dx != -ox || dy != -oy {
			t.Fatalf("%v opposite vector mismatch", dir)
		}
	}
}
