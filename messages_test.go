package server

import (
	"testing"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/vision"
	"mech-arena/server/internal/world"
)

func TestVisibleTilesOrderedAndResolved(t *testing.T) {
	tiles := world.NewTileMap()
	if err := tiles.SetStaticTile(grid.WorldRef(grid.TilePos{X: 2, Y: 1}), grid.Tile(grid.KindRock)); err != nil {
		t.Fatalf("set static tile: %v", err)
	}

	container := uuid.New()
	refs := []grid.TileRef{
		grid.FloorRef(container, 1, grid.TilePos{X: 0, Y: 0}),
		grid.WorldRef(grid.TilePos{X: 5, Y: 0}),
		grid.WorldRef(grid.TilePos{X: 2, Y: 1}),
		grid.FloorRef(container, 0, grid.TilePos{X: 3, Y: 2}),
		grid.WorldRef(grid.TilePos{X: 1, Y: 1}),
	}
	result := &vision.Result{Tiles: make(map[grid.TileRef]float64, len(refs))}
	for _, ref := range refs {
		result.Tiles[ref] = 1
	}

	entries := visibleTiles(result, vision.Snapshot{Tiles: tiles})
	if len(entries) != len(refs) {
		t.Fatalf("entries = %d, want %d", len(entries), len(refs))
	}

	// Exterior tiles (zero container uuid) come first, row-major, then
	// container tiles ordered by floor.
	want := []VisibleTile{
		{X: 5, Y: 0, Attenuation: 1, Kind: "empty"},
		{X: 1, Y: 1, Attenuation: 1, Kind: "empty"},
		{X: 2, Y: 1, Attenuation: 1, Kind: "rock"},
		{Container: container, Floor: 0, X: 3, Y: 2, Attenuation: 1, Kind: "empty"},
		{Container: container, Floor: 1, X: 0, Y: 0, Attenuation: 1, Kind: "empty"},
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, entry, want[i])
		}
	}
}

func TestVisibleTilesEmptyResult(t *testing.T) {
	if got := visibleTiles(nil, vision.Snapshot{}); got != nil {
		t.Fatalf("nil result should yield nil, got %+v", got)
	}
	if got := visibleTiles(&vision.Result{}, vision.Snapshot{}); got != nil {
		t.Fatalf("empty result should yield nil, got %+v", got)
	}
}
