package grid

import (
	"math"
	"testing"
)

func TestWorldPosTileFloorsNegativeCoordinates(t *testing.T) {
	cases := []struct {
		pos  WorldPos
		want TilePos
	}{
		{WorldPos{X: 0, Y: 0}, TilePos{X: 0, Y: 0}},
		{WorldPos{X: TileSize - 0.001, Y: TileSize - 0.001}, TilePos{X: 0, Y: 0}},
		{WorldPos{X: TileSize, Y: TileSize}, TilePos{X: 1, Y: 1}},
		{WorldPos{X: -0.001, Y: -0.001}, TilePos{X: -1, Y: -1}},
		{WorldPos{X: -TileSize, Y: -TileSize}, TilePos{X: -1, Y: -1}},
		{WorldPos{X: -TileSize - 0.001, Y: 0}, TilePos{X: -2, Y: 0}},
	}
	for _, tc := range cases {
		if got := tc.pos.Tile(); got != tc.want {
			t.Fatalf("Tile(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestTileCenterRoundTrip(t *testing.T) {
	for y := -12; y <= 12; y++ {
		for x := -12; x <= 12; x++ {
			tile := TilePos{X: x, Y: y}
			if got := tile.Center().Tile(); got != tile {
				t.Fatalf("round trip of %v produced %v", tile, got)
			}
		}
	}
}

func TestWorldPosIsFinite(t *testing.T) {
	if !(WorldPos{X: 1, Y: 2}).IsFinite() {
		t.Fatalf("expected finite position to report finite")
	}
	bad := []WorldPos{
		{X: math.NaN(), Y: 0},
		{X: 0, Y: math.NaN()},
		{X: math.Inf(1), Y: 0},
		{X: 0, Y: math.Inf(-1)},
	}
	for _, pos := range bad {
		if pos.IsFinite() {
			t.Fatalf("expected %v to report non-finite", pos)
		}
	}
}

func TestLocalWorldTranslationInverts(t *testing.T) {
	origin := WorldPos{X: 320, Y: -96}
	world := WorldPos{X: 352.5, Y: -64.25}
	local := WorldToLocal(origin, world)
	if got := LocalToWorld(origin, local); got != world {
		t.Fatalf("translation round trip produced %v, want %v", got, world)
	}
}

func TestDistanceHelpersAgree(t *testing.T) {
	a := WorldPos{X: 3, Y: 4}
	b := WorldPos{}
	if d := a.DistanceTo(b); math.Abs(d-5) > 1e-9 {
		t.Fatalf("DistanceTo = %v, want 5", d)
	}
	if d := a.DistanceSquaredTo(b); math.Abs(d-25) > 1e-9 {
		t.Fatalf("DistanceSquaredTo = %v, want 25", d)
	}
}
