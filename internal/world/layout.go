package world

import (
	"mech-arena/server/internal/grid"
)

// Interior layout constants. Windows sit on the side walls every windowStep
// tiles; stairways link adjacent decks near the right edge.
const (
	windowStep   = 4
	stairwayX    = FloorWidthTiles - 3
	stairwayY    = FloorHeightTiles / 2
	cargoBayEndX = 5
)

// BuildInterior fills a container's floors with the default deck layout:
// perimeter metal walls with outward-facing windows, metal flooring, a
// cargo bay on deck 0, stairways between decks, and the boarding entrance
// on deck 0.
func BuildInterior(m *TileMap, c *Container) error {
	if m == nil || c == nil {
		return ErrInvalidPosition
	}
	for idx := range c.Floors {
		floor := grid.FloorIndex(idx)
		if err := buildDeck(m, c, floor); err != nil {
			return err
		}
	}
	return nil
}

func buildDeck(m *TileMap, c *Container, floor grid.FloorIndex) error {
	for y := 0; y < FloorHeightTiles; y++ {
		for x := 0; x < FloorWidthTiles; x++ {
			ref := grid.FloorRef(c.ID, floor, grid.TilePos{X: x, Y: y})
			tile, ok := deckTile(floor, x, y)
			if !ok {
				continue
			}
			if err := m.SetStaticTile(ref, tile); err != nil {
				return err
			}
		}
	}
	return nil
}

// deckTile decides what static tile belongs at a local deck position.
func deckTile(floor grid.FloorIndex, x, y int) (grid.StaticTile, bool) {
	onPerimeter := x == 0 || x == FloorWidthTiles-1 || y == 0 || y == FloorHeightTiles-1

	if onPerimeter {
		if floor == 0 && y == FloorHeightTiles-1 && isEntranceColumn(x) {
			return grid.Tile(grid.KindEntrance), true
		}
		if facing, ok := windowFacing(x, y); ok {
			return grid.Window(facing), true
		}
		return grid.Tile(grid.KindMetalWall), true
	}

	if pos := (grid.TilePos{X: x, Y: y}); pos == stairwayPos() {
		switch floor {
		case 0:
			return grid.Tile(grid.KindStairUp), true
		case FloorsPerContainer - 1:
			return grid.Tile(grid.KindStairDown), true
		default:
			// Middle decks carry a ladder linking both directions.
			return grid.Tile(grid.KindLadder), true
		}
	}

	if floor == 0 && x < cargoBayEndX {
		return grid.Tile(grid.KindCargoFloor), true
	}
	return grid.Tile(grid.KindMetalFloor), true
}

func stairwayPos() grid.TilePos {
	return grid.TilePos{X: stairwayX, Y: stairwayY}
}

func isEntranceColumn(x int) bool {
	center := FloorWidthTiles / 2
	return x == center || x == center-1
}

// windowFacing places a window every windowStep tiles on each wall, facing
// outward, skipping the corners.
func windowFacing(x, y int) (grid.Direction, bool) {
	interiorX := x > 0 && x < FloorWidthTiles-1
	interiorY := y > 0 && y < FloorHeightTiles-1
	switch {
	case y == 0 && interiorX && x%windowStep == 0:
		return grid.DirUp, true
	case y == FloorHeightTiles-1 && interiorX && x%windowStep == 0:
		return grid.DirDown, true
	case x == 0 && interiorY && y%2 == 0:
		return grid.DirLeft, true
	case x == FloorWidthTiles-1 && interiorY && y%2 == 0:
		return grid.DirRight, true
	default:
		return 0, false
	}
}
