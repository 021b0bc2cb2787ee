package world

import (
	"math"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

const spatialCellSizeTiles = 4

type cellKey struct {
	X int
	Y int
}

// cellIndex buckets exterior entities into coarse grid cells so radius
// queries only touch the cells overlapped by the query circle.
type cellIndex struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]uuid.UUID
	entries     map[uuid.UUID][]cellKey
}

func newCellIndex() *cellIndex {
	size := spatialCellSizeTiles * grid.TileSize
	return &cellIndex{
		cellSize:    size,
		invCellSize: 1.0 / size,
		cells:       make(map[cellKey][]uuid.UUID),
		entries:     make(map[uuid.UUID][]cellKey),
	}
}

func (idx *cellIndex) cellFor(pos grid.WorldPos) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X * idx.invCellSize)),
		Y: int(math.Floor(pos.Y * idx.invCellSize)),
	}
}

// Insert registers an entity under the cells covered by its occupied tiles.
func (idx *cellIndex) Insert(id uuid.UUID, tiles []grid.TilePos) {
	if idx == nil || id == uuid.Nil {
		return
	}
	seen := make(map[cellKey]struct{}, len(tiles))
	cells := make([]cellKey, 0, len(tiles))
	for _, tile := range tiles {
		cell := idx.cellFor(tile.Center())
		if _, dup := seen[cell]; dup {
			continue
		}
		seen[cell] = struct{}{}
		cells = append(cells, cell)
		idx.cells[cell] = append(idx.cells[cell], id)
	}
	idx.entries[id] = cells
}

// Remove drops an entity from every cell it was registered under.
func (idx *cellIndex) Remove(id uuid.UUID) {
	if idx == nil {
		return
	}
	cells, ok := idx.entries[id]
	if !ok {
		return
	}
	for _, cell := range cells {
		bucket := idx.cells[cell]
		for i := range bucket {
			if bucket[i] != id {
				continue
			}
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
		if len(bucket) == 0 {
			delete(idx.cells, cell)
		} else {
			idx.cells[cell] = bucket
		}
	}
	delete(idx.entries, id)
}

// Query returns the ids registered in any cell overlapped by the circle.
// Callers still distance-filter the candidates.
func (idx *cellIndex) Query(center grid.WorldPos, radius float64) []uuid.UUID {
	if idx == nil || radius < 0 {
		return nil
	}
	minCell := idx.cellFor(grid.WorldPos{X: center.X - radius, Y: center.Y - radius})
	maxCell := idx.cellFor(grid.WorldPos{X: center.X + radius, Y: center.Y + radius})
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for y := minCell.Y; y <= maxCell.Y; y++ {
		for x := minCell.X; x <= maxCell.X; x++ {
			for _, id := range idx.cells[cellKey{X: x, Y: y}] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
