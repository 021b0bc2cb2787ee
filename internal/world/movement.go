package world

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

// PositionEpsilon is the tolerance used when comparing actor coordinates.
// Values within it are considered unchanged.
const PositionEpsilon = 1e-6

// PositionsEqual reports whether two coordinate pairs are effectively the
// same under the epsilon tolerance.
func PositionsEqual(ax, ay, bx, by float64) bool {
	return math.Abs(ax-bx) <= PositionEpsilon && math.Abs(ay-by) <= PositionEpsilon
}

// ValidateMove checks whether an actor in the given frame may occupy the
// destination. Absence of a tile entry is the normal passable default; a
// static tile that is not walkable, or a solid entity, rejects the move.
func (w *World) ValidateMove(frame grid.Frame, to grid.WorldPos) error {
	if w == nil {
		return ErrInvalidPosition
	}
	if !to.IsFinite() {
		return fmt.Errorf("move to %v: %w", to, ErrInvalidPosition)
	}
	ref, ok := w.tiles.ResolveRef(to, frame)
	if !ok {
		return fmt.Errorf("move to %v: %w", to, ErrInvalidPosition)
	}
	content := w.tiles.ContentAt(ref)
	switch content.Kind {
	case grid.ContentStatic:
		if !content.Static.Walkable() {
			return fmt.Errorf("move onto %v: %w", ref.Pos, ErrBlocked)
		}
	case grid.ContentEntity:
		id, ok := w.entities.QueryAt(ref)
		if !ok {
			// Stale reference healed by the query; the slot is empty now.
			return nil
		}
		record, _ := w.entities.Record(id)
		if record != nil && record.Attributes.Solid != nil && record.Attributes.Solid.BlocksMovement {
			return fmt.Errorf("move onto entity %s: %w", id, ErrBlocked)
		}
	}
	return nil
}

// MovePlayer validates and commits a movement request in the player's
// current frame.
func (w *World) MovePlayer(id uuid.UUID, to grid.WorldPos) error {
	if w == nil {
		return ErrInvalidPosition
	}
	player, ok := w.players[id]
	if !ok {
		return fmt.Errorf("move unknown player %s: %w", id, ErrInvalidPosition)
	}
	if PositionsEqual(player.Pos.X, player.Pos.Y, to.X, to.Y) {
		return nil
	}
	if err := w.ValidateMove(player.Frame, to); err != nil {
		return err
	}
	player.Pos = to
	return nil
}

// EnterContainer atomically transitions a player from the exterior onto a
// container floor. The player appears at the floor's entrance position.
func (w *World) EnterContainer(playerID, containerID uuid.UUID, floor grid.FloorIndex) error {
	if w == nil {
		return ErrInvalidPosition
	}
	player, ok := w.players[playerID]
	if !ok {
		return fmt.Errorf("enter: unknown player %s: %w", playerID, ErrInvalidPosition)
	}
	container, ok := w.tiles.Container(containerID)
	if !ok || container.Floor(floor) == nil {
		return fmt.Errorf("enter container %s floor %d: %w", containerID, floor, ErrInvalidPosition)
	}
	if player.Frame.Inside {
		return fmt.Errorf("enter while inside %s: %w", player.Frame.Container, ErrInvalidPosition)
	}
	player.Frame = grid.ContainerFrame(containerID, floor)
	player.Pos = container.EntrancePos().Center()
	return nil
}

// ExitContainer atomically transitions a player back to the exterior, just
// below the container's footprint.
func (w *World) ExitContainer(playerID uuid.UUID) error {
	if w == nil {
		return ErrInvalidPosition
	}
	player, ok := w.players[playerID]
	if !ok {
		return fmt.Errorf("exit: unknown player %s: %w", playerID, ErrInvalidPosition)
	}
	if !player.Frame.Inside {
		return fmt.Errorf("exit while outside: %w", ErrInvalidPosition)
	}
	container, ok := w.tiles.Container(player.Frame.Container)
	if !ok {
		return fmt.Errorf("exit from missing container %s: %w", player.Frame.Container, ErrInvalidPosition)
	}
	extent := float64(ContainerSizeTiles) * grid.TileSize
	player.Frame = grid.WorldFrame
	player.Pos = container.Pos.Add(grid.WorldPos{X: extent / 2, Y: extent + grid.TileSize/2})
	return nil
}
