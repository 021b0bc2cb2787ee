package world

import "errors"

var (
	// ErrOccupiedTile signals a spawn or tile mutation that targets a slot
	// already holding content. Nothing is written on failure.
	ErrOccupiedTile = errors.New("tile already occupied")

	// ErrDanglingReference signals a tile slot that points at an entity with
	// no backing record. It is self-healed at the query site and never
	// propagates to gameplay callers.
	ErrDanglingReference = errors.New("dangling entity reference")

	// ErrInvalidPosition signals a non-finite coordinate or a reference to a
	// container or floor that does not exist.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrStaleResult signals a cached visibility result whose structural
	// version no longer matches the world. The vision engine recomputes
	// rather than serving one.
	ErrStaleResult = errors.New("stale visibility result")

	// ErrBlocked signals a movement request into a non-walkable tile or a
	// solid entity.
	ErrBlocked = errors.New("destination blocked")
)
