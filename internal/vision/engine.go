package vision

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/world"
)

// Tuning constants for the raycast. One-degree rays at half-tile steps keep
// a full recompute at a few hundred microseconds while staying accurate
// enough for single-tile walls; the engine tests pin the observable
// behavior, so these can be retuned without touching callers.
const (
	// RayAngleStep is the angular resolution of the sweep, in degrees.
	RayAngleStep = 1.0
	// StepDistance is how far a ray advances per sample, in world units.
	StepDistance = grid.TileSize / 2
	// CacheDeadZone is how far a viewer may drift, in world units, before
	// a cached result is considered stale.
	CacheDeadZone = 1.0
	// WindowHalfAngle bounds the directional cone opened by a window, in
	// degrees either side of its facing.
	WindowHalfAngle = 30.0
	// WindowExtensionTiles is how far past the hull a window cone reaches.
	WindowExtensionTiles = 8
	// WindowConeFloor is the minimum attenuation applied to tiles seen
	// through a window cone. Cone tiles are visible but never crisp.
	WindowConeFloor = 0.35
	// DefaultMaxRange applies when a viewer does not carry its own range.
	DefaultMaxRange = 16 * grid.TileSize
)

// ViewerContext identifies one viewer for a visibility computation. The
// frame travels with the request; the engine holds no notion of a current
// container or floor.
type ViewerContext struct {
	ID       uuid.UUID
	Pos      grid.WorldPos
	Frame    grid.Frame
	MaxRange float64
}

// Snapshot is the read-only world state a computation runs against. The
// simulation guarantees no mutation interleaves with the visibility pass,
// so distinct viewers can be computed in parallel over one snapshot.
type Snapshot struct {
	Tiles    *world.TileMap
	Entities *world.EntityStore
}

// Result is the visible tile set for one viewer. Attenuation is 0 for a
// crisply visible tile and approaches 1 at the edge of perception.
type Result struct {
	Tiles     map[grid.TileRef]float64
	Version   uint64
	ViewerPos grid.WorldPos
	Frame     grid.Frame
}

// Visible reports whether a tile is in the set and with what attenuation.
func (r *Result) Visible(ref grid.TileRef) (float64, bool) {
	if r == nil {
		return 0, false
	}
	att, ok := r.Tiles[ref]
	return att, ok
}

// Len returns the number of visible tiles.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Tiles)
}

// Validate reports whether the result may still be served against the
// snapshot. A structural version mismatch yields ErrStaleResult; the
// engine recomputes instead of serving a stale set.
func (r *Result) Validate(snap Snapshot) error {
	if r == nil || snap.Tiles == nil {
		return fmt.Errorf("visibility result unavailable: %w", world.ErrStaleResult)
	}
	if version := snap.Tiles.Version(); r.Version != version {
		return fmt.Errorf("visibility result at version %d, world at %d: %w",
			r.Version, version, world.ErrStaleResult)
	}
	return nil
}

// Engine computes and caches per-viewer visibility. A cached result is
// reused while the world's structural version is unchanged and the viewer
// has not drifted out of the dead-zone.
type Engine struct {
	mu    sync.Mutex
	cache map[uuid.UUID]*Result
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[uuid.UUID]*Result)}
}

// Compute returns the visible tile set for the viewer, reusing the cached
// result when still valid. Degenerate input resolves to an empty result,
// never an error: visibility fails closed.
func (e *Engine) Compute(viewer ViewerContext, snap Snapshot) *Result {
	if e == nil || snap.Tiles == nil {
		return &Result{Tiles: map[grid.TileRef]float64{}}
	}

	e.mu.Lock()
	cached, ok := e.cache[viewer.ID]
	e.mu.Unlock()
	if ok && cached.Validate(snap) == nil && cached.Frame == viewer.Frame &&
		cached.ViewerPos.DistanceTo(viewer.Pos) <= CacheDeadZone {
		return cached
	}

	result := e.compute(viewer, snap)

	e.mu.Lock()
	e.cache[viewer.ID] = result
	e.mu.Unlock()
	return result
}

// Forget drops the cached result for a disconnected viewer.
func (e *Engine) Forget(id uuid.UUID) {
	if e == nil {
		return
	}
	e.mu.Lock()
	delete(e.cache, id)
	e.mu.Unlock()
}

// Reset drops every cached result.
func (e *Engine) Reset() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.cache = make(map[uuid.UUID]*Result)
	e.mu.Unlock()
}

func (e *Engine) compute(viewer ViewerContext, snap Snapshot) *Result {
	result := &Result{
		Tiles:     make(map[grid.TileRef]float64),
		Version:   snap.Tiles.Version(),
		ViewerPos: viewer.Pos,
		Frame:     viewer.Frame,
	}
	if !viewer.Pos.IsFinite() {
		return result
	}
	if viewer.Frame.Inside {
		c, ok := snap.Tiles.Container(viewer.Frame.Container)
		if !ok || c.Floor(viewer.Frame.Floor) == nil {
			return result
		}
	}

	maxRange := viewer.MaxRange
	if maxRange <= 0 || math.IsInf(maxRange, 0) || math.IsNaN(maxRange) {
		maxRange = DefaultMaxRange
	}

	for deg := 0.0; deg < 360; deg += RayAngleStep {
		rad := deg * math.Pi / 180
		e.castRay(result, viewer, snap, math.Cos(rad), math.Sin(rad), maxRange)
	}
	return result
}

// castRay marches one ray outward, accumulating attenuation per tile
// entered. A blocking tile, or an accumulated total reaching 1, is still
// marked visible before the ray terminates.
func (e *Engine) castRay(result *Result, viewer ViewerContext, snap Snapshot, dirX, dirY, maxRange float64) {
	acc := 0.0
	var last grid.TileRef
	haveLast := false

	for d := 0.0; d <= maxRange; d += StepDistance {
		pos := grid.WorldPos{X: viewer.Pos.X + dirX*d, Y: viewer.Pos.Y + dirY*d}
		ref, ok := snap.Tiles.ResolveRef(pos, viewer.Frame)
		if !ok {
			return
		}
		if haveLast && ref == last {
			continue
		}
		last, haveLast = ref, true

		if viewer.Frame.Inside && outOfFloorBounds(ref.Pos) {
			return
		}

		sample := sampleAt(snap, ref)
		markVisible(result, ref, acc)

		if sample.window && viewer.Frame.Inside {
			e.unionWindowCone(result, snap, viewer, ref, sample.tile, acc+sample.coeff)
		}
		if sample.blocks {
			return
		}
		acc += sample.coeff
		if acc >= 1 {
			return
		}
	}
}

type tileSample struct {
	tile   grid.StaticTile
	coeff  float64
	blocks bool
	window bool
}

// sampleAt resolves the vision behavior of one slot. Entity-held slots
// consult the record's opacity attributes; a footprint slot with no
// interior content reads as opaque hull to exterior viewers.
func sampleAt(snap Snapshot, ref grid.TileRef) tileSample {
	content := snap.Tiles.ContentAt(ref)
	switch content.Kind {
	case grid.ContentStatic:
		tile := content.Static
		return tileSample{
			tile:   tile,
			coeff:  tile.VisionAttenuation(),
			blocks: tile.BlocksVision(),
			window: tile.IsWindow(),
		}
	case grid.ContentEntity:
		if snap.Entities == nil {
			return tileSample{}
		}
		record, ok := snap.Entities.Record(content.Entity)
		if !ok || record.Attributes.Opaque == nil {
			return tileSample{}
		}
		opaque := record.Attributes.Opaque
		return tileSample{coeff: opaque.Attenuation, blocks: opaque.BlocksCompletely}
	default:
		if !ref.IsWorld() {
			// Unset interior slot reached through the exterior footprint.
			return tileSample{blocks: true}
		}
		return tileSample{}
	}
}

func markVisible(result *Result, ref grid.TileRef, attenuation float64) {
	if best, ok := result.Tiles[ref]; !ok || attenuation < best {
		result.Tiles[ref] = attenuation
	}
}

func outOfFloorBounds(pos grid.TilePos) bool {
	return pos.X < 0 || pos.X >= world.FloorWidthTiles || pos.Y < 0 || pos.Y >= world.FloorHeightTiles
}

// unionWindowCone adds the bounded directional cone an interior viewer sees
// through a hull window. The cone is a union over exterior tiles within the
// half-angle of the window's facing, not a second raycast; that keeps the
// cost per window constant.
func (e *Engine) unionWindowCone(result *Result, snap Snapshot, viewer ViewerContext, windowRef grid.TileRef, tile grid.StaticTile, baseAttenuation float64) {
	c, ok := snap.Tiles.Container(viewer.Frame.Container)
	if !ok {
		return
	}
	origin := grid.LocalToWorld(c.Pos, windowRef.Pos.Center())
	fx, fy := tile.Facing.Vector()
	if fx == 0 && fy == 0 {
		return
	}

	attenuation := baseAttenuation
	if attenuation < WindowConeFloor {
		attenuation = WindowConeFloor
	}
	if attenuation >= 1 {
		return
	}

	reach := float64(WindowExtensionTiles) * grid.TileSize
	cosLimit := math.Cos(WindowHalfAngle * math.Pi / 180)
	originTile := origin.Tile()

	for dy := -WindowExtensionTiles; dy <= WindowExtensionTiles; dy++ {
		for dx := -WindowExtensionTiles; dx <= WindowExtensionTiles; dx++ {
			target := originTile.Offset(dx, dy).Center()
			vx := target.X - origin.X
			vy := target.Y - origin.Y
			dist := math.Hypot(vx, vy)
			if dist == 0 || dist > reach {
				continue
			}
			if (vx*fx+vy*fy)/dist < cosLimit {
				continue
			}
			markVisible(result, grid.WorldRef(originTile.Offset(dx, dy)), attenuation)
		}
	}
}
