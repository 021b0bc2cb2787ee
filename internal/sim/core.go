package sim

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/world"
	"mech-arena/server/logging"
	"mech-arena/server/logging/lifecycle"
)

// MoveSpeed is how fast an actor travels at full intent, in world units per
// second.
const MoveSpeed = 4 * grid.TileSize

// InteractReach is how far in front of an actor a station interaction
// resolves.
const InteractReach = 1.5 * grid.TileSize

// WorldCore advances the arena world one tick at a time. It owns movement
// intents, station interactions, and the tick counter; the world itself
// owns all spatial state. The tick counter is atomic because command
// intake stamps origin ticks from network goroutines while the
// simulation goroutine advances it.
type WorldCore struct {
	deps    Deps
	world   *world.World
	tick    atomic.Uint64
	intents map[uuid.UUID]grid.WorldPos
}

// NewWorldCore binds a core to an existing world.
func NewWorldCore(w *world.World, deps Deps) *WorldCore {
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	return &WorldCore{
		deps:    deps,
		world:   w,
		intents: make(map[uuid.UUID]grid.WorldPos),
	}
}

// Deps returns the injected dependencies.
func (c *WorldCore) Deps() Deps {
	if c == nil {
		return Deps{}
	}
	return c.deps
}

// World exposes the underlying world to wiring code.
func (c *WorldCore) World() *world.World {
	if c == nil {
		return nil
	}
	return c.world
}

// Tick returns the last completed tick number.
func (c *WorldCore) Tick() uint64 {
	if c == nil {
		return 0
	}
	return c.tick.Load()
}

// Apply stages the drained commands against the world. Validation failures
// (a blocked move, an out-of-range interaction) are normal outcomes, not
// errors; the command simply has no effect.
func (c *WorldCore) Apply(cmds []Command) error {
	if c == nil || c.world == nil {
		return nil
	}
	for _, cmd := range cmds {
		player, ok := c.world.Player(cmd.ActorID)
		if !ok {
			continue
		}
		switch cmd.Type {
		case CommandMove:
			if cmd.Move == nil {
				continue
			}
			c.applyMove(player, *cmd.Move)
		case CommandAction:
			c.applyAction(player)
		case CommandEnter:
			if cmd.Enter == nil {
				continue
			}
			if err := c.world.EnterContainer(player.ID, cmd.Enter.Container, cmd.Enter.Floor); err == nil {
				delete(c.intents, player.ID)
				c.publishFrameChanged(player)
			}
		case CommandExit:
			if err := c.world.ExitContainer(player.ID); err == nil {
				delete(c.intents, player.ID)
				c.publishFrameChanged(player)
			}
		case CommandHeartbeat:
			if cmd.Heartbeat != nil {
				player.LastHeartbeat = cmd.Heartbeat.ReceivedAt
			}
		}
	}
	return nil
}

func (c *WorldCore) applyMove(player *world.PlayerState, move MoveCommand) {
	player.Facing = move.Facing
	intent := grid.WorldPos{X: move.DX, Y: move.DY}
	if !intent.IsFinite() || (intent.X == 0 && intent.Y == 0) {
		delete(c.intents, player.ID)
		return
	}
	length := intent.DistanceTo(grid.WorldPos{})
	c.intents[player.ID] = intent.Scale(1 / length)
}

// applyAction toggles the station on the tile the actor faces, if one is in
// reach.
func (c *WorldCore) applyAction(player *world.PlayerState) {
	fx, fy := player.Facing.Vector()
	probe := player.Pos.Add(grid.WorldPos{X: fx * grid.TileSize, Y: fy * grid.TileSize})
	ref, ok := c.world.Tiles().ResolveRef(probe, player.Frame)
	if !ok {
		return
	}
	id, ok := c.world.Entities().QueryAt(ref)
	if !ok {
		return
	}
	record, ok := c.world.Entities().Record(id)
	if !ok || record.Attributes.Station == nil {
		return
	}
	station := record.Attributes.Station
	if reach := station.InteractRange; reach > 0 {
		if record.Anchor.Pos.Center().DistanceTo(player.Pos) > reach+InteractReach {
			return
		}
	}
	station.Operating = !station.Operating
}

// Step integrates movement intents and container motion for one tick.
func (c *WorldCore) Step(dt float64) {
	if c == nil || c.world == nil || dt <= 0 {
		return
	}
	c.tick.Add(1)
	for id, intent := range c.intents {
		player, ok := c.world.Player(id)
		if !ok {
			delete(c.intents, id)
			continue
		}
		target := player.Pos.Add(intent.Scale(MoveSpeed * dt))
		// A blocked move leaves the player in place; intent persists so a
		// later tick can succeed once the way is clear.
		_ = c.world.MovePlayer(player.ID, target)
	}
	c.world.Step(dt)
}

// DropActor clears per-actor intent state when a player disconnects.
func (c *WorldCore) DropActor(id uuid.UUID) {
	if c == nil {
		return
	}
	delete(c.intents, id)
}

// Snapshot captures the current state for read-only consumers. Slices are
// ordered by id so snapshots are deterministic for a given state.
func (c *WorldCore) Snapshot() Snapshot {
	if c == nil || c.world == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Tick:    c.tick.Load(),
		Version: c.world.Version(),
	}

	for _, p := range c.world.Players() {
		snap.Players = append(snap.Players, PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			X:      p.Pos.X,
			Y:      p.Pos.Y,
			Facing: p.Facing.String(),
			Frame: FrameView{
				Inside:    p.Frame.Inside,
				Container: p.Frame.Container,
				Floor:     int(p.Frame.Floor),
			},
		})
	}
	sort.Slice(snap.Players, func(i, j int) bool {
		return snap.Players[i].ID.String() < snap.Players[j].ID.String()
	})

	for _, container := range c.world.Tiles().Containers() {
		snap.Containers = append(snap.Containers, ContainerView{
			ID:     container.ID,
			X:      container.Pos.X,
			Y:      container.Pos.Y,
			VX:     container.Velocity.X,
			VY:     container.Velocity.Y,
			Team:   string(container.Team),
			Floors: len(container.Floors),
		})
	}
	sort.Slice(snap.Containers, func(i, j int) bool {
		return snap.Containers[i].ID.String() < snap.Containers[j].ID.String()
	})

	for _, record := range c.world.Entities().Records() {
		snap.Entities = append(snap.Entities, EntityView{
			ID:         record.ID,
			Anchor:     NewTileRefView(record.Anchor),
			Attributes: record.Attributes,
		})
	}
	sort.Slice(snap.Entities, func(i, j int) bool {
		return snap.Entities[i].ID.String() < snap.Entities[j].ID.String()
	})

	return snap
}

func (c *WorldCore) publishFrameChanged(player *world.PlayerState) {
	payload := lifecycle.FrameChangedPayload{
		Inside: player.Frame.Inside,
		Floor:  int(player.Frame.Floor),
	}
	if player.Frame.Inside {
		payload.Container = player.Frame.Container.String()
	}
	lifecycle.FrameChanged(context.Background(), c.deps.Publisher, c.tick.Load(),
		logging.EntityRef{ID: player.ID.String(), Kind: logging.EntityKindPlayer}, payload, nil)
}

var _ EngineCore = (*WorldCore)(nil)
