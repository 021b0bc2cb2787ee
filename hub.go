package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/sim"
	"mech-arena/server/internal/telemetry"
	"mech-arena/server/internal/vision"
	"mech-arena/server/internal/world"
	"mech-arena/server/logging"
	"mech-arena/server/logging/lifecycle"
	"mech-arena/server/logging/network"
	"mech-arena/server/logging/simulation"
)

const (
	defaultSendBuffer      = 16
	defaultHeartbeatEvery  = 2 * time.Second
	defaultDisconnectAfter = 15 * time.Second
)

// HubConfig bundles the tunables for a hub instance.
type HubConfig struct {
	World           world.Config
	Loop            sim.LoopConfig
	Logger          telemetry.Logger
	Metrics         *logging.Metrics
	SendBuffer      int
	HeartbeatEvery  time.Duration
	DisconnectAfter time.Duration
	ViewRange       float64
}

// DefaultHubConfig returns the configuration used by the standalone server.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		World: world.DefaultConfig(),
		Loop: sim.LoopConfig{
			TickRate:        15,
			CatchupMaxTicks: 4,
			CommandCapacity: 512,
			PerActorLimit:   8,
			WarningStep:     128,
		},
		SendBuffer:      defaultSendBuffer,
		HeartbeatEvery:  defaultHeartbeatEvery,
		DisconnectAfter: defaultDisconnectAfter,
	}
}

// subscriber is one websocket session's outbound queue. The hub never
// blocks on a slow client: a full queue drops the frame and bumps the
// dropped counter instead.
type subscriber struct {
	id        uuid.UUID
	send      chan []byte
	closeOnce sync.Once
	dropped   uint64
	queueHigh int
}

// Messages returns the outbound frame queue for the session writer.
func (s *subscriber) Messages() <-chan []byte {
	return s.send
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}

// Hub owns the world, the simulation loop, the visibility engine, and the
// connected subscribers. All world access is serialized under mu; the
// visibility pass runs read-only between ticks.
type Hub struct {
	mu          sync.Mutex
	cfg         HubConfig
	logger      telemetry.Logger
	metrics     *logging.Metrics
	publisher   logging.Publisher
	clock       logging.Clock
	world       *world.World
	core        *sim.WorldCore
	loop        *sim.Loop
	vision      *vision.Engine
	subscribers map[uuid.UUID]*subscriber
	rtts        map[uuid.UUID]time.Duration

	overrunStreak int
}

// NewHub builds a hub around a freshly constructed world.
func NewHub(cfg HubConfig, publisher logging.Publisher) (*Hub, error) {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = logging.NewMetrics()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = defaultHeartbeatEvery
	}
	if cfg.DisconnectAfter <= 0 {
		cfg.DisconnectAfter = defaultDisconnectAfter
	}

	w, err := world.New(cfg.World, world.Deps{Publisher: publisher})
	if err != nil {
		return nil, err
	}

	core := sim.NewWorldCore(w, sim.Deps{
		Logger:    logger,
		Metrics:   telemetry.WrapMetrics(metrics),
		Clock:     logging.SystemClock{},
		Publisher: publisher,
		RNG:       w.SubsystemRNG("sim"),
	})

	h := &Hub{
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		publisher:   publisher,
		clock:       logging.SystemClock{},
		world:       w,
		core:        core,
		vision:      vision.NewEngine(),
		subscribers: make(map[uuid.UUID]*subscriber),
		rtts:        make(map[uuid.UUID]time.Duration),
	}
	h.loop = sim.NewLoop(core, cfg.Loop, sim.LoopHooks{
		OnQueueWarning: func(length int) {
			metrics.TelemetryStore(telemetryKeyQueueDepth, uint64(length))
		},
	})
	return h, nil
}

// World exposes the underlying world for tests and wiring code.
func (h *Hub) World() *world.World {
	return h.world
}

// TickRate reports the configured simulation frequency.
func (h *Hub) TickRate() int {
	if h.cfg.Loop.TickRate > 0 {
		return h.cfg.Loop.TickRate
	}
	return 15
}

// HeartbeatInterval reports how often clients are expected to ping.
func (h *Hub) HeartbeatInterval() time.Duration {
	return h.cfg.HeartbeatEvery
}

// Join registers a new player and returns its spawn placement.
func (h *Hub) Join(name string) JoinResponse {
	h.mu.Lock()
	player := h.world.AddPlayer(name)
	player.LastHeartbeat = h.clock.Now()
	h.mu.Unlock()

	lifecycle.PlayerJoined(context.Background(), h.publisher, h.core.Tick(),
		logging.EntityRef{ID: player.ID.String(), Kind: logging.EntityKindPlayer},
		lifecycle.PlayerJoinedPayload{SpawnX: player.Pos.X, SpawnY: player.Pos.Y}, nil)

	return JoinResponse{
		Ver:      ProtocolVersion,
		Type:     "joined",
		ID:       player.ID,
		Name:     player.Name,
		TickRate: h.TickRate(),
		SpawnX:   player.Pos.X,
		SpawnY:   player.Pos.Y,
	}
}

// Subscribe associates an outbound queue with an existing player. Any
// previous session for the same player is closed first.
func (h *Hub) Subscribe(playerID uuid.UUID) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	player, ok := h.world.Player(playerID)
	if !ok {
		return nil, false
	}
	player.LastHeartbeat = h.clock.Now()

	if existing, ok := h.subscribers[playerID]; ok {
		existing.close()
	}
	sub := &subscriber{id: playerID, send: make(chan []byte, h.cfg.SendBuffer)}
	h.subscribers[playerID] = sub
	return sub, true
}

// Disconnect removes a player, its session, and its visibility cache.
func (h *Hub) Disconnect(playerID uuid.UUID, reason string) {
	h.mu.Lock()
	h.disconnectLocked(playerID)
	h.mu.Unlock()

	lifecycle.PlayerDisconnected(context.Background(), h.publisher, h.core.Tick(),
		logging.EntityRef{ID: playerID.String(), Kind: logging.EntityKindPlayer},
		lifecycle.PlayerDisconnectedPayload{Reason: reason}, nil)
}

func (h *Hub) disconnectLocked(playerID uuid.UUID) {
	if sub, ok := h.subscribers[playerID]; ok {
		sub.close()
		delete(h.subscribers, playerID)
	}
	h.world.RemovePlayer(playerID)
	h.core.DropActor(playerID)
	h.vision.Forget(playerID)
	delete(h.rtts, playerID)
}

// EnqueueCommand stages a client command for the next tick.
func (h *Hub) EnqueueCommand(cmd sim.Command) (bool, string) {
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = h.clock.Now()
	}
	cmd.OriginTick = h.core.Tick() + 1
	return h.loop.Enqueue(cmd)
}

// UpdateHeartbeat records liveness and round-trip time for a player.
// Heartbeats bypass the command queue so a saturated buffer cannot starve
// liveness tracking.
func (h *Hub) UpdateHeartbeat(playerID uuid.UUID, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	player, ok := h.world.Player(playerID)
	if !ok {
		return 0, false
	}
	player.LastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			h.rtts[playerID] = rtt
		}
	}
	return h.rtts[playerID], true
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes. Each tick applies staged commands, steps the world, and fans a
// per-viewer filtered state frame out to every subscriber.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	tickRate := h.TickRate()
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	budget := time.Second / time.Duration(tickRate)
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds
	if h.cfg.Loop.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(h.cfg.Loop.CatchupMaxTicks)
	}

	last := h.clock.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := h.clock.Now()
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
			}
			last = now

			start := h.clock.Now()
			h.advance(now, dt)
			duration := h.clock.Now().Sub(start)
			h.observeTickDuration(duration, budget)
		}
	}
}

// advance runs one tick and broadcasts the result while holding the world
// lock. The visibility pass is read-only, so per-viewer computations fan
// out in parallel over the stepped state.
func (h *Hub) advance(now time.Time, dt float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, player := range h.world.Players() {
		if now.Sub(player.LastHeartbeat) > h.cfg.DisconnectAfter {
			h.logger.Printf("disconnecting %s after heartbeat timeout", player.ID)
			h.disconnectLocked(player.ID)
		}
	}

	result := h.loop.Advance(sim.LoopTickContext{Tick: h.core.Tick() + 1, Now: now, Delta: dt})
	h.broadcastLocked(result.Snapshot)
}

type viewerFrame struct {
	player *world.PlayerState
	sub    *subscriber
	result *vision.Result
}

func (h *Hub) broadcastLocked(snap sim.Snapshot) {
	if len(h.subscribers) == 0 {
		return
	}

	visSnap := vision.Snapshot{Tiles: h.world.Tiles(), Entities: h.world.Entities()}

	viewers := make([]*viewerFrame, 0, len(h.subscribers))
	for id, sub := range h.subscribers {
		player, ok := h.world.Player(id)
		if !ok {
			continue
		}
		viewers = append(viewers, &viewerFrame{player: player, sub: sub})
	}

	var wg sync.WaitGroup
	for _, v := range viewers {
		wg.Add(1)
		go func(v *viewerFrame) {
			defer wg.Done()
			v.result = h.vision.Compute(vision.ViewerContext{
				ID:       v.player.ID,
				Pos:      v.player.Pos,
				Frame:    v.player.Frame,
				MaxRange: h.cfg.ViewRange,
			}, visSnap)
		}(v)
	}
	wg.Wait()

	for _, v := range viewers {
		msg := h.buildStateMessage(snap, visSnap, v)
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.Printf("failed to marshal state for %s: %v", v.player.ID, err)
			continue
		}
		h.deliver(v.sub, data, snap.Tick)
	}
}

// buildStateMessage filters the shared snapshot down to what one viewer
// can see. The viewer always sees itself.
func (h *Hub) buildStateMessage(snap sim.Snapshot, visSnap vision.Snapshot, v *viewerFrame) StateMessage {
	msg := StateMessage{
		Ver:     ProtocolVersion,
		Type:    "state",
		Tick:    snap.Tick,
		Version: snap.Version,
		You:     v.player.ID,
		Frame: sim.FrameView{
			Inside:    v.player.Frame.Inside,
			Container: v.player.Frame.Container,
			Floor:     int(v.player.Frame.Floor),
		},
		Visible: visibleTiles(v.result, visSnap),
	}

	for _, p := range snap.Players {
		if p.ID == v.player.ID {
			msg.Players = append(msg.Players, p)
			continue
		}
		ref := playerTileRef(p)
		if _, ok := v.result.Visible(ref); ok {
			msg.Players = append(msg.Players, p)
		}
	}

	for _, c := range snap.Containers {
		if h.containerVisible(c, v) {
			msg.Containers = append(msg.Containers, c)
		}
	}

	for _, e := range snap.Entities {
		ref := grid.TileRef{
			Container: e.Anchor.Container,
			Floor:     grid.FloorIndex(e.Anchor.Floor),
			Pos:       grid.TilePos{X: e.Anchor.X, Y: e.Anchor.Y},
		}
		if _, ok := v.result.Visible(ref); ok {
			msg.Entities = append(msg.Entities, e)
		}
	}

	return msg
}

// containerVisible reports whether any exterior footprint tile of the
// container is in the viewer's visible set, or the viewer is inside it.
func (h *Hub) containerVisible(c sim.ContainerView, v *viewerFrame) bool {
	if v.player.Frame.Inside && v.player.Frame.Container == c.ID {
		return true
	}
	origin := grid.WorldPos{X: c.X, Y: c.Y}.Tile()
	for dy := 0; dy < world.ContainerSizeTiles; dy++ {
		for dx := 0; dx < world.ContainerSizeTiles; dx++ {
			ref := grid.WorldRef(grid.TilePos{X: origin.X + dx, Y: origin.Y + dy})
			if _, ok := v.result.Visible(ref); ok {
				return true
			}
		}
	}
	return false
}

// deliver hands a frame to the session queue without blocking. A full
// queue means the client is not keeping up with the tick rate; the frame
// is dropped and the slowness reported.
func (h *Hub) deliver(sub *subscriber, data []byte, tick uint64) {
	select {
	case sub.send <- data:
		h.metrics.TelemetryAdd(telemetryKeyBroadcastMessages, 1)
		h.metrics.TelemetryAdd(telemetryKeyBroadcastBytes, uint64(len(data)))
		if depth := len(sub.send); depth > sub.queueHigh {
			sub.queueHigh = depth
		}
	default:
		sub.dropped++
		h.metrics.TelemetryAdd(telemetryKeySlowClientDrops, 1)
		// Log the first drop and every power of two after it.
		if sub.dropped&(sub.dropped-1) == 0 {
			network.ClientSlow(context.Background(), h.publisher, tick,
				logging.EntityRef{ID: sub.id.String(), Kind: logging.EntityKindPlayer},
				network.ClientSlowPayload{DroppedFrames: sub.dropped, QueueDepth: len(sub.send)}, nil)
		}
	}
}

// observeTickDuration reports ticks that exceed their time budget.
func (h *Hub) observeTickDuration(duration, budget time.Duration) {
	if duration <= budget {
		h.overrunStreak = 0
		return
	}
	h.overrunStreak++
	h.metrics.TelemetryAdd(telemetryKeyTickOverruns, 1)
	simulation.TickBudgetOverrun(context.Background(), h.publisher, h.core.Tick(),
		simulation.TickBudgetOverrunPayload{
			DurationMillis: duration.Milliseconds(),
			BudgetMillis:   budget.Milliseconds(),
			Ratio:          float64(duration) / float64(budget),
			Streak:         uint64(h.overrunStreak),
		}, nil)
}

func playerTileRef(p sim.PlayerView) grid.TileRef {
	tile := grid.WorldPos{X: p.X, Y: p.Y}.Tile()
	if p.Frame.Inside {
		return grid.FloorRef(p.Frame.Container, grid.FloorIndex(p.Frame.Floor), tile)
	}
	return grid.WorldRef(tile)
}

// ReportClientError publishes a socket failure for a connected player.
func (h *Hub) ReportClientError(playerID uuid.UUID, op string, err error) {
	if err == nil {
		return
	}
	network.ClientError(context.Background(), h.publisher, h.core.Tick(),
		logging.EntityRef{ID: playerID.String(), Kind: logging.EntityKindPlayer},
		network.ClientErrorPayload{Op: op, Error: err.Error()}, nil)
}

// VisibilityFor computes the current visible set for one connected
// viewer outside the broadcast path. Used by diagnostics and tests.
func (h *Hub) VisibilityFor(playerID uuid.UUID) (*vision.Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	player, ok := h.world.Player(playerID)
	if !ok {
		return nil, false
	}
	result := h.vision.Compute(vision.ViewerContext{
		ID:       player.ID,
		Pos:      player.Pos,
		Frame:    player.Frame,
		MaxRange: h.cfg.ViewRange,
	}, vision.Snapshot{Tiles: h.world.Tiles(), Entities: h.world.Entities()})
	return result, true
}

// diagnosticsPlayer is one row of the diagnostics endpoint payload.
type diagnosticsPlayer struct {
	ID            uuid.UUID `json:"id"`
	LastHeartbeat int64     `json:"lastHeartbeat"`
	RTTMillis     int64     `json:"rtt"`
}

// DiagnosticsSnapshot exposes liveness data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(h.subscribers))
	for _, player := range h.world.Players() {
		players = append(players, diagnosticsPlayer{
			ID:            player.ID,
			LastHeartbeat: player.LastHeartbeat.UnixMilli(),
			RTTMillis:     h.rtts[player.ID].Milliseconds(),
		})
	}
	return players
}

// TelemetrySnapshot copies the hub's counters for the diagnostics
// endpoint.
func (h *Hub) TelemetrySnapshot() map[string]uint64 {
	return h.metrics.TelemetrySnapshot()
}
