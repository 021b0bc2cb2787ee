package ws

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mech-arena/server"
	"mech-arena/server/internal/grid"
	"mech-arena/server/internal/sim"
	"mech-arena/server/internal/telemetry"
)

// clientMessage is the envelope for every inbound websocket frame.
type clientMessage struct {
	Ver       int     `json:"ver,omitempty"`
	Type      string  `json:"type"`
	Seq       *uint64 `json:"seq,omitempty"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Facing    string  `json:"facing"`
	Action    string  `json:"action"`
	Container string  `json:"container"`
	Floor     int     `json:"floor"`
	SentAt    int64   `json:"sentAt"`
}

type commandAckMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Tick uint64 `json:"tick,omitempty"`
}

type commandRejectMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// HandlerConfig tunes the websocket endpoint.
type HandlerConfig struct {
	Logger       telemetry.Logger
	WriteTimeout time.Duration
	CheckOrigin  func(*nethttp.Request) bool
}

// Handler upgrades connections and pumps client commands into the hub.
type Handler struct {
	hub          *server.Hub
	logger       telemetry.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewHandler builds the websocket endpoint for an existing hub.
func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*nethttp.Request) bool { return true }
	}

	return &Handler{
		hub:          hub,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP upgrades the connection and runs the session until the client
// goes away. Players must join over REST first and present their id here.
func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	playerID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		nethttp.Error(w, "missing or malformed id", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", playerID, err)
		return
	}

	sub, ok := h.hub.Subscribe(playerID)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	session := newSession(conn, sub, h.writeTimeout)
	go session.runWriter()

	h.readLoop(playerID, conn, session)
}

func (h *Handler) readLoop(playerID uuid.UUID, conn *websocket.Conn, session *session) {
	defer func() {
		session.stop()
		h.hub.Disconnect(playerID, "connection_closed")
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.hub.ReportClientError(playerID, "read", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		seq := uint64(0)
		if msg.Seq != nil {
			seq = *msg.Seq
		}
		if seq > 0 && seq <= session.lastSeq() {
			if !session.sendJSON(commandAckMessage{Ver: server.ProtocolVersion, Type: "commandAck", Seq: seq}) {
				return
			}
			continue
		}

		if msg.Type == "heartbeat" {
			if !h.handleHeartbeat(playerID, msg, session) {
				return
			}
			continue
		}

		cmd, ok := commandFromMessage(playerID, msg)
		if !ok {
			h.logger.Printf("unknown message type %q from %s", msg.Type, playerID)
			continue
		}

		accepted, reason := h.hub.EnqueueCommand(cmd)
		if seq == 0 {
			continue
		}
		if accepted {
			if !session.sendJSON(commandAckMessage{
				Ver:  server.ProtocolVersion,
				Type: "commandAck",
				Seq:  seq,
				Tick: cmd.OriginTick,
			}) {
				return
			}
			session.storeSeq(seq)
			continue
		}
		if !session.sendJSON(commandRejectMessage{
			Ver:    server.ProtocolVersion,
			Type:   "commandReject",
			Seq:    seq,
			Reason: reason,
			Retry:  reason == sim.CommandRejectQueueLimit,
		}) {
			return
		}
	}
}

func (h *Handler) handleHeartbeat(playerID uuid.UUID, msg clientMessage, session *session) bool {
	now := time.Now()
	rtt, ok := h.hub.UpdateHeartbeat(playerID, now, msg.SentAt)
	if !ok {
		return false
	}
	return session.sendJSON(heartbeatMessage{
		Ver:        server.ProtocolVersion,
		Type:       "heartbeat",
		ServerTime: now.UnixMilli(),
		ClientTime: msg.SentAt,
		RTTMillis:  rtt.Milliseconds(),
	})
}

// commandFromMessage translates a wire message into a simulation command.
func commandFromMessage(playerID uuid.UUID, msg clientMessage) (sim.Command, bool) {
	cmd := sim.Command{ActorID: playerID}
	switch msg.Type {
	case "input":
		facing, _ := grid.ParseDirection(msg.Facing)
		cmd.Type = sim.CommandMove
		cmd.Move = &sim.MoveCommand{DX: msg.DX, DY: msg.DY, Facing: facing}
	case "action":
		if msg.Action == "" {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandAction
		cmd.Action = &sim.ActionCommand{Name: msg.Action}
	case "enter":
		container, err := uuid.Parse(msg.Container)
		if err != nil {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandEnter
		cmd.Enter = &sim.EnterCommand{Container: container, Floor: grid.FloorIndex(msg.Floor)}
	case "exit":
		cmd.Type = sim.CommandExit
	default:
		return sim.Command{}, false
	}
	return cmd, true
}
