package ws

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mech-arena/server"
	"mech-arena/server/internal/sim"
)

func newTestHub(t *testing.T) *server.Hub {
	t.Helper()
	cfg := server.DefaultHubConfig()
	cfg.World.Scatter = false
	cfg.World.Containers = 0
	cfg.World.Seed = "ws-test"
	hub, err := server.NewHub(cfg, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	return hub
}

func websocketURL(t *testing.T, baseURL string, playerID uuid.UUID) string {
	t.Helper()
	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	parsed.Scheme = "ws"
	parsed.RawQuery = url.Values{"id": []string{playerID.String()}}.Encode()
	return parsed.String()
}

func dial(t *testing.T, hub *server.Hub, playerID uuid.UUID) *websocket.Conn {
	t.Helper()

	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, playerID), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHandlerRejectsUnknownPlayer(t *testing.T) {
	hub := newTestHub(t)
	conn := dial(t, hub, uuid.New())

	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close for unknown player")
	}
}

func TestHandlerAcksInputCommands(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join("pilot")
	conn := dial(t, hub, join.ID)

	input := map[string]any{"type": "input", "seq": 1, "dx": 1.0, "dy": 0.0, "facing": "right"}
	if err := conn.WriteJSON(input); err != nil {
		t.Fatalf("failed to send input: %v", err)
	}

	var ack commandAckMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("failed to read ack: %v", err)
	}
	if ack.Type != "commandAck" || ack.Seq != 1 {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	// Replaying the same sequence acks again without re-staging the
	// command.
	if err := conn.WriteJSON(input); err != nil {
		t.Fatalf("failed to resend input: %v", err)
	}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("failed to read duplicate ack: %v", err)
	}
	if ack.Seq != 1 {
		t.Fatalf("duplicate ack seq = %d, want 1", ack.Seq)
	}
}

func TestHandlerAnswersHeartbeat(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join("pilot")
	conn := dial(t, hub, join.ID)

	sent := time.Now().Add(-25 * time.Millisecond).UnixMilli()
	if err := conn.WriteJSON(map[string]any{"type": "heartbeat", "sentAt": sent}); err != nil {
		t.Fatalf("failed to send heartbeat: %v", err)
	}

	var reply heartbeatMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read heartbeat reply: %v", err)
	}
	if reply.Type != "heartbeat" || reply.ClientTime != sent {
		t.Fatalf("unexpected heartbeat reply: %+v", reply)
	}
	if reply.RTTMillis < 0 {
		t.Fatalf("negative rtt: %d", reply.RTTMillis)
	}
}

func TestCommandFromMessage(t *testing.T) {
	playerID := uuid.New()
	container := uuid.New()

	cmd, ok := commandFromMessage(playerID, clientMessage{Type: "input", DX: 1, Facing: "up"})
	if !ok || cmd.Type != sim.CommandMove || cmd.Move == nil || cmd.Move.DX != 1 {
		t.Fatalf("input translation failed: %+v", cmd)
	}

	cmd, ok = commandFromMessage(playerID, clientMessage{Type: "enter", Container: container.String(), Floor: 2})
	if !ok || cmd.Type != sim.CommandEnter || cmd.Enter == nil || cmd.Enter.Container != container {
		t.Fatalf("enter translation failed: %+v", cmd)
	}
	if int(cmd.Enter.Floor) != 2 {
		t.Fatalf("enter floor = %d, want 2", cmd.Enter.Floor)
	}

	if _, ok := commandFromMessage(playerID, clientMessage{Type: "enter", Container: "not-a-uuid"}); ok {
		t.Fatalf("malformed container uuid accepted")
	}

	cmd, ok = commandFromMessage(playerID, clientMessage{Type: "exit"})
	if !ok || cmd.Type != sim.CommandExit {
		t.Fatalf("exit translation failed: %+v", cmd)
	}

	if _, ok := commandFromMessage(playerID, clientMessage{Type: "action"}); ok {
		t.Fatalf("empty action accepted")
	}

	if _, ok := commandFromMessage(playerID, clientMessage{Type: "bogus"}); ok {
		t.Fatalf("unknown type accepted")
	}
}

func TestHandlerRequiresValidID(t *testing.T) {
	hub := newTestHub(t)
	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "?id=not-a-uuid")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
