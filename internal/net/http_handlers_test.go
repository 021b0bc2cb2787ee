package net

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mech-arena/server"
)

func newTestHub(t *testing.T) *server.Hub {
	t.Helper()
	cfg := server.DefaultHubConfig()
	cfg.World.Scatter = false
	cfg.World.Containers = 0
	cfg.World.Seed = "net-test"
	hub, err := server.NewHub(cfg, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	return hub
}

func TestHTTPJoinReturnsSpawn(t *testing.T) {
	hub := newTestHub(t)
	handler := NewHTTPHandler(hub, nil, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/join", bytes.NewReader([]byte(`{"name":"tester"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var join server.JoinResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &join); err != nil {
		t.Fatalf("failed to decode join response: %v", err)
	}
	if join.Type != "joined" || join.Name != "tester" {
		t.Fatalf("unexpected join response: %+v", join)
	}
	if _, ok := hub.World().Player(join.ID); !ok {
		t.Fatalf("joined player not in world")
	}
}

func TestHTTPJoinDefaultsName(t *testing.T) {
	hub := newTestHub(t)
	handler := NewHTTPHandler(hub, nil, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/join", bytes.NewReader(nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var join server.JoinResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &join); err != nil {
		t.Fatalf("failed to decode join response: %v", err)
	}
	if join.Name == "" {
		t.Fatalf("expected a default name")
	}
}

func TestHTTPJoinRejectsMalformedBody(t *testing.T) {
	hub := newTestHub(t)
	handler := NewHTTPHandler(hub, nil, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/join", bytes.NewReader([]byte(`{`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestHTTPHealth(t *testing.T) {
	hub := newTestHub(t)
	handler := NewHTTPHandler(hub, nil, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
}

func TestHTTPDiagnostics(t *testing.T) {
	hub := newTestHub(t)
	hub.Join("pilot")
	handler := NewHTTPHandler(hub, nil, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("status field = %v", payload["status"])
	}
	players, ok := payload["players"].([]any)
	if !ok || len(players) != 1 {
		t.Fatalf("players = %v, want one entry", payload["players"])
	}
	if _, ok := payload["tickRate"].(float64); !ok {
		t.Fatalf("tickRate missing from diagnostics")
	}
}
