package net

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mech-arena/server"
	"mech-arena/server/internal/telemetry"
)

// HTTPHandlerConfig tunes the REST surface around the hub.
type HTTPHandlerConfig struct {
	Logger         telemetry.Logger
	AllowedOrigins []string
}

type joinRequest struct {
	Name string `json:"name"`
}

// NewHTTPHandler builds the chi router for the arena server: join and
// diagnostics endpoints plus the websocket upgrade path.
func NewHTTPHandler(hub *server.Hub, ws nethttp.Handler, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/join", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		var join joinRequest
		body, err := io.ReadAll(nethttp.MaxBytesReader(w, req.Body, 4096))
		if err != nil {
			httpError(w, "request too large", nethttp.StatusRequestEntityTooLarge)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &join); err != nil {
				httpError(w, "malformed join request", nethttp.StatusBadRequest)
				return
			}
		}
		name := strings.TrimSpace(join.Name)
		if name == "" {
			name = "pilot"
		}

		resp := hub.Join(name)
		writeJSON(w, logger, resp)
	})

	r.Get("/diagnostics", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			TickRate   int    `json:"tickRate"`
			Heartbeat  int64  `json:"heartbeatMillis"`
			Players    any    `json:"players"`
			Telemetry  any    `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   hub.TickRate(),
			Heartbeat:  hub.HeartbeatInterval().Milliseconds(),
			Players:    hub.DiagnosticsSnapshot(),
			Telemetry:  hub.TelemetrySnapshot(),
		}
		writeJSON(w, logger, payload)
	})

	if ws != nil {
		r.Get("/ws", ws.ServeHTTP)
	}

	return r
}

func writeJSON(w nethttp.ResponseWriter, logger telemetry.Logger, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
