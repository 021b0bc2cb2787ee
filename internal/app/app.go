package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	server "mech-arena/server"
	"mech-arena/server/internal/config"
	servernet "mech-arena/server/internal/net"
	serverws "mech-arena/server/internal/net/ws"
	"mech-arena/server/internal/telemetry"
	"mech-arena/server/logging"
	loggingSinks "mech-arena/server/logging/sinks"
)

// Options carries overrides for tests and alternate entry points.
type Options struct {
	Logger telemetry.Logger
}

// Run wires the logging router, hub, and HTTP surface, then serves until
// the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg := config.Load()

	telemetryLogger := opts.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	logConfig := logging.DefaultConfig()
	logConfig.MinimumSeverity = logging.ParseSeverity(cfg.LogSeverity)
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logging.ConsoleConfig{UseColor: cfg.LogColor})},
	}
	if cfg.LogJSONPath != "" {
		file, err := os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open json log %s: %w", cfg.LogJSONPath, err)
		}
		defer file.Close()
		sinks = append(sinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval),
		})
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, sinks)
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hubCfg := server.DefaultHubConfig()
	hubCfg.Logger = telemetryLogger
	hubCfg.World.Seed = cfg.WorldSeed
	hubCfg.World.WidthTiles = cfg.WorldWidth
	hubCfg.World.HeightTiles = cfg.WorldHeight
	hubCfg.World.Containers = cfg.Containers
	hubCfg.World.RockCount = cfg.RockCount
	hubCfg.Loop.TickRate = cfg.TickRate
	hubCfg.SendBuffer = cfg.SendBuffer
	hubCfg.HeartbeatEvery = cfg.HeartbeatEvery
	hubCfg.DisconnectAfter = cfg.DisconnectIn

	hub, err := server.NewHub(hubCfg, router)
	if err != nil {
		return fmt.Errorf("construct hub: %w", err)
	}

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	wsHandler := serverws.NewHandler(hub, serverws.HandlerConfig{
		Logger:       telemetryLogger,
		WriteTimeout: cfg.WriteTimeout,
	})
	handler := servernet.NewHTTPHandler(hub, wsHandler, servernet.HTTPHandlerConfig{
		Logger:         telemetryLogger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetryLogger.Printf("arena server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}
