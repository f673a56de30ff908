// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package main is the entry point for the canvas server.
//
// The server hosts a shared Excalidraw-style canvas: a single element
// collection mutated over a REST API and mirrored to every connected
// WebSocket session in real time.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml, env)
//  2. Element store: in-memory, optionally with a debounced durable snapshot
//  3. Admission gate: shared-secret credential plus origin allow-list
//  4. Event bus: in-process Watermill pub/sub carrying broadcast events
//  5. WebSocket hub: session registry and fan-out
//  6. HTTP server: Chi router with the mutation pipeline middleware
//
// Everything long-running is supervised by a suture tree with two layers:
// messaging (hub, event relay) and api (HTTP server).
//
// # Configuration
//
// Highest priority wins:
//   - Environment variables (CANVAS_KEY, HTTP_PORT, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// The only setting without a default is CANVAS_KEY; the server refuses to
// start without it.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the hub closes every session, and the durable store
// flushes a final snapshot.
//
// # Example Usage
//
// In-memory only:
//
//	export CANVAS_KEY=$(openssl rand -hex 32)
//	./canvas-server
//
// With crash-safe persistence:
//
//	export CANVAS_KEY=$(openssl rand -hex 32)
//	export CANVAS_FILE=/var/lib/canvas/elements.json
//	./canvas-server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/api"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/auth"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/config"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/events"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/store"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/supervisor"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/supervisor/services"
	ws "github.com/debu-sinha/excalidraw-canvas-server/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Int("max_elements", cfg.Store.MaxElements).
		Bool("persistence", cfg.Store.PersistencePath != "").
		Msg("Starting canvas server")

	// Select the store backend. The durable backend refuses to start on a
	// corrupt snapshot rather than silently losing the canvas.
	var (
		st      store.Store
		durable *store.DurableStore
	)
	if cfg.Store.PersistencePath != "" {
		durable, err = store.NewDurableStore(cfg.Store.PersistencePath, cfg.Store.MaxElements, cfg.Store.FlushDebounce)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Store.PersistencePath).
				Msg("Failed to open durable store")
		}
		st = durable
	} else {
		st = store.NewMemoryStore(cfg.Store.MaxElements)
	}

	gate := auth.NewGate(cfg.Security.CanvasKey, cfg.Security.AllowedOrigins)

	bus := events.NewBus()

	// The hub snapshots the store for each new session's catch-up event.
	hub := ws.NewHub(func() []*models.Element {
		return st.List(nil)
	})

	handler := api.NewHandler(st, bus, gate, hub, version)

	chiMW := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:      cfg.Security.AllowedOrigins,
		RateLimitRequests:       cfg.Security.RateLimitRequests,
		StrictRateLimitRequests: cfg.Security.StrictRateLimitRequests(),
		RateLimitWindow:         cfg.Security.RateLimitWindow,
		RateLimitDisabled:       cfg.Security.RateLimitDisabled,
	}, gate)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, chiMW).SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(services.NewRelayService(bus, hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err := bus.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event bus")
	}

	// Final snapshot flush before exit.
	if durable != nil {
		if err := durable.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing durable store")
		}
	}

	logging.Info().Msg("Canvas server stopped")
}
