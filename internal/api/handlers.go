// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package api wires the HTTP surface: admission gate, rate limiting tiers,
// schema validation, the element handlers and the websocket upgrade.
//
// Every mutation runs the same pipeline: gate, limiter, schema, store,
// broadcast. The first failing stage short-circuits; the store is only
// touched by fully validated requests, and events are only published for
// mutations the store accepted.
package api

import (
	"net/http"
	"time"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/auth"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/events"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/store"
	ws "github.com/debu-sinha/excalidraw-canvas-server/internal/websocket"
)

// Handler holds the dependencies shared by all endpoint handlers.
type Handler struct {
	store     store.Store
	bus       *events.Bus
	gate      *auth.Gate
	hub       *ws.Hub
	version   string
	startedAt time.Time
}

// NewHandler creates the API handler.
func NewHandler(st store.Store, bus *events.Bus, gate *auth.Gate, hub *ws.Hub, version string) *Handler {
	return &Handler{
		store:     st,
		bus:       bus,
		gate:      gate,
		hub:       hub,
		version:   version,
		startedAt: time.Now(),
	}
}

// publish sends a broadcast event for a mutation the store accepted.
// A failed publish is logged but never turns a committed mutation into an
// HTTP error; the client reconciles on its next sync.
func (h *Handler) publish(r *http.Request, eventType models.EventType, data interface{}) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(models.NewEvent(eventType, data)); err != nil {
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("event_type", string(eventType)).
			Msg("Failed to publish event")
	}
}
