// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package websocket implements the session registry and broadcast fan-out.
// Every mutation event reaches every connected session, the originator
// included; clients reconcile by element version.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/metrics"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// SnapshotFunc returns the current canvas contents for the catch-up event a
// session receives on connect.
type SnapshotFunc func() []*models.Element

// Hub maintains the set of active sessions and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.Event
	Register   chan *Client
	Unregister chan *Client
	snapshot   SnapshotFunc
	mu         sync.RWMutex
}

// NewHub creates a hub. snapshot may be nil in tests; connecting sessions
// then receive an empty catch-up event.
func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		broadcast:  make(chan models.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		snapshot:   snapshot,
	}
}

// RunWithContext starts the hub with context support for graceful shutdown.
// Designed for use under suture supervision.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Broadcast events
// This ensures session state is always consistent before events fan out, so
// a session never observes a live event before its catch-up snapshot.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle session lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		// Priority 3: Handle broadcast events or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastToClients(event)
		}
	}
}

// registerClient queues the catch-up snapshot before the session joins the
// broadcast set, so the snapshot frame always precedes live events.
func (h *Hub) registerClient(client *Client) {
	var elements []*models.Element
	if h.snapshot != nil {
		elements = h.snapshot()
	}
	catchUp := models.NewEvent(models.EventInitialElements, models.InitialElementsData{
		Elements: elements,
		Count:    len(elements),
	})
	// A fresh session's buffer always has room for the catch-up frame.
	client.trySend(catchUp)

	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().
		Uint64("session_id", client.id).
		Int("total_sessions", total).
		Int("catch_up_elements", len(elements)).
		Msg("websocket session connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
	}
	client.closeSend()
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().
		Uint64("session_id", client.id).
		Int("total_sessions", total).
		Msg("websocket session disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	reason := getShutdownReason(ctx)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("sessions_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends an event to all connected sessions in a
// deterministic order. Sessions whose send buffer is full are dropped; a
// client that cannot keep up reconnects and catches up from the snapshot.
func (h *Hub) broadcastToClients(event models.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}

	// Sort by session ID for deterministic delivery order.
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client

	for _, client := range clients {
		if client.trySend(event) {
			metrics.WSMessagesSent.WithLabelValues(string(event.Type)).Inc()
		} else {
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		client.closeSend()
		delete(h.clients, client)
		metrics.WSBroadcastDropped.Inc()
		logging.Warn().
			Uint64("session_id", client.id).
			Str("event_type", string(event.Type)).
			Msg("dropping slow websocket session")
	}
}

// closeAllClients closes all connected sessions in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		client.closeSend()
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
	logging.Info().Msg("closed all websocket sessions during shutdown")
}

// Broadcast queues an event for fan-out to every session. When the
// central buffer overflows the event is dropped for all sessions; clients
// recover the lost state through a sync_request, which replays the full
// canvas.
func (h *Hub) Broadcast(event models.Event) {
	select {
	case h.broadcast <- event:
	default:
		metrics.WSBroadcastDropped.Inc()
		logging.Warn().
			Str("event_type", string(event.Type)).
			Msg("broadcast channel full, dropping event")
	}
}

// GetClientCount returns the number of connected sessions.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
