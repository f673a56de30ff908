// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package services

import (
	"context"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/events"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// Broadcaster matches *websocket.Hub's Broadcast method.
type Broadcaster interface {
	Broadcast(event models.Event)
}

// RelayService pumps events from the bus into the WebSocket hub. It is the
// only consumer of the bus in the server process; mutation handlers publish
// and the relay fans out, so handlers never touch the hub directly.
type RelayService struct {
	bus  *events.Bus
	hub  Broadcaster
	name string
}

// NewRelayService creates the relay.
func NewRelayService(bus *events.Bus, hub Broadcaster) *RelayService {
	return &RelayService{
		bus:  bus,
		hub:  hub,
		name: "event-relay",
	}
}

// Serve implements suture.Service. Undecodable messages are acked and
// dropped; they would poison the subscription otherwise.
func (s *RelayService) Serve(ctx context.Context) error {
	msgs, err := s.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	logging.Info().Msg("Event relay started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}

			event, err := events.DecodeEvent(msg)
			if err != nil {
				logging.Error().Err(err).Str("message_id", msg.UUID).
					Msg("Dropping undecodable event")
				msg.Ack()
				continue
			}

			s.hub.Broadcast(event)
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer for suture's log messages.
func (s *RelayService) String() string {
	return s.name
}
