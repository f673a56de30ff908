// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/metrics"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // inbound frames are control messages only

	// Inbound message budget per session. Mutations arrive over HTTP, so
	// a session sending more than a few frames per second is misbehaving.
	inboundRate  = rate.Limit(10)
	inboundBurst = 20
)

// clientIDCounter generates unique, monotonically increasing session IDs.
// DETERMINISM: broadcast order sorts on this, eliminating map iteration order.
var clientIDCounter atomic.Uint64

// inboundMessage is the closed schema for frames a session may send.
type inboundMessage struct {
	Type string `json:"type" validate:"required,oneof=ping sync_request"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	send    chan models.Event
	limiter *rate.Limiter

	// sendMu makes the closed check and the channel send atomic. The hub
	// drops a slow session while its read pump may still be producing
	// replies; without the guard that reply would send on a closed channel.
	sendMu     sync.Mutex
	sendClosed bool
}

// NewClient creates a new Client with a unique session ID.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan models.Event, 256),
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
	}
}

// ID returns the session's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// readPump pumps inbound frames from the websocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Uint64("session_id", c.id).Msg("unexpected websocket close error")
			}
			break
		}

		if !c.limiter.Allow() {
			metrics.WSErrors.WithLabelValues("inbound_rate").Inc()
			c.sendError("too many messages")
			continue
		}

		c.handleInbound(payload)
	}
}

// handleInbound validates and dispatches one inbound frame. Bad frames earn
// the session a private error event, never a disconnect and never a
// broadcast.
func (c *Client) handleInbound(payload []byte) {
	var msg inboundMessage
	if err := validation.DecodeStrictBytes(payload, &msg); err != nil {
		metrics.WSErrors.WithLabelValues("inbound_decode").Inc()
		c.sendError("malformed message")
		return
	}
	if err := validation.ValidateStruct(&msg); err != nil {
		metrics.WSErrors.WithLabelValues("inbound_schema").Inc()
		c.sendError(err.Error())
		return
	}

	metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case models.MessagePing:
		c.enqueue(models.NewEvent(models.EventPong, nil))

	case models.MessageSyncRequest:
		var elements []*models.Element
		if c.hub.snapshot != nil {
			elements = c.hub.snapshot()
		}
		c.enqueue(models.NewEvent(models.EventInitialElements, models.InitialElementsData{
			Elements: elements,
			Count:    len(elements),
		}))
	}
}

func (c *Client) sendError(message string) {
	c.enqueue(models.NewEvent(models.EventError, models.ErrorData{Message: message}))
}

// enqueue delivers an event to this session only.
func (c *Client) enqueue(event models.Event) {
	if c.trySend(event) {
		metrics.WSMessagesSent.WithLabelValues(string(event.Type)).Inc()
	}
}

// trySend queues an event for this session. Returns false when the buffer
// is full or the session is already closed.
func (c *Client) trySend(event models.Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound channel exactly once. Safe to call from
// the hub while the session's read pump is still running.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// writePump pumps events from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				logging.Error().Err(err).Uint64("session_id", c.id).Msg("failed to write event")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the session.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
