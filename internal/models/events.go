// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package models

import "time"

// EventType identifies an outbound websocket broadcast event.
type EventType string

const (
	EventInitialElements      EventType = "initial_elements"
	EventElementCreated       EventType = "element_created"
	EventElementUpdated       EventType = "element_updated"
	EventElementDeleted       EventType = "element_deleted"
	EventElementsBatchCreated EventType = "elements_batch_created"
	EventSyncCompleted        EventType = "sync_completed"
	EventConversionRequested  EventType = "diagram_conversion_requested"
	EventPong                 EventType = "pong"
	EventError                EventType = "error"
)

// Inbound client message types.
const (
	MessagePing        = "ping"
	MessageSyncRequest = "sync_request"
)

// Event is the envelope every websocket frame carries.
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, data interface{}) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// InitialElementsData is sent once to each session on connect, before any
// live broadcasts reach it.
type InitialElementsData struct {
	Elements []*Element `json:"elements"`
	Count    int        `json:"count"`
}

// BatchCreatedData carries the full batch as one event.
type BatchCreatedData struct {
	Elements []*Element `json:"elements"`
	Count    int        `json:"count"`
}

// ElementDeletedData identifies the removed element.
type ElementDeletedData struct {
	ID string `json:"id"`
}

// SyncCompletedData reports only the count; clients that care about content
// re-fetch the collection.
type SyncCompletedData struct {
	Count int `json:"count"`
}

// ConversionRequestedData announces an accepted diagram conversion job.
type ConversionRequestedData struct {
	RequestID string `json:"requestId"`
	Format    string `json:"format"`
}

// ErrorData is delivered only to the offending session, never broadcast.
type ErrorData struct {
	Message string `json:"message"`
}
