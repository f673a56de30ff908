// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/metrics"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// TopicCanvasEvents is the single topic every broadcast event rides on.
const TopicCanvasEvents = "canvas.events"

// Bus wraps a gochannel Pub/Sub with typed publish and subscribe for
// canvas events.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates an in-process bus. The output buffer absorbs bursts of
// mutations without blocking publishers.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			NewLoggerAdapter(),
		),
	}
}

// Publish encodes the event and hands it to the bus.
func (b *Bus) Publish(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(TopicCanvasEvents, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
	return nil
}

// Subscribe returns the stream of raw event messages. Consumers must Ack
// every message.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicCanvasEvents)
}

// Close shuts the bus down, terminating all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// DecodeEvent unpacks a bus message back into a canvas event. The event
// Data comes back as generic JSON since the concrete payload type is gone.
func DecodeEvent(msg *message.Message) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return models.Event{}, fmt.Errorf("decode event message %s: %w", msg.UUID, err)
	}
	return event, nil
}
