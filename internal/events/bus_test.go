// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package events

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
	os.Exit(m.Run())
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := models.NewEvent(models.EventElementDeleted, models.ElementDeletedData{ID: "el-1"})
	if err := bus.Publish(want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		got, err := DecodeEvent(msg)
		if err != nil {
			t.Fatalf("DecodeEvent: %v", err)
		}
		if got.Type != models.EventElementDeleted {
			t.Errorf("type = %q, want %q", got.Type, models.EventElementDeleted)
		}
		data, ok := got.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("data type %T, want map", got.Data)
		}
		if data["id"] != "el-1" {
			t.Errorf("data.id = %v, want el-1", data["id"])
		}
	case <-ctx.Done():
		t.Fatal("no message received before timeout")
	}
}

func TestPublishOrderPreserved(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	types := []models.EventType{
		models.EventElementCreated,
		models.EventElementUpdated,
		models.EventElementDeleted,
	}
	for _, typ := range types {
		if err := bus.Publish(models.NewEvent(typ, nil)); err != nil {
			t.Fatalf("Publish(%s): %v", typ, err)
		}
	}

	for i, want := range types {
		select {
		case msg := <-msgs:
			msg.Ack()
			got, err := DecodeEvent(msg)
			if err != nil {
				t.Fatal(err)
			}
			if got.Type != want {
				t.Errorf("event %d type = %q, want %q", i, got.Type, want)
			}
		case <-ctx.Done():
			t.Fatalf("event %d never arrived", i)
		}
	}
}
