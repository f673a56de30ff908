// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

func snapshotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "canvas.json")
}

func TestDurableStoreStartsEmpty(t *testing.T) {
	s, err := NewDurableStore(snapshotPath(t), 100, time.Hour)
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}
	defer s.Close()

	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0 without a snapshot", s.Count())
	}
}

func TestDurableStoreRecovery(t *testing.T) {
	path := snapshotPath(t)

	s, err := NewDurableStore(path, 100, time.Hour)
	if err != nil {
		t.Fatalf("NewDurableStore: %v", err)
	}

	el := newElement("survivor", models.ElementRectangle)
	el.GroupIDs = []string{"g1"}
	if err := s.Set(el); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(newElement("second", models.ElementText)); err != nil {
		t.Fatal(err)
	}
	// Close flushes synchronously, simulating orderly shutdown.
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	restored, err := NewDurableStore(path, 100, time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer restored.Close()

	if restored.Count() != 2 {
		t.Fatalf("Count after restart = %d, want 2", restored.Count())
	}
	got, err := restored.Get("survivor")
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != models.ElementRectangle || len(got.GroupIDs) != 1 || got.GroupIDs[0] != "g1" {
		t.Errorf("restored element lost fields: %+v", got)
	}

	// Insertion order survives the round trip.
	list := restored.List(nil)
	if list[0].ID != "survivor" || list[1].ID != "second" {
		t.Errorf("order after restart: %q, %q", list[0].ID, list[1].ID)
	}
}

func TestDurableStoreDebounce(t *testing.T) {
	path := snapshotPath(t)

	s, err := NewDurableStore(path, 100, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i := 0; i < 5; i++ {
		if err := s.Set(newElement(string(rune('a'+i)), models.ElementRectangle)); err != nil {
			t.Fatal(err)
		}
	}

	// Nothing on disk before the debounce interval elapses.
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("snapshot written before debounce elapsed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("snapshot never appeared after debounce interval")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDurableStoreCorruptSnapshot(t *testing.T) {
	path := snapshotPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDurableStore(path, 100, time.Hour); err == nil {
		t.Fatal("corrupt snapshot must fail startup, not silently start empty")
	}
}

func TestDurableStoreUnsupportedVersion(t *testing.T) {
	path := snapshotPath(t)
	if err := os.WriteFile(path, []byte(`{"formatVersion":999,"elements":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDurableStore(path, 100, time.Hour); err == nil {
		t.Fatal("unknown snapshot version must fail startup")
	}
}

func TestDurableStoreCloseIdempotent(t *testing.T) {
	s, err := NewDurableStore(snapshotPath(t), 100, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
