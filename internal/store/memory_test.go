// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package store

import (
	"errors"
	"fmt"
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

func newElement(id string, typ models.ElementType) *models.Element {
	now := time.Now().UTC()
	return &models.Element{
		ID:        id,
		Type:      typ,
		X:         10,
		Y:         20,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
		Source:    models.SourceAPI,
	}
}

func TestSetAndGet(t *testing.T) {
	s := NewMemoryStore(10)

	el := newElement("a", models.ElementRectangle)
	if err := s.Set(el); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "a" || got.Type != models.ElementRectangle {
		t.Errorf("got %+v", got)
	}

	// Mutating the returned copy must not touch stored state.
	got.X = 999
	again, _ := s.Get("a")
	if again.X != 10 {
		t.Errorf("store state aliased through Get: x=%v", again.X)
	}
}

func TestSetUpsert(t *testing.T) {
	s := NewMemoryStore(10)
	if err := s.Set(newElement("a", models.ElementRectangle)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(newElement("a", models.ElementEllipse)); err != nil {
		t.Fatalf("Set over existing id: %v", err)
	}

	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
	got, _ := s.Get("a")
	if got.Type != models.ElementEllipse {
		t.Errorf("type = %q, want replacement to win", got.Type)
	}

	// The replaced element keeps its position in the listing order.
	if err := s.Set(newElement("b", models.ElementRectangle)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(newElement("a", models.ElementDiamond)); err != nil {
		t.Fatal(err)
	}
	list := s.List(nil)
	if list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("order = %q, %q, want a, b", list[0].ID, list[1].ID)
	}
}

func TestGetMissing(t *testing.T) {
	s := NewMemoryStore(10)
	if _, err := s.Get("none"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestCapacity(t *testing.T) {
	s := NewMemoryStore(2)
	if err := s.Set(newElement("a", models.ElementRectangle)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(newElement("b", models.ElementRectangle)); err != nil {
		t.Fatal(err)
	}

	if err := s.Set(newElement("c", models.ElementRectangle)); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("set of new id at capacity = %v, want ErrCapacityExceeded", err)
	}

	// Writes to existing ids must still succeed at capacity.
	upd := newElement("a", models.ElementEllipse)
	upd.Version = 2
	if err := s.Set(upd); err != nil {
		t.Errorf("upsert of existing id at capacity failed: %v", err)
	}

	// Delete then set frees a slot.
	if err := s.Delete("b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(newElement("c", models.ElementRectangle)); err != nil {
		t.Errorf("set after delete failed: %v", err)
	}
}

func TestDeleteSemantics(t *testing.T) {
	s := NewMemoryStore(10)
	if err := s.Set(newElement("a", models.ElementRectangle)); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := NewMemoryStore(10)
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if err := s.Set(newElement(id, models.ElementRectangle)); err != nil {
			t.Fatal(err)
		}
	}

	got := s.List(nil)
	if len(got) != 3 {
		t.Fatalf("List len = %d, want 3", len(got))
	}
	for i, id := range ids {
		if got[i].ID != id {
			t.Errorf("List[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestListFilter(t *testing.T) {
	s := NewMemoryStore(10)

	rect := newElement("r1", models.ElementRectangle)
	rect.GroupIDs = []string{"g1"}

	ell := newElement("e1", models.ElementEllipse)
	locked := true
	ell.Locked = &locked

	txt := newElement("t1", models.ElementText)
	unlocked := false
	txt.Locked = &unlocked
	txt.GroupIDs = []string{"g1", "g2"}

	for _, el := range []*models.Element{rect, ell, txt} {
		if err := s.Set(el); err != nil {
			t.Fatal(err)
		}
	}

	typRect := models.ElementRectangle
	g1 := "g1"
	lockedTrue := true
	lockedFalse := false

	tests := []struct {
		name   string
		filter *QueryFilter
		want   []string
	}{
		{"no filter", nil, []string{"r1", "e1", "t1"}},
		{"by type", &QueryFilter{Type: &typRect}, []string{"r1"}},
		{"by group", &QueryFilter{GroupID: &g1}, []string{"r1", "t1"}},
		{"locked true", &QueryFilter{Locked: &lockedTrue}, []string{"e1"}},
		// r1 never set locked, so it matches neither true nor false.
		{"locked false", &QueryFilter{Locked: &lockedFalse}, []string{"t1"}},
		{"group and locked", &QueryFilter{GroupID: &g1, Locked: &lockedFalse}, []string{"t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.List(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d elements, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSetBatchAtomic(t *testing.T) {
	s := NewMemoryStore(3)
	if err := s.Set(newElement("existing", models.ElementRectangle)); err != nil {
		t.Fatal(err)
	}

	// 1 existing + 3 batched exceeds the cap of 3; nothing may land.
	batch := []*models.Element{
		newElement("b1", models.ElementRectangle),
		newElement("b2", models.ElementRectangle),
		newElement("b3", models.ElementRectangle),
	}
	if err := s.SetBatch(batch); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("SetBatch = %v, want ErrCapacityExceeded", err)
	}
	if s.Count() != 1 {
		t.Errorf("Count after failed batch = %d, want 1", s.Count())
	}

	ok := []*models.Element{
		newElement("b1", models.ElementRectangle),
		newElement("b2", models.ElementRectangle),
	}
	if err := s.SetBatch(ok); err != nil {
		t.Fatalf("valid batch failed: %v", err)
	}
	if s.Count() != 3 {
		t.Errorf("Count = %d, want 3", s.Count())
	}
}

func TestSetBatchUpsertsExisting(t *testing.T) {
	s := NewMemoryStore(10)
	if err := s.Set(newElement("a", models.ElementRectangle)); err != nil {
		t.Fatal(err)
	}

	batch := []*models.Element{
		newElement("a", models.ElementEllipse),
		newElement("b", models.ElementText),
	}
	if err := s.SetBatch(batch); err != nil {
		t.Fatalf("SetBatch: %v", err)
	}

	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}
	got, _ := s.Get("a")
	if got.Type != models.ElementEllipse {
		t.Errorf("type = %q, want batched upsert to win", got.Type)
	}
}

func TestReplaceAll(t *testing.T) {
	s := NewMemoryStore(10)
	for i := 0; i < 3; i++ {
		if err := s.Set(newElement(fmt.Sprintf("old%d", i), models.ElementRectangle)); err != nil {
			t.Fatal(err)
		}
	}

	next := []*models.Element{
		newElement("n1", models.ElementEllipse),
		newElement("n2", models.ElementText),
	}
	if err := s.ReplaceAll(next); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}
	if _, err := s.Get("old0"); !errors.Is(err, ErrNotFound) {
		t.Error("old element survived ReplaceAll")
	}

	got := s.List(nil)
	if got[0].ID != "n1" || got[1].ID != "n2" {
		t.Errorf("order not preserved: %q, %q", got[0].ID, got[1].ID)
	}
}

func TestReplaceAllCapacity(t *testing.T) {
	s := NewMemoryStore(1)
	next := []*models.Element{
		newElement("n1", models.ElementRectangle),
		newElement("n2", models.ElementRectangle),
	}
	if err := s.ReplaceAll(next); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("ReplaceAll = %v, want ErrCapacityExceeded", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0 after refused replace", s.Count())
	}
}

func TestReplaceAllLastWriteWins(t *testing.T) {
	s := NewMemoryStore(10)
	first := newElement("dup", models.ElementRectangle)
	second := newElement("dup", models.ElementEllipse)
	if err := s.ReplaceAll([]*models.Element{first, second}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	got, err := s.Get("dup")
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != models.ElementEllipse {
		t.Errorf("type = %q, want later occurrence to win", got.Type)
	}
}

func TestClear(t *testing.T) {
	s := NewMemoryStore(10)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Set(newElement(id, models.ElementRectangle)); err != nil {
			t.Fatal(err)
		}
	}

	s.Clear()

	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
	if got := s.List(nil); len(got) != 0 {
		t.Errorf("List returned %d elements after Clear", len(got))
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Clear = %v, want ErrNotFound", err)
	}

	// The store is usable again after clearing.
	if err := s.Set(newElement("d", models.ElementEllipse)); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}
