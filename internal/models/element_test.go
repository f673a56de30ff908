// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package models

import (
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestCloneIsDeep(t *testing.T) {
	orig := &Element{
		ID:          "el-1",
		Type:        ElementLine,
		X:           10,
		Y:           20,
		Points:      []Point{{X: 0, Y: 0}, {X: 5, Y: 5}},
		StrokeColor: str("#ff0000"),
		GroupIDs:    []string{"g1"},
		Version:     1,
	}

	c := orig.Clone()
	c.Points[0].X = 99
	c.GroupIDs[0] = "g2"
	*c.StrokeColor = "#00ff00"

	if orig.Points[0].X != 0 {
		t.Errorf("clone aliased points: got %v", orig.Points[0].X)
	}
	if orig.GroupIDs[0] != "g1" {
		t.Errorf("clone aliased groupIds: got %q", orig.GroupIDs[0])
	}
	if *orig.StrokeColor != "#ff0000" {
		t.Errorf("clone aliased strokeColor: got %q", *orig.StrokeColor)
	}
}

func TestCloneNil(t *testing.T) {
	var e *Element
	if e.Clone() != nil {
		t.Error("Clone of nil element should be nil")
	}
}

func TestPatchApplyBumpsVersion(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &Element{
		ID:        "el-1",
		Type:      ElementRectangle,
		X:         1,
		Y:         2,
		Width:     f64(100),
		CreatedAt: created,
		UpdatedAt: created,
		Version:   1,
		Source:    SourceAPI,
	}

	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	p := &ElementPatch{X: f64(50), Width: f64(200)}
	p.Apply(e, now)

	if e.Version != 2 {
		t.Errorf("version = %d, want 2", e.Version)
	}
	if e.X != 50 || *e.Width != 200 {
		t.Errorf("patched fields not applied: x=%v width=%v", e.X, *e.Width)
	}
	if e.Y != 2 {
		t.Errorf("untouched field changed: y=%v", e.Y)
	}
	if !e.CreatedAt.Equal(created) {
		t.Error("createdAt must not change on patch")
	}
	if !e.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v, want %v", e.UpdatedAt, now)
	}
}

func TestPatchApplyOmittedFieldsUntouched(t *testing.T) {
	e := &Element{
		ID:      "el-1",
		Type:    ElementText,
		Text:    str("hello"),
		Version: 3,
	}

	(&ElementPatch{X: f64(7)}).Apply(e, time.Now())

	if *e.Text != "hello" {
		t.Errorf("text changed without being patched: %q", *e.Text)
	}
	if e.Version != 4 {
		t.Errorf("version = %d, want 4", e.Version)
	}
}

func TestInGroup(t *testing.T) {
	e := &Element{GroupIDs: []string{"a", "b"}}
	if !e.InGroup("b") {
		t.Error("expected membership in group b")
	}
	if e.InGroup("c") {
		t.Error("unexpected membership in group c")
	}
}
