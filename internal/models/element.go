// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package models defines the shared data types: canvas elements, broadcast
// events, and the persisted snapshot document.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ElementType is the closed enumeration of canvas element kinds.
type ElementType string

const (
	ElementRectangle ElementType = "rectangle"
	ElementEllipse   ElementType = "ellipse"
	ElementDiamond   ElementType = "diamond"
	ElementArrow     ElementType = "arrow"
	ElementText      ElementType = "text"
	ElementLine      ElementType = "line"
	ElementFreedraw  ElementType = "freedraw"
)

// WriteSource records which write path created an element. Auditing only;
// it has no effect on behavior.
type WriteSource string

const (
	SourceAPI   WriteSource = "api"
	SourceBatch WriteSource = "batch"
	SourceSync  WriteSource = "sync"
)

// Point is a coordinate relative to an element's origin, used by arrows,
// lines and freedraw paths.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is the unit of shared canvas state.
//
// Optional presentation fields are pointers so that "not set" survives JSON
// round trips; in particular an element with no explicit Locked value must
// not match a locked=false query.
type Element struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  *float64    `json:"width,omitempty"`
	Height *float64    `json:"height,omitempty"`
	Points []Point     `json:"points,omitempty"`

	StrokeColor     *string  `json:"strokeColor,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	StrokeWidth     *float64 `json:"strokeWidth,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
	Roughness       *float64 `json:"roughness,omitempty"`
	Angle           *float64 `json:"angle,omitempty"`
	FontSize        *float64 `json:"fontSize,omitempty"`
	FontFamily      *int     `json:"fontFamily,omitempty"`
	Text            *string  `json:"text,omitempty"`

	GroupIDs []string `json:"groupIds,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`

	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Version   int64       `json:"version"`
	Source    WriteSource `json:"source"`
}

// NewElementID generates a server-side element identifier.
func NewElementID() string {
	return uuid.New().String()
}

// Clone returns a deep copy. The store hands out and accepts clones so that
// callers can never alias its internal state.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.Points != nil {
		c.Points = make([]Point, len(e.Points))
		copy(c.Points, e.Points)
	}
	if e.GroupIDs != nil {
		c.GroupIDs = make([]string, len(e.GroupIDs))
		copy(c.GroupIDs, e.GroupIDs)
	}
	c.Width = clonePtr(e.Width)
	c.Height = clonePtr(e.Height)
	c.StrokeColor = clonePtr(e.StrokeColor)
	c.BackgroundColor = clonePtr(e.BackgroundColor)
	c.StrokeWidth = clonePtr(e.StrokeWidth)
	c.Opacity = clonePtr(e.Opacity)
	c.Roughness = clonePtr(e.Roughness)
	c.Angle = clonePtr(e.Angle)
	c.FontSize = clonePtr(e.FontSize)
	c.FontFamily = clonePtr(e.FontFamily)
	c.Text = clonePtr(e.Text)
	c.Locked = clonePtr(e.Locked)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// InGroup reports whether the element belongs to the given group.
func (e *Element) InGroup(groupID string) bool {
	for _, g := range e.GroupIDs {
		if g == groupID {
			return true
		}
	}
	return false
}

// ElementPatch is a partial update. Nil fields are left untouched; the
// element identifier and creation metadata are never patchable.
type ElementPatch struct {
	Type            *ElementType
	X               *float64
	Y               *float64
	Width           *float64
	Height          *float64
	Points          []Point
	StrokeColor     *string
	BackgroundColor *string
	StrokeWidth     *float64
	Opacity         *float64
	Roughness       *float64
	Angle           *float64
	FontSize        *float64
	FontFamily      *int
	Text            *string
	GroupIDs        []string
	Locked          *bool
}

// Apply merges the patch into the element, bumps Version by exactly 1 and
// refreshes UpdatedAt. ID, CreatedAt and Source are unchanged.
func (p *ElementPatch) Apply(e *Element, now time.Time) {
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = clonePtr(p.Width)
	}
	if p.Height != nil {
		e.Height = clonePtr(p.Height)
	}
	if p.Points != nil {
		e.Points = make([]Point, len(p.Points))
		copy(e.Points, p.Points)
	}
	if p.StrokeColor != nil {
		e.StrokeColor = clonePtr(p.StrokeColor)
	}
	if p.BackgroundColor != nil {
		e.BackgroundColor = clonePtr(p.BackgroundColor)
	}
	if p.StrokeWidth != nil {
		e.StrokeWidth = clonePtr(p.StrokeWidth)
	}
	if p.Opacity != nil {
		e.Opacity = clonePtr(p.Opacity)
	}
	if p.Roughness != nil {
		e.Roughness = clonePtr(p.Roughness)
	}
	if p.Angle != nil {
		e.Angle = clonePtr(p.Angle)
	}
	if p.FontSize != nil {
		e.FontSize = clonePtr(p.FontSize)
	}
	if p.FontFamily != nil {
		e.FontFamily = clonePtr(p.FontFamily)
	}
	if p.Text != nil {
		e.Text = clonePtr(p.Text)
	}
	if p.GroupIDs != nil {
		e.GroupIDs = make([]string, len(p.GroupIDs))
		copy(e.GroupIDs, p.GroupIDs)
	}
	if p.Locked != nil {
		e.Locked = clonePtr(p.Locked)
	}

	e.Version++
	e.UpdatedAt = now
}
