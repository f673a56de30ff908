// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package api

import (
	"time"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// Request schemas are closed: the strict decoder refuses unknown fields and
// every named field carries explicit bounds. Coordinates are confined to
// +/-10,000,000 and must be finite.

// PointPayload is one coordinate pair in a points array.
type PointPayload struct {
	X float64 `json:"x" validate:"finite,gte=-10000000,lte=10000000"`
	Y float64 `json:"y" validate:"finite,gte=-10000000,lte=10000000"`
}

// CreateElementRequest is the schema for element creation. Ids are
// assigned server-side; a payload naming one is rejected as an unknown
// field, so a create can never overwrite an existing element.
type CreateElementRequest struct {
	Type   string         `json:"type" validate:"required,oneof=rectangle ellipse diamond arrow text line freedraw"`
	X      *float64       `json:"x" validate:"required,finite,gte=-10000000,lte=10000000"`
	Y      *float64       `json:"y" validate:"required,finite,gte=-10000000,lte=10000000"`
	Width  *float64       `json:"width,omitempty" validate:"omitempty,finite,gte=0,lte=10000000"`
	Height *float64       `json:"height,omitempty" validate:"omitempty,finite,gte=0,lte=10000000"`
	Points []PointPayload `json:"points,omitempty" validate:"omitempty,max=10000,dive"`

	StrokeColor     *string  `json:"strokeColor,omitempty" validate:"omitempty,colorvalue"`
	BackgroundColor *string  `json:"backgroundColor,omitempty" validate:"omitempty,colorvalue"`
	StrokeWidth     *float64 `json:"strokeWidth,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
	Opacity         *float64 `json:"opacity,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
	Roughness       *float64 `json:"roughness,omitempty" validate:"omitempty,finite,gte=0,lte=4"`
	Angle           *float64 `json:"angle,omitempty" validate:"omitempty,finite,gte=-360,lte=360"`
	FontSize        *float64 `json:"fontSize,omitempty" validate:"omitempty,finite,gte=1,lte=400"`
	FontFamily      *int     `json:"fontFamily,omitempty" validate:"omitempty,gte=1,lte=10"`
	Text            *string  `json:"text,omitempty" validate:"omitempty,max=10000"`

	GroupIDs []string `json:"groupIds,omitempty" validate:"omitempty,max=100,dive,min=1,max=128"`
	Locked   *bool    `json:"locked,omitempty"`
}

// UpdateElementRequest is the partial update schema. The target id travels
// in the URL; every body field is optional.
type UpdateElementRequest struct {
	Type   *string        `json:"type,omitempty" validate:"omitempty,oneof=rectangle ellipse diamond arrow text line freedraw"`
	X      *float64       `json:"x,omitempty" validate:"omitempty,finite,gte=-10000000,lte=10000000"`
	Y      *float64       `json:"y,omitempty" validate:"omitempty,finite,gte=-10000000,lte=10000000"`
	Width  *float64       `json:"width,omitempty" validate:"omitempty,finite,gte=0,lte=10000000"`
	Height *float64       `json:"height,omitempty" validate:"omitempty,finite,gte=0,lte=10000000"`
	Points []PointPayload `json:"points,omitempty" validate:"omitempty,max=10000,dive"`

	StrokeColor     *string  `json:"strokeColor,omitempty" validate:"omitempty,colorvalue"`
	BackgroundColor *string  `json:"backgroundColor,omitempty" validate:"omitempty,colorvalue"`
	StrokeWidth     *float64 `json:"strokeWidth,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
	Opacity         *float64 `json:"opacity,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
	Roughness       *float64 `json:"roughness,omitempty" validate:"omitempty,finite,gte=0,lte=4"`
	Angle           *float64 `json:"angle,omitempty" validate:"omitempty,finite,gte=-360,lte=360"`
	FontSize        *float64 `json:"fontSize,omitempty" validate:"omitempty,finite,gte=1,lte=400"`
	FontFamily      *int     `json:"fontFamily,omitempty" validate:"omitempty,gte=1,lte=10"`
	Text            *string  `json:"text,omitempty" validate:"omitempty,max=10000"`

	GroupIDs []string `json:"groupIds,omitempty" validate:"omitempty,max=100,dive,min=1,max=128"`
	Locked   *bool    `json:"locked,omitempty"`
}

// BatchCreateRequest creates up to 100 elements atomically.
type BatchCreateRequest struct {
	Elements []CreateElementRequest `json:"elements" validate:"required,min=1,max=100,dive"`
}

// SyncElementRequest is one element in a full-canvas sync. Unlike a
// create, the caller names the id: a sync restates the whole canvas,
// ids included.
type SyncElementRequest struct {
	CreateElementRequest
	ID string `json:"id" validate:"required,min=1,max=128"`
}

// SyncRequest replaces the whole canvas. An empty element list is a valid
// sync that clears the canvas.
type SyncRequest struct {
	Elements []SyncElementRequest `json:"elements" validate:"max=10000,dive"`
}

// ConvertRequest submits Mermaid source for diagram conversion.
type ConvertRequest struct {
	Mermaid string `json:"mermaid" validate:"required,max=50000"`
	Format  string `json:"format,omitempty" validate:"omitempty,oneof=excalidraw svg"`
}

// ToElement builds a fresh element from a validated create request.
// Version starts at 1 and both timestamps are set to now.
func (req *CreateElementRequest) ToElement(source models.WriteSource, now time.Time) *models.Element {
	el := &models.Element{
		ID:              models.NewElementID(),
		Type:            models.ElementType(req.Type),
		X:               *req.X,
		Y:               *req.Y,
		Width:           req.Width,
		Height:          req.Height,
		StrokeColor:     req.StrokeColor,
		BackgroundColor: req.BackgroundColor,
		StrokeWidth:     req.StrokeWidth,
		Opacity:         req.Opacity,
		Roughness:       req.Roughness,
		Angle:           req.Angle,
		FontSize:        req.FontSize,
		FontFamily:      req.FontFamily,
		Text:            req.Text,
		Locked:          req.Locked,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
		Source:          source,
	}

	if req.Points != nil {
		el.Points = make([]models.Point, len(req.Points))
		for i, p := range req.Points {
			el.Points[i] = models.Point{X: p.X, Y: p.Y}
		}
	}
	if req.GroupIDs != nil {
		el.GroupIDs = make([]string, len(req.GroupIDs))
		copy(el.GroupIDs, req.GroupIDs)
	}

	return el
}

// ToElement builds the element under the caller-supplied id.
func (req *SyncElementRequest) ToElement(source models.WriteSource, now time.Time) *models.Element {
	el := req.CreateElementRequest.ToElement(source, now)
	el.ID = req.ID
	return el
}

// ToPatch converts a validated update request into a patch.
func (req *UpdateElementRequest) ToPatch() *models.ElementPatch {
	p := &models.ElementPatch{
		X:               req.X,
		Y:               req.Y,
		Width:           req.Width,
		Height:          req.Height,
		StrokeColor:     req.StrokeColor,
		BackgroundColor: req.BackgroundColor,
		StrokeWidth:     req.StrokeWidth,
		Opacity:         req.Opacity,
		Roughness:       req.Roughness,
		Angle:           req.Angle,
		FontSize:        req.FontSize,
		FontFamily:      req.FontFamily,
		Text:            req.Text,
		Locked:          req.Locked,
	}

	if req.Type != nil {
		t := models.ElementType(*req.Type)
		p.Type = &t
	}
	if req.Points != nil {
		p.Points = make([]models.Point, len(req.Points))
		for i, pt := range req.Points {
			p.Points[i] = models.Point{X: pt.X, Y: pt.Y}
		}
	}
	if req.GroupIDs != nil {
		p.GroupIDs = make([]string, len(req.GroupIDs))
		copy(p.GroupIDs, req.GroupIDs)
	}

	return p
}
