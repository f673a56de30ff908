// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package export renders the canvas as a standalone SVG document or as an
// Excalidraw-compatible JSON scene.
package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

const (
	defaultStroke = "#1e1e1e"
	svgPadding    = 16.0
)

// Scene is the Excalidraw-compatible JSON export document.
type Scene struct {
	Type     string            `json:"type"`
	Version  int               `json:"version"`
	Source   string            `json:"source"`
	SavedAt  time.Time         `json:"savedAt"`
	Elements []*models.Element `json:"elements"`
	AppState map[string]string `json:"appState"`
}

// NewScene wraps elements in the scene envelope.
func NewScene(elements []*models.Element) *Scene {
	return &Scene{
		Type:     "excalidraw",
		Version:  2,
		Source:   "excalidraw-canvas-server",
		SavedAt:  time.Now().UTC(),
		Elements: elements,
		AppState: map[string]string{"viewBackgroundColor": "#ffffff"},
	}
}

// SVG renders the elements as an SVG document sized to their bounding box.
// Unknown geometry degrades to a bounding rectangle rather than failing the
// whole export.
func SVG(elements []*models.Element) []byte {
	minX, minY, maxX, maxY := boundingBox(elements)

	width := maxX - minX + 2*svgPadding
	height := maxY - minY + 2*svgPadding
	offsetX := -minX + svgPadding
	offsetY := -minY + svgPadding

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		width, height, width, height)
	b.WriteString("\n")

	for _, el := range elements {
		renderElement(&b, el, offsetX, offsetY)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func boundingBox(elements []*models.Element) (minX, minY, maxX, maxY float64) {
	if len(elements) == 0 {
		return 0, 0, 100, 100
	}

	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)

	for _, el := range elements {
		w, h := extent(el)
		minX = math.Min(minX, el.X)
		minY = math.Min(minY, el.Y)
		maxX = math.Max(maxX, el.X+w)
		maxY = math.Max(maxY, el.Y+h)

		for _, p := range el.Points {
			minX = math.Min(minX, el.X+p.X)
			minY = math.Min(minY, el.Y+p.Y)
			maxX = math.Max(maxX, el.X+p.X)
			maxY = math.Max(maxY, el.Y+p.Y)
		}
	}
	return minX, minY, maxX, maxY
}

func extent(el *models.Element) (w, h float64) {
	if el.Width != nil {
		w = *el.Width
	}
	if el.Height != nil {
		h = *el.Height
	}
	return w, h
}

func renderElement(b *strings.Builder, el *models.Element, offsetX, offsetY float64) {
	x := el.X + offsetX
	y := el.Y + offsetY
	w, h := extent(el)

	stroke := defaultStroke
	if el.StrokeColor != nil {
		stroke = *el.StrokeColor
	}
	fill := "none"
	if el.BackgroundColor != nil {
		fill = *el.BackgroundColor
	}
	strokeWidth := 1.0
	if el.StrokeWidth != nil {
		strokeWidth = *el.StrokeWidth
	}
	opacity := 1.0
	if el.Opacity != nil {
		opacity = *el.Opacity / 100
	}

	style := fmt.Sprintf(`stroke="%s" fill="%s" stroke-width="%.1f" opacity="%.2f"`,
		escapeAttr(stroke), escapeAttr(fill), strokeWidth, opacity)

	switch el.Type {
	case models.ElementRectangle:
		fmt.Fprintf(b, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>`, x, y, w, h, style)

	case models.ElementEllipse:
		fmt.Fprintf(b, `  <ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" %s/>`,
			x+w/2, y+h/2, w/2, h/2, style)

	case models.ElementDiamond:
		fmt.Fprintf(b, `  <polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" %s/>`,
			x+w/2, y, x+w, y+h/2, x+w/2, y+h, x, y+h/2, style)

	case models.ElementArrow, models.ElementLine, models.ElementFreedraw:
		if len(el.Points) < 2 {
			fmt.Fprintf(b, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>`, x, y, w, h, style)
			break
		}
		var pts []string
		for _, p := range el.Points {
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", x+p.X, y+p.Y))
		}
		fmt.Fprintf(b, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="%.1f" opacity="%.2f"/>`,
			strings.Join(pts, " "), escapeAttr(stroke), strokeWidth, opacity)

	case models.ElementText:
		fontSize := 20.0
		if el.FontSize != nil {
			fontSize = *el.FontSize
		}
		text := ""
		if el.Text != nil {
			text = *el.Text
		}
		fmt.Fprintf(b, `  <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s">%s</text>`,
			x, y+fontSize, fontSize, escapeAttr(stroke), escapeText(text))

	default:
		fmt.Fprintf(b, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>`, x, y, w, h, style)
	}
	b.WriteString("\n")
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
