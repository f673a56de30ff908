// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/export"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// ExportCanvas handles GET /api/v1/export. format=json (default) returns an
// Excalidraw scene document; format=svg returns a rendered SVG.
func (h *Handler) ExportCanvas(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	elements := h.store.List(nil)

	switch format {
	case "json":
		respondSuccess(w, r, http.StatusOK, export.NewScene(elements))

	case "svg":
		svg := export.SVG(elements)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Content-Disposition", `attachment; filename="canvas.svg"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(svg); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write SVG export")
		}

	default:
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
			"format must be json or svg", nil)
	}
}

// ConvertDiagram handles POST /api/v1/convert. The Mermaid source is
// validated and acknowledged with 202; conversion itself happens in the
// requesting client, which listens for the broadcast to know a peer kicked
// one off.
func (h *Handler) ConvertDiagram(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	format := req.Format
	if format == "" {
		format = "excalidraw"
	}

	requestID := uuid.New().String()
	h.publish(r, models.EventConversionRequested, models.ConversionRequestedData{
		RequestID: requestID,
		Format:    format,
	})

	logging.Ctx(r.Context()).Info().
		Str("conversion_id", requestID).
		Str("format", format).
		Int("source_bytes", len(req.Mermaid)).
		Msg("Diagram conversion requested")

	respondSuccess(w, r, http.StatusAccepted, map[string]interface{}{
		"requestId": requestID,
		"format":    format,
	})
}
