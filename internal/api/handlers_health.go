// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package api

import (
	"net/http"
	"time"
)

// Health handles GET /api/v1/health. The endpoint is unauthenticated so
// load balancers and uptime monitors can probe it without the canvas key.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"elements":       h.store.Count(),
		"sessions":       h.hub.GetClientCount(),
	})
}
