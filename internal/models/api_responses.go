// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. Success is true when the request completed (see Data) and
// false when it failed (see Error).
//
// Example successful response:
//
//	{
//	  "success": true,
//	  "data": {"id": "…", "type": "rectangle", …},
//	  "metadata": {"timestamp": "2026-08-28T12:00:00Z", "request_id": "…"}
//	}
//
// Example error response:
//
//	{
//	  "success": false,
//	  "error": {"code": "VALIDATION_ERROR", "message": "X must be finite"},
//	  "metadata": {"timestamp": "2026-08-28T12:00:00Z"}
//	}
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// APIError is the structured error payload.
//
// Error codes used by the server:
//   - VALIDATION_ERROR: payload failed schema validation
//   - UNAUTHORIZED: no credential presented
//   - FORBIDDEN: credential or origin rejected
//   - NOT_FOUND: element does not exist
//   - CONFLICT: store at capacity
//   - RATE_LIMIT_EXCEEDED: too many requests for the tier
//   - INTERNAL_ERROR: unexpected server failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
