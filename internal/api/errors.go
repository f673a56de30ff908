// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package api

// Machine-readable error codes returned in the APIError envelope.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)
