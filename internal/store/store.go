// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package store holds the authoritative canvas state. The in-memory store is
// the source of truth; the durable store layers debounced crash-safe
// snapshots on top of it.
package store

import (
	"errors"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

var (
	// ErrNotFound is returned when the element identifier is unknown.
	ErrNotFound = errors.New("element not found")

	// ErrCapacityExceeded is returned when a write would push the store
	// past its configured element limit.
	ErrCapacityExceeded = errors.New("store capacity exceeded")
)

// QueryFilter narrows List results. All set fields must match (AND).
// A nil Locked matches every element; elements without an explicit locked
// value match neither true nor false.
type QueryFilter struct {
	Type    *models.ElementType
	GroupID *string
	Locked  *bool
}

// Store is the element collection contract. Implementations return and
// accept deep copies only; callers never share memory with the store.
type Store interface {
	// Get returns the element or ErrNotFound.
	Get(id string) (*models.Element, error)

	// List returns all elements in insertion order, optionally filtered.
	List(filter *QueryFilter) []*models.Element

	// Count returns the current number of elements.
	Count() int

	// Set upserts the element. A new identifier fails with
	// ErrCapacityExceeded when the store is full; writes to an existing
	// identifier always succeed since they do not grow the store.
	Set(el *models.Element) error

	// Delete removes the element. ErrNotFound when absent.
	Delete(id string) error

	// SetBatch applies all upserts or none. Capacity is checked against
	// the current count plus the full batch size before the first write.
	SetBatch(els []*models.Element) error

	// ReplaceAll swaps the entire collection atomically, preserving the
	// given order. ErrCapacityExceeded when the replacement is too large.
	ReplaceAll(els []*models.Element) error

	// Clear removes every element unconditionally.
	Clear()
}
