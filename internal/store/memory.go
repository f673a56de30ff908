// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package store

import (
	"fmt"
	"sync"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// MemoryStore keeps the canvas in a map guarded by one mutex, with a
// separate slice preserving insertion order for listings and snapshots.
type MemoryStore struct {
	mu          sync.RWMutex
	elements    map[string]*models.Element
	order       []string
	maxElements int
}

// NewMemoryStore creates an empty store capped at maxElements.
func NewMemoryStore(maxElements int) *MemoryStore {
	return &MemoryStore{
		elements:    make(map[string]*models.Element),
		maxElements: maxElements,
	}
}

// Get returns a copy of the element or ErrNotFound.
func (s *MemoryStore) Get(id string) (*models.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return el.Clone(), nil
}

// List returns copies of all elements in insertion order, filtered.
func (s *MemoryStore) List(filter *QueryFilter) []*models.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Element, 0, len(s.order))
	for _, id := range s.order {
		el := s.elements[id]
		if matchesFilter(el, filter) {
			out = append(out, el.Clone())
		}
	}
	return out
}

func matchesFilter(el *models.Element, f *QueryFilter) bool {
	if f == nil {
		return true
	}
	if f.Type != nil && el.Type != *f.Type {
		return false
	}
	if f.GroupID != nil && !el.InGroup(*f.GroupID) {
		return false
	}
	if f.Locked != nil {
		// An element that never set locked matches neither value.
		if el.Locked == nil || *el.Locked != *f.Locked {
			return false
		}
	}
	return true
}

// Count returns the number of stored elements.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// Set upserts a copy of el. An existing identifier keeps its position in
// the insertion order and is exempt from the capacity check.
func (s *MemoryStore) Set(el *models.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.elements[el.ID]; !exists {
		if len(s.elements) >= s.maxElements {
			return fmt.Errorf("%w: limit %d", ErrCapacityExceeded, s.maxElements)
		}
		s.order = append(s.order, el.ID)
	}
	s.elements[el.ID] = el.Clone()
	return nil
}

// Delete removes the element and its order entry.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elements[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.elements, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetBatch applies all upserts under one lock acquisition. The capacity
// check runs against the current count plus the full batch size before the
// first write, so a failing batch leaves no trace.
func (s *MemoryStore) SetBatch(els []*models.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.elements)+len(els) > s.maxElements {
		return fmt.Errorf("%w: %d existing + %d batched exceeds limit %d",
			ErrCapacityExceeded, len(s.elements), len(els), s.maxElements)
	}

	for _, el := range els {
		if _, exists := s.elements[el.ID]; !exists {
			s.order = append(s.order, el.ID)
		}
		s.elements[el.ID] = el.Clone()
	}
	return nil
}

// ReplaceAll swaps the whole collection. Later occurrences of a repeated
// identifier win, matching last-write semantics of the sync operation.
func (s *MemoryStore) ReplaceAll(els []*models.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*models.Element, len(els))
	order := make([]string, 0, len(els))
	for _, el := range els {
		if _, exists := next[el.ID]; !exists {
			order = append(order, el.ID)
		}
		next[el.ID] = el.Clone()
	}

	if len(next) > s.maxElements {
		return fmt.Errorf("%w: %d elements exceeds limit %d",
			ErrCapacityExceeded, len(next), s.maxElements)
	}

	s.elements = next
	s.order = order
	return nil
}

// Clear removes every element unconditionally.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elements = make(map[string]*models.Element)
	s.order = nil
}
