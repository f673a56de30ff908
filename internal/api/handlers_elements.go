// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/metrics"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/store"
)

// ListElements handles GET /api/v1/elements.
func (h *Handler) ListElements(w http.ResponseWriter, r *http.Request) {
	elements := h.store.List(nil)
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"elements": elements,
		"count":    len(elements),
	})
}

// SearchElements handles GET /api/v1/elements/search. Filters combine with
// AND; an element lacking an explicit locked value matches neither
// locked=true nor locked=false.
func (h *Handler) SearchElements(w http.ResponseWriter, r *http.Request) {
	filter := &store.QueryFilter{}
	q := r.URL.Query()

	if t := q.Get("type"); t != "" {
		typ := models.ElementType(t)
		switch typ {
		case models.ElementRectangle, models.ElementEllipse, models.ElementDiamond,
			models.ElementArrow, models.ElementText, models.ElementLine, models.ElementFreedraw:
		default:
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
				"type must be a known element type", nil)
			return
		}
		filter.Type = &typ
	}
	if g := q.Get("groupId"); g != "" {
		filter.GroupID = &g
	}
	if l := q.Get("locked"); l != "" {
		locked, err := strconv.ParseBool(l)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
				"locked must be true or false", nil)
			return
		}
		filter.Locked = &locked
	}

	elements := h.store.List(filter)
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"elements": elements,
		"count":    len(elements),
	})
}

// GetElement handles GET /api/v1/elements/{id}.
func (h *Handler) GetElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	el, err := h.store.Get(id)
	if err != nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "element not found", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, el)
}

// CreateElement handles POST /api/v1/elements.
func (h *Handler) CreateElement(w http.ResponseWriter, r *http.Request) {
	var req CreateElementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	el := req.ToElement(models.SourceAPI, time.Now().UTC())

	if err := h.store.Set(el); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	metrics.RecordStoreOperation("create", h.store.Count())
	h.publish(r, models.EventElementCreated, el)

	logging.Ctx(r.Context()).Info().
		Str("element_id", el.ID).
		Str("element_type", string(el.Type)).
		Msg("Element created")

	respondSuccess(w, r, http.StatusCreated, el)
}

// UpdateElement handles PATCH /api/v1/elements/{id}. Last write wins; there
// is no version precondition.
func (h *Handler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateElementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	el, err := h.store.Get(id)
	if err != nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "element not found", nil)
		return
	}

	req.ToPatch().Apply(el, time.Now().UTC())

	if err := h.store.Set(el); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	metrics.RecordStoreOperation("update", h.store.Count())
	h.publish(r, models.EventElementUpdated, el)

	respondSuccess(w, r, http.StatusOK, el)
}

// DeleteElement handles DELETE /api/v1/elements/{id}.
func (h *Handler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(id); err != nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "element not found", nil)
		return
	}

	metrics.RecordStoreOperation("delete", h.store.Count())
	h.publish(r, models.EventElementDeleted, models.ElementDeletedData{ID: id})

	logging.Ctx(r.Context()).Info().Str("element_id", id).Msg("Element deleted")

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
}

// BatchCreateElements handles POST /api/v1/elements/batch. The batch lands
// atomically and produces a single broadcast event.
func (h *Handler) BatchCreateElements(w http.ResponseWriter, r *http.Request) {
	var req BatchCreateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	els := make([]*models.Element, len(req.Elements))
	for i := range req.Elements {
		els[i] = req.Elements[i].ToElement(models.SourceBatch, now)
	}

	if err := h.store.SetBatch(els); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	metrics.RecordStoreOperation("batch", h.store.Count())
	h.publish(r, models.EventElementsBatchCreated, models.BatchCreatedData{
		Elements: els,
		Count:    len(els),
	})

	logging.Ctx(r.Context()).Info().Int("count", len(els)).Msg("Batch created")

	respondSuccess(w, r, http.StatusCreated, map[string]interface{}{
		"elements": els,
		"count":    len(els),
	})
}

// SyncElements handles POST /api/v1/elements/sync, replacing the whole
// canvas. The broadcast carries only the count; clients that need content
// re-fetch the collection.
func (h *Handler) SyncElements(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	els := make([]*models.Element, len(req.Elements))
	for i := range req.Elements {
		els[i] = req.Elements[i].ToElement(models.SourceSync, now)
	}

	if err := h.store.ReplaceAll(els); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	count := h.store.Count()
	metrics.RecordStoreOperation("sync", count)
	h.publish(r, models.EventSyncCompleted, models.SyncCompletedData{Count: count})

	logging.Ctx(r.Context()).Info().Int("count", count).Msg("Canvas synced")

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"count": count})
}

// respondStoreError maps store sentinels onto HTTP statuses.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrCapacityExceeded):
		metrics.StoreCapacityRejections.Inc()
		respondError(w, r, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "element not found", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal error", err)
	}
}
