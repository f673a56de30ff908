// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the handler and middleware factory.
func NewRouter(handler *Handler, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
	}
}

// SetupChi configures all HTTP routes.
//
// The mutation pipeline order is fixed: admission gate, then rate limiter,
// then schema validation inside the handler. The gate runs first so
// unauthenticated probes cannot drain a credential's request budget.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight works

	// Health endpoint stays outside the gate for load balancer probes.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
	})

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	// Both tiers are built once so every route shares the same counters.
	standard := router.chiMiddleware.RateLimit()
	strict := router.chiMiddleware.RateLimitStrict()

	// Websocket admission checks the origin before the credential: a
	// disallowed origin is refused at the upgrade stage regardless of
	// credential validity.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.chiMiddleware.RequireAllowedOrigin)
		r.Use(router.chiMiddleware.Authenticate)
		r.Use(standard)
		r.Get("/", router.handler.WebSocket)
	})

	// Authenticated API surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.chiMiddleware.Authenticate) // gate precedes limiter
		r.Use(standard)

		r.Get("/elements", router.handler.ListElements)
		r.Post("/elements", router.handler.CreateElement)
		r.Get("/elements/search", router.handler.SearchElements)
		r.Get("/elements/{id}", router.handler.GetElement)
		r.Patch("/elements/{id}", router.handler.UpdateElement)

		// Destructive and bulk operations sit behind the strict tier as
		// well, so they consume from both budgets.
		r.With(strict).Delete("/elements/{id}", router.handler.DeleteElement)
		r.With(strict).Post("/elements/batch", router.handler.BatchCreateElements)
		r.With(strict).Post("/elements/sync", router.handler.SyncElements)
		r.With(strict).Get("/export", router.handler.ExportCanvas)
		r.With(strict).Post("/convert", router.handler.ConvertDiagram)
	})

	return r
}
