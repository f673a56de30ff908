// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Chi middleware factories for the API surface: CORS, the admission gate
// and the two rate limiter tiers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/auth"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/metrics"
)

// Rate limiter tier names, used in logs, metrics and the 429 payload.
const (
	TierStandard = "standard"
	TierStrict   = "strict"
)

// ChiMiddlewareConfig holds configuration for the middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string

	RateLimitRequests       int
	StrictRateLimitRequests int
	RateLimitWindow         time.Duration
	RateLimitDisabled       bool
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	gate   *auth.Gate
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory.
func NewChiMiddleware(config *ChiMiddlewareConfig, gate *auth.Gate) *ChiMiddleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		config: config,
		gate:   gate,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors handler built from the origin allow-list.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// Authenticate is the admission gate middleware. It runs BEFORE the rate
// limiters so unauthenticated traffic never consumes a request budget.
// A missing credential yields 401, a wrong one 403; both paths verify in
// constant time.
func (m *ChiMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := m.gate.Authenticate(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)

		case errors.Is(err, auth.ErrNoCredentials):
			metrics.RecordAuthFailure("missing")
			respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized,
				"authentication required", nil)

		default:
			metrics.RecordAuthFailure("invalid")
			logging.Ctx(r.Context()).Warn().
				Str("remote_addr", r.RemoteAddr).
				Msg("rejected invalid canvas key")
			respondError(w, r, http.StatusForbidden, ErrCodeForbidden,
				"invalid credentials", nil)
		}
	})
}

// RequireAllowedOrigin rejects a disallowed Origin header before any
// credential check. The websocket route mounts this ahead of Authenticate:
// a browser from a disallowed origin is refused at the upgrade stage no
// matter what key it presents. An absent origin passes; non-browser
// clients do not send one.
func (m *ChiMiddleware) RequireAllowedOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !m.gate.OriginAllowed(origin) {
			metrics.RecordAuthFailure("origin")
			logging.Ctx(r.Context()).Warn().
				Str("origin", sanitizeLogValue(origin)).
				Msg("rejected disallowed origin")
			respondError(w, r, http.StatusForbidden, ErrCodeForbidden,
				"origin not allowed", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identityKey buckets rate limiting by credential. All requests carrying
// the valid canvas key share one budget regardless of source address;
// everything else is bucketed by IP. This runs after Authenticate, so
// unauthenticated requests never reach it in the normal chain.
func (m *ChiMiddleware) identityKey(r *http.Request) (string, error) {
	cred := auth.CredentialFromRequest(r)
	if cred != "" && m.gate.VerifyKey(cred) == nil {
		return "key:" + auth.KeyFingerprint(cred), nil
	}
	return httprate.KeyByRealIP(r)
}

// limitHandler names the exhausted tier in the 429 payload and metrics.
func (m *ChiMiddleware) limitHandler(tier string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordRateLimitRejection(tier)
		logging.Ctx(r.Context()).Warn().
			Str("tier", tier).
			Str("path", r.URL.Path).
			Msg("rate limit exceeded")
		respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited,
			"rate limit exceeded for "+tier+" tier", nil)
	}
}

// RateLimit returns the standard tier limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.tierLimiter(TierStandard, m.config.RateLimitRequests)
}

// RateLimitStrict returns the strict tier limiter for destructive and bulk
// operations. Its budget is ceil(standard/5) and it stacks on top of the
// standard tier, so a strict request consumes from both budgets.
func (m *ChiMiddleware) RateLimitStrict() func(http.Handler) http.Handler {
	return m.tierLimiter(TierStrict, m.config.StrictRateLimitRequests)
}

func (m *ChiMiddleware) tierLimiter(tier string, requests int) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(m.identityKey),
		httprate.WithLimitHandler(m.limitHandler(tier)),
	)
}

// APISecurityHeaders adds security headers to API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Cache-Control", "no-store")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
