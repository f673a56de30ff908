// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package auth implements the admission gate: shared-secret credentials
// verified in constant time, and the websocket origin allow-list.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrNoCredentials means the request carried no credential at all.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials means a credential was presented and did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenQueryParam is the websocket credential carrier. Browsers cannot set
// request headers on the upgrade, so the key rides in the query string.
const TokenQueryParam = "token"

// Gate verifies the shared canvas key and the request origin.
type Gate struct {
	keyHash        [sha256.Size]byte
	allowAnyOrigin bool
	origins        map[string]struct{}
}

// NewGate builds a gate for the given shared key and origin allow-list.
// An allow-list containing "*" admits every origin.
func NewGate(canvasKey string, allowedOrigins []string) *Gate {
	g := &Gate{
		// Comparing digests keeps the comparison constant time even when
		// the presented credential has a different length than the key.
		keyHash: sha256.Sum256([]byte(canvasKey)),
		origins: make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			g.allowAnyOrigin = true
			continue
		}
		if o != "" {
			g.origins[strings.ToLower(o)] = struct{}{}
		}
	}
	return g
}

// VerifyKey checks a presented credential against the canvas key.
// Returns ErrNoCredentials for an empty credential and ErrInvalidCredentials
// for a mismatch.
func (g *Gate) VerifyKey(presented string) error {
	if presented == "" {
		return ErrNoCredentials
	}
	presentedHash := sha256.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(presentedHash[:], g.keyHash[:]) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate extracts the credential from an HTTP request and verifies it.
// The key is accepted as "Authorization: Bearer <key>" or, for websocket
// upgrades, as the token query parameter.
func (g *Gate) Authenticate(r *http.Request) error {
	return g.VerifyKey(CredentialFromRequest(r))
}

// CredentialFromRequest pulls the canvas key out of a request without
// judging it. Header wins over query string.
func CredentialFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimPrefix(h, "Bearer ")
		}
		return ""
	}
	return r.URL.Query().Get(TokenQueryParam)
}

// OriginAllowed reports whether the given Origin header value may open a
// websocket session. An absent origin is allowed; non-browser clients do
// not send one.
func (g *Gate) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	if g.allowAnyOrigin {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	normalized := strings.ToLower(u.Scheme + "://" + u.Host)
	_, ok := g.origins[normalized]
	return ok
}

// KeyFingerprint returns a short stable identifier derived from a valid
// credential, used as the rate limiter bucket key so that all traffic from
// one credential shares a budget regardless of source address.
func KeyFingerprint(presented string) string {
	sum := sha256.Sum256([]byte(presented))
	return hex.EncodeToString(sum[:8])
}
