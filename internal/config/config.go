// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

// Package config loads and validates server configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds admission and rate limiting settings.
type SecurityConfig struct {
	// CanvasKey is the shared-secret credential required on every request.
	// There is no default: the server refuses to start without one.
	CanvasKey string `koanf:"canvas_key"`

	// AllowedOrigins is the origin allow-list for CORS and the WebSocket
	// upgrade. "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RateLimitRequests is the standard-tier ceiling per window per key.
	// The strict tier (destructive and expensive operations) is derived as
	// ceil(RateLimitRequests / 5) rather than configured independently.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StrictRateLimitRequests returns the strict-tier ceiling derived from the
// standard ceiling. Always at least 1.
func (s SecurityConfig) StrictRateLimitRequests() int {
	strict := (s.RateLimitRequests + 4) / 5
	if strict < 1 {
		strict = 1
	}
	return strict
}

// StoreConfig holds element store settings.
type StoreConfig struct {
	// MaxElements caps store cardinality. Inserts beyond the cap fail;
	// updates to existing elements are exempt.
	MaxElements int `koanf:"max_elements"`

	// PersistencePath is the snapshot file for the durable backend.
	// Empty selects the pure in-memory backend.
	PersistencePath string `koanf:"persistence_path"`

	// FlushDebounce is how long after the last mutation the durable backend
	// waits before writing the snapshot.
	FlushDebounce time.Duration `koanf:"flush_debounce"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Security.CanvasKey == "" {
		return fmt.Errorf("security.canvas_key is required (set CANVAS_KEY)")
	}
	if len(c.Security.CanvasKey) < 16 {
		return fmt.Errorf("security.canvas_key must be at least 16 characters")
	}
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("security.allowed_origins must not be empty")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitRequests < 1 {
			return fmt.Errorf("security.rate_limit_requests must be positive, got %d", c.Security.RateLimitRequests)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	if c.Store.MaxElements < 1 {
		return fmt.Errorf("store.max_elements must be positive, got %d", c.Store.MaxElements)
	}
	if c.Store.PersistencePath != "" && c.Store.FlushDebounce <= 0 {
		return fmt.Errorf("store.flush_debounce must be positive, got %s", c.Store.FlushDebounce)
	}
	return nil
}
