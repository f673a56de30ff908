// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.CanvasKey = "a-sufficiently-long-canvas-key"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"missing canvas key", func(c *Config) { c.Security.CanvasKey = "" }, "canvas_key is required"},
		{"short canvas key", func(c *Config) { c.Security.CanvasKey = "short" }, "at least 16 characters"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"empty origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed_origins"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitRequests = 0 }, "rate_limit_requests"},
		{"zero window", func(c *Config) { c.Security.RateLimitWindow = 0 }, "rate_limit_window"},
		{"zero max elements", func(c *Config) { c.Store.MaxElements = 0 }, "max_elements"},
		{
			"persistence without debounce",
			func(c *Config) {
				c.Store.PersistencePath = "/tmp/canvas.json"
				c.Store.FlushDebounce = 0
			},
			"flush_debounce",
		},
		{
			"rate limit disabled skips limiter checks",
			func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitRequests = 0
				c.Security.RateLimitWindow = 0
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStrictRateLimitRequests(t *testing.T) {
	tests := []struct {
		standard int
		want     int
	}{
		{100, 20},
		{101, 21},
		{5, 1},
		{4, 1},
		{1, 1},
		{0, 1},
		{7, 2},
	}

	for _, tt := range tests {
		sec := SecurityConfig{RateLimitRequests: tt.standard}
		if got := sec.StrictRateLimitRequests(); got != tt.want {
			t.Errorf("StrictRateLimitRequests(%d) = %d, want %d", tt.standard, got, tt.want)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CANVAS_KEY", "env-provided-canvas-key-value")
	t.Setenv("HTTP_PORT", "8099")
	t.Setenv("MAX_ELEMENTS", "500")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8099 {
		t.Errorf("port = %d, want 8099", cfg.Server.Port)
	}
	if cfg.Security.CanvasKey != "env-provided-canvas-key-value" {
		t.Errorf("canvas key = %q", cfg.Security.CanvasKey)
	}
	if cfg.Store.MaxElements != 500 {
		t.Errorf("max elements = %d, want 500", cfg.Store.MaxElements)
	}
	if len(cfg.Security.AllowedOrigins) != 2 || cfg.Security.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("allowed origins = %v", cfg.Security.AllowedOrigins)
	}
	if cfg.Security.RateLimitWindow != 30*time.Second {
		t.Errorf("window = %v, want 30s", cfg.Security.RateLimitWindow)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 4100
security:
  canvas_key: file-provided-canvas-key
  rate_limit_requests: 40
store:
  max_elements: 250
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 4100 {
		t.Errorf("port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Security.RateLimitRequests != 40 {
		t.Errorf("rate limit = %d, want 40", cfg.Security.RateLimitRequests)
	}
	if cfg.Security.StrictRateLimitRequests() != 8 {
		t.Errorf("strict = %d, want 8", cfg.Security.StrictRateLimitRequests())
	}
	// Untouched settings keep their defaults.
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
security:
  canvas_key: file-provided-canvas-key
server:
  port: 4100
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "5200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5200 {
		t.Errorf("port = %d, env must beat file", cfg.Server.Port)
	}
}

func TestEnvTransformDropsUnknownVariables(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("PATH mapped to %q, want dropped", got)
	}
	if got := envTransformFunc("CANVAS_KEY"); got != "security.canvas_key" {
		t.Errorf("CANVAS_KEY mapped to %q", got)
	}
}
