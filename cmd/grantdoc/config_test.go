package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate default config: %v", err)
	}
	if cfg.Upstream.Enabled() {
		t.Fatal("upstream should be disabled by default")
	}
	if got := mustDuration(cfg.Converter.Timeout); got != 60*time.Second {
		t.Fatalf("converter timeout = %v, want 60s", got)
	}
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantdoc.yaml")
	data := `
server:
  address: ":9000"
converter:
  max_concurrent: 4
document:
  keep_output: true
  institution:
    - "Dean, Research"
    - "Example Institute"
audit:
  enabled: true
  retention: "720h"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("address = %q", cfg.Server.Address)
	}
	if cfg.Converter.MaxConcurrent != 4 {
		t.Errorf("max_concurrent = %d", cfg.Converter.MaxConcurrent)
	}
	if cfg.Converter.Binary != "soffice" {
		t.Errorf("binary default not applied: %q", cfg.Converter.Binary)
	}
	if !cfg.Document.KeepOutput || len(cfg.Document.Institution) != 2 {
		t.Errorf("document section not parsed: %+v", cfg.Document)
	}
	if got := mustDuration(cfg.Audit.Retention); got != 720*time.Hour {
		t.Errorf("retention = %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv(envUpstreamURL, "https://api.example.org")
	t.Setenv(envUpstreamEmail, "admin@example.org")
	t.Setenv(envUpstreamPassword, "secret")

	cfg := DefaultConfig()
	cfg.Upstream.Email = "from-file@example.org"
	cfg.ApplyEnv()

	if cfg.Upstream.URL != "https://api.example.org" {
		t.Errorf("url = %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.Email != "admin@example.org" {
		t.Errorf("env should override file email, got %q", cfg.Upstream.Email)
	}
	if !cfg.Upstream.Enabled() {
		t.Error("upstream should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConfigValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"tls without cert", func(c *Config) {
			c.Server.TLS.Enabled = true
			c.Server.TLS.KeyFile = "key.pem"
		}},
		{"tls without key", func(c *Config) {
			c.Server.TLS.Enabled = true
			c.Server.TLS.CertFile = "cert.pem"
		}},
		{"bad generate timeout", func(c *Config) { c.Server.GenerateTimeout = "soon" }},
		{"negative converter timeout", func(c *Config) { c.Converter.Timeout = "-1s" }},
		{"bad retention", func(c *Config) { c.Audit.Retention = "forever" }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitPerIP = -1 }},
		{"upstream without scheme", func(c *Config) {
			c.Upstream.URL = "api.example.org"
			c.Upstream.Email = "a@example.org"
			c.Upstream.Password = "x"
		}},
		{"upstream without email", func(c *Config) {
			c.Upstream.URL = "https://api.example.org"
			c.Upstream.Password = "x"
		}},
		{"upstream without password", func(c *Config) {
			c.Upstream.URL = "https://api.example.org"
			c.Upstream.Email = "a@example.org"
		}},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
