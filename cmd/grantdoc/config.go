package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the upstream section.
const (
	envUpstreamURL      = "GRANTDOC_UPSTREAM_URL"
	envUpstreamEmail    = "GRANTDOC_UPSTREAM_EMAIL"
	envUpstreamPassword = "GRANTDOC_UPSTREAM_PASSWORD"
)

// Config represents the grantdoc configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Converter ConverterConfig `yaml:"converter"`
	Document  DocumentConfig  `yaml:"document"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Verbose   bool            `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address         string    `yaml:"address"`           // listen address (default: :8080)
	TLS             TLSConfig `yaml:"tls"`               // optional TLS
	RateLimitPerIP  int       `yaml:"rate_limit_per_ip"` // generation requests per minute
	RateLimitBurst  int       `yaml:"rate_limit_burst"`
	MaxBodyBytes    int64     `yaml:"max_body_bytes"`
	GenerateTimeout string    `yaml:"generate_timeout"` // e.g. "2m"
}

// TLSConfig contains TLS settings for the HTTP server.
type TLSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	CertFile     string `yaml:"cert_file"`
	KeyFile      string `yaml:"key_file"`
	ClientCAFile string `yaml:"client_ca_file"` // optional, requires client certificates
}

// UpstreamConfig locates the admin API. Credentials normally come from the
// environment.
type UpstreamConfig struct {
	URL      string `yaml:"url"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Timeout  string `yaml:"timeout"`
}

// Enabled reports whether an admin API is configured.
func (u UpstreamConfig) Enabled() bool {
	return u.URL != ""
}

// ConverterConfig configures the office suite used for PDF conversion.
type ConverterConfig struct {
	Binary        string `yaml:"binary"`
	Timeout       string `yaml:"timeout"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// DocumentConfig controls file locations and cover page wording.
type DocumentConfig struct {
	TempDir     string   `yaml:"temp_dir"`
	OutputDir   string   `yaml:"output_dir"`
	KeepOutput  bool     `yaml:"keep_output"`
	Font        string   `yaml:"font"`
	LogoPath    string   `yaml:"logo_path"`
	WatchLogo   bool     `yaml:"watch_logo"`
	Banner      string   `yaml:"banner"`
	Institution []string `yaml:"institution"`
	Approvers   []string `yaml:"approvers"`
}

// AuditConfig configures the generation audit store.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// Retention prunes older records at startup and every hour. Empty keeps
	// records forever.
	Retention string `yaml:"retention"`
}

// MetricsConfig configures the dedicated Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Format string `yaml:"format"` // json or console
	Level  string `yaml:"level"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.RateLimitPerIP == 0 {
		c.Server.RateLimitPerIP = 30
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 10
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 2 << 20
	}
	if c.Server.GenerateTimeout == "" {
		c.Server.GenerateTimeout = "2m"
	}
	if c.Upstream.Timeout == "" {
		c.Upstream.Timeout = "30s"
	}
	if c.Converter.Binary == "" {
		c.Converter.Binary = "soffice"
	}
	if c.Converter.Timeout == "" {
		c.Converter.Timeout = "60s"
	}
	if c.Converter.MaxConcurrent == 0 {
		c.Converter.MaxConcurrent = 2
	}
	if c.Document.TempDir == "" {
		c.Document.TempDir = "./tmp"
	}
	if c.Document.OutputDir == "" {
		c.Document.OutputDir = "./output"
	}
	if c.Document.Font == "" {
		c.Document.Font = "Times New Roman"
	}
	if c.Document.LogoPath == "" {
		c.Document.LogoPath = "./assets/logo.png"
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "./data/grantdoc.db"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// ApplyEnv overrides upstream settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(envUpstreamURL); v != "" {
		c.Upstream.URL = v
	}
	if v := os.Getenv(envUpstreamEmail); v != "" {
		c.Upstream.Email = v
	}
	if v := os.Getenv(envUpstreamPassword); v != "" {
		c.Upstream.Password = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" {
			return fmt.Errorf("server.tls.cert_file is required when TLS is enabled")
		}
		if c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.key_file is required when TLS is enabled")
		}
	}
	if c.Server.RateLimitPerIP < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limits must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	if c.Converter.MaxConcurrent < 0 {
		return fmt.Errorf("converter.max_concurrent must not be negative")
	}

	durations := []struct {
		name  string
		value string
	}{
		{"server.generate_timeout", c.Server.GenerateTimeout},
		{"upstream.timeout", c.Upstream.Timeout},
		{"converter.timeout", c.Converter.Timeout},
		{"audit.retention", c.Audit.Retention},
	}
	for _, d := range durations {
		if _, err := parseDuration(d.value); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}

	if c.Upstream.Enabled() {
		if !strings.HasPrefix(c.Upstream.URL, "http://") && !strings.HasPrefix(c.Upstream.URL, "https://") {
			return fmt.Errorf("upstream.url must be an http or https URL")
		}
		if c.Upstream.Email == "" {
			return fmt.Errorf("upstream email is required (set %s)", envUpstreamEmail)
		}
		if c.Upstream.Password == "" {
			return fmt.Errorf("upstream password is required (set %s)", envUpstreamPassword)
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "text":
	default:
		return fmt.Errorf("logging.format must be json or console")
	}
	return nil
}

// parseDuration parses a positive duration. An empty string is zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}

// mustDuration returns the parsed value of a duration that Validate accepted.
func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}
