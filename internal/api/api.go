// Package api provides the HTTP server in front of the proposal generator.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/api/health"
	"github.com/good-yellow-bee/grantdoc/internal/api/middleware"
	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/models"
	"github.com/good-yellow-bee/grantdoc/internal/proposal"
	"github.com/good-yellow-bee/grantdoc/internal/security"
	"github.com/good-yellow-bee/grantdoc/internal/storage"
)

// Config contains HTTP server configuration.
type Config struct {
	Address         string
	TLSEnabled      bool
	TLSCertFile     string
	TLSKeyFile      string
	TLSClientCAFile string // optional, enables mTLS
	RateLimitPerIP  int    // generation requests per minute per client IP
	RateLimitBurst  int    // burst allowance for the per-IP limiter
	MaxBodyBytes    int64  // request body cap for uploaded submissions
	GenerateTimeout time.Duration
	Version         string
	Verbose         bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.RateLimitPerIP == 0 {
		c.RateLimitPerIP = 30
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 10
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 2 << 20
	}
	if c.GenerateTimeout == 0 {
		c.GenerateTimeout = 2 * time.Minute
	}
}

// SubmissionSource fetches submissions from the admin API.
type SubmissionSource interface {
	FetchSubmissions(ctx context.Context) ([]*models.Submission, error)
}

// DocumentGenerator renders submissions.
type DocumentGenerator interface {
	Assemble(s *models.Submission) proposal.Document
	Generate(ctx context.Context, s *models.Submission, req generator.Request) (*generator.Result, error)
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	submissions   SubmissionSource
	generator     DocumentGenerator
	audit         storage.GenerationRepository
	logger        *zap.Logger
	limiter       *middleware.RateLimiter
	server        *http.Server
	healthHandler *health.Handler
}

// New creates a new API server. submissions and audit may be nil, which
// disables the routes that need them.
func New(cfg *Config, submissions SubmissionSource, gen DocumentGenerator, audit storage.GenerationRepository, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		submissions:   submissions,
		generator:     gen,
		audit:         audit,
		logger:        logger.Named("api"),
		limiter:       middleware.NewRateLimiter(cfg.RateLimitPerIP, cfg.RateLimitBurst),
		healthHandler: health.NewHandler(),
	}
	s.healthHandler.SetVersion(cfg.Version)

	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Conversion can take a while; leave room beyond GenerateTimeout.
		WriteTimeout: cfg.GenerateTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.TLSEnabled {
		tlsConfig, err := security.LoadServerTLS(&security.ServerTLSConfig{
			CertFile:     cfg.TLSCertFile,
			KeyFile:      cfg.TLSKeyFile,
			ClientCAFile: cfg.TLSClientCAFile,
		})
		if err != nil {
			s.limiter.Stop()
			return nil, fmt.Errorf("load TLS: %w", err)
		}
		s.server.TLSConfig = tlsConfig
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.config.Address), zap.Bool("tls", s.config.TLSEnabled))
		var err error
		if s.config.TLSEnabled {
			// Certificates are already in TLSConfig.
			err = s.server.ListenAndServeTLS("", "")
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP API server")
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		s.Close()
		return err
	}
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
