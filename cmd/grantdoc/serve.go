package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/api"
	"github.com/good-yellow-bee/grantdoc/internal/api/health"
	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/metrics"
	"github.com/good-yellow-bee/grantdoc/internal/storage"
	"github.com/good-yellow-bee/grantdoc/internal/upstream"
	"github.com/good-yellow-bee/grantdoc/pkg/config"
)

var httpAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API that fetches applications from the admin API and
returns generated proposal documents.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address (overrides server.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	metrics.SetBuildInfo(config.Version, config.Commit, config.BuildTime)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	logo, err := loadLogo(cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Document.WatchLogo {
		if err := logo.Watch(ctx); err != nil {
			logger.Warn("logo hot reload disabled", zap.Error(err))
		}
		defer logo.Stop()
	}

	converter := newConverter(cfg, logger)
	if err := converter.Check(ctx); err != nil {
		logger.Warn("converter not available, PDF generation will fail", zap.Error(err))
	}

	var (
		audit    storage.GenerationRepository
		recorder generator.Recorder
		store    *storage.SQLiteStorage
	)
	if cfg.Audit.Enabled {
		store, err = openAudit(cfg.Audit.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		audit = store.Generations()
		recorder = audit
		logger.Info("audit store initialized", zap.String("path", cfg.Audit.Path))

		if retention := mustDuration(cfg.Audit.Retention); retention > 0 {
			go pruneLoop(ctx, audit, retention, time.Hour, logger)
		}
	}

	var source api.SubmissionSource
	if cfg.Upstream.Enabled() {
		client, err := newUpstreamClient(cfg, logger)
		if err != nil {
			return err
		}
		source = client
	} else {
		logger.Warn("upstream not configured, fetch routes are disabled")
	}

	gen, err := newGenerator(cfg, converter, logo, recorder, logger)
	if err != nil {
		return err
	}

	srv, err := api.New(&api.Config{
		Address:         cfg.Server.Address,
		TLSEnabled:      cfg.Server.TLS.Enabled,
		TLSCertFile:     cfg.Server.TLS.CertFile,
		TLSKeyFile:      cfg.Server.TLS.KeyFile,
		TLSClientCAFile: cfg.Server.TLS.ClientCAFile,
		RateLimitPerIP:  cfg.Server.RateLimitPerIP,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		GenerateTimeout: mustDuration(cfg.Server.GenerateTimeout),
		Version:         config.Version,
		Verbose:         cfg.Verbose,
	}, source, gen, audit, logger)
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}
	srv.RegisterHealthChecker(health.NewConverterChecker(converter))
	if store != nil {
		srv.RegisterHealthChecker(health.NewSQLiteChecker(store))
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Address, logger)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("starting grantdoc",
		zap.String("version", config.Version),
		zap.String("address", cfg.Server.Address),
		zap.Bool("upstream", source != nil),
		zap.Bool("audit", audit != nil))

	runErr := srv.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run server: %w", runErr)
	}
	logger.Info("server stopped")
	return nil
}

func openAudit(path string) (*storage.SQLiteStorage, error) {
	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate audit database: %w", err)
	}
	return store, nil
}

func newUpstreamClient(cfg *Config, logger *zap.Logger) (*upstream.Client, error) {
	client, err := upstream.NewClient(upstream.Config{
		BaseURL:  cfg.Upstream.URL,
		Email:    cfg.Upstream.Email,
		Password: cfg.Upstream.Password,
		Timeout:  mustDuration(cfg.Upstream.Timeout),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}
	return client, nil
}

// pruneLoop deletes audit records older than retention, once at start and
// then every interval, until ctx is done.
func pruneLoop(ctx context.Context, repo storage.GenerationRepository, retention, interval time.Duration, logger *zap.Logger) {
	prune := func() {
		n, err := repo.DeleteBefore(ctx, time.Now().Add(-retention))
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("failed to prune audit records", zap.Error(err))
			}
			return
		}
		if n > 0 {
			logger.Info("pruned audit records", zap.Int64("deleted", n))
		}
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
