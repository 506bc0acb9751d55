// Package convert turns .docx containers into PDFs by driving a headless
// LibreOffice process.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/good-yellow-bee/grantdoc/internal/metrics"
)

// ErrConversion is returned when the converter fails or produces no output.
var ErrConversion = errors.New("document conversion failed")

// Config configures the converter.
type Config struct {
	// Binary is the office suite executable, "soffice" by default.
	Binary string
	// Timeout bounds a single conversion.
	Timeout time.Duration
	// MaxConcurrent bounds simultaneous conversions.
	MaxConcurrent int
	// ProfileRoot holds the per-call LibreOffice user profiles. Defaults to
	// the system temp dir.
	ProfileRoot string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Binary:        "soffice",
		Timeout:       60 * time.Second,
		MaxConcurrent: 2,
	}
}

// Converter runs document conversions.
type Converter struct {
	cfg    Config
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// New creates a Converter. Zero config fields take their defaults.
func New(cfg Config, logger *zap.Logger) *Converter {
	def := DefaultConfig()
	if cfg.Binary == "" {
		cfg.Binary = def.Binary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger: logger.Named("convert"),
	}
}

// Binary returns the configured executable.
func (c *Converter) Binary() string {
	return c.cfg.Binary
}

// Check reports whether the converter executable can be found.
func (c *Converter) Check(ctx context.Context) error {
	if _, err := exec.LookPath(c.cfg.Binary); err != nil {
		return fmt.Errorf("converter %q not found: %w", c.cfg.Binary, err)
	}
	return nil
}

// Convert converts docxPath to PDF in outDir. When outName is non-empty the
// result is renamed to it. The returned path names the produced PDF.
func (c *Converter) Convert(ctx context.Context, docxPath, outDir, outName string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: waiting for slot: %w", ErrConversion, err)
	}
	defer c.sem.Release(1)

	metrics.ConversionsInFlight.Inc()
	defer metrics.ConversionsInFlight.Dec()

	start := time.Now()
	pdfPath, err := c.run(ctx, docxPath, outDir)
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ConversionErrors.Inc()
		return "", err
	}

	if outName == "" || filepath.Base(pdfPath) == outName {
		return pdfPath, nil
	}
	final := filepath.Join(outDir, outName)
	if err := os.Rename(pdfPath, final); err != nil {
		metrics.ConversionErrors.Inc()
		return "", fmt.Errorf("%w: rename output: %v", ErrConversion, err)
	}
	return final, nil
}

func (c *Converter) run(ctx context.Context, docxPath, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	profile, err := os.MkdirTemp(c.cfg.ProfileRoot, "grantdoc-lo-")
	if err != nil {
		return "", fmt.Errorf("%w: create profile dir: %v", ErrConversion, err)
	}
	defer os.RemoveAll(profile)

	args := []string{
		"--headless",
		"-env:UserInstallation=file://" + filepath.ToSlash(profile),
		"--convert-to", "pdf",
		"--outdir", outDir,
		docxPath,
	}
	cmd := exec.CommandContext(ctx, c.cfg.Binary, args...)
	cmd.WaitDelay = 2 * time.Second
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	c.logger.Debug("running converter",
		zap.String("binary", c.cfg.Binary),
		zap.String("input", docxPath),
		zap.String("outdir", outDir))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.logger.Warn("converter failed",
			zap.String("input", docxPath),
			zap.String("output", truncate(output.String(), 512)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}

	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		c.logger.Warn("converter produced no output",
			zap.String("input", docxPath),
			zap.String("output", truncate(output.String(), 512)))
		return "", fmt.Errorf("%w: no output at %s", ErrConversion, pdfPath)
	}
	return pdfPath, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
