// Package batch renders many submissions in parallel and reports the outcome
// of each.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/models"
)

// Generator renders one submission.
type Generator interface {
	Generate(ctx context.Context, s *models.Submission, req generator.Request) (*generator.Result, error)
}

// Options configures a Runner.
type Options struct {
	// Workers bounds parallel generations. Conversion is additionally
	// bounded by the converter itself.
	Workers    int
	BufferSize int
	Format     generator.Format
	Source     models.GenerationSource
	// OutputDir receives one file per successful submission.
	OutputDir string
}

// Runner drives a worker pool over a list of submissions.
type Runner struct {
	gen    Generator
	opts   Options
	logger *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(gen Generator, opts Options, logger *zap.Logger) *Runner {
	if opts.Format == "" {
		opts.Format = generator.FormatPDF
	}
	if opts.Source == "" {
		opts.Source = models.SourceCLI
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{gen: gen, opts: opts, logger: logger.Named("batch")}
}

// Run renders subs and writes each document to the output directory. Items
// in the report keep the order of subs. Individual failures do not stop the
// run; only a canceled context leaves items skipped.
func (r *Runner) Run(ctx context.Context, subs []*models.Submission) (*Report, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("no submissions to render")
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	startTime := time.Now()
	items := make([]*ItemResult, len(subs))

	var errs []string
	for out := range newPool(r.opts.Workers, r.opts.BufferSize).run(ctx, subs, r.render) {
		if out.Err == nil {
			items[out.Job.Index] = out.Result
			continue
		}
		if ctx.Err() != nil && errors.Is(out.Err, ctx.Err()) {
			continue
		}
		uid := out.Job.Submission.UniqueID
		items[out.Job.Index] = &ItemResult{UniqueID: uid, Status: StatusFailed, Error: out.Err.Error()}
		errs = append(errs, fmt.Sprintf("%s: %v", uid, out.Err))
	}

	for i, it := range items {
		if it == nil {
			items[i] = &ItemResult{UniqueID: subs[i].UniqueID, Status: StatusSkipped}
		}
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)
	report := &Report{
		StartTime:  startTime,
		EndTime:    endTime,
		DurationMS: duration.Milliseconds(),
		Items:      items,
		Summary:    Aggregate(items, duration),
		Errors:     errs,
	}

	r.logger.Info("batch finished",
		zap.Int("total", report.Summary.Total),
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Duration("duration", duration))

	return report, nil
}

func (r *Runner) render(ctx context.Context, job Job) (*ItemResult, error) {
	s := job.Submission
	start := time.Now()

	res, err := r.gen.Generate(ctx, s, generator.Request{Source: r.opts.Source, Format: r.opts.Format})
	if err != nil {
		return nil, err
	}

	path := filepath.Join(r.opts.OutputDir, res.FileName)
	if err := os.WriteFile(path, res.Data, 0o640); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	return &ItemResult{
		UniqueID:   s.UniqueID,
		Status:     StatusSucceeded,
		Path:       path,
		Bytes:      int64(len(res.Data)),
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
