package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/grantdoc/internal/batch"
	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/models"
)

var (
	batchFetch   bool
	batchAll     bool
	batchOutput  string
	batchFormat  string
	batchWorkers int
	batchReport  string
)

var batchCmd = &cobra.Command{
	Use:   "batch [submission.json...]",
	Short: "Render many submissions at once",
	Long: `Render several submissions in parallel and print a report.

Submissions are read from the given JSON files, or fetched from the admin API
with --fetch. Fetched submissions are limited to status "submitted" unless
--all is set. Every document is written to the output directory and the
command fails when any submission could not be rendered.

Examples:
  grantdoc batch a.json b.json -o out/
  grantdoc batch --fetch --workers 4 --report csv > report.csv`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchFetch, "fetch", false, "fetch submissions from the admin API")
	batchCmd.Flags().BoolVar(&batchAll, "all", false, "with --fetch, render every submission regardless of status")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output directory (default: document.output_dir)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "pdf", "output format: pdf or docx")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel generations (default: converter.max_concurrent)")
	batchCmd.Flags().StringVar(&batchReport, "report", "json", "report format: json or csv")
}

func runBatch(cmd *cobra.Command, args []string) error {
	format, err := generator.ParseFormat(batchFormat)
	if err != nil {
		return err
	}
	reportFormat, ok := batch.ParseExportFormat(batchReport)
	if !ok {
		return fmt.Errorf("invalid report format %q (use json or csv)", batchReport)
	}
	if batchFetch == (len(args) > 0) {
		return fmt.Errorf("specify either submission files or --fetch")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var subs []*models.Submission
	source := models.SourceCLI
	if batchFetch {
		if !cfg.Upstream.Enabled() {
			return fmt.Errorf("upstream URL is not configured (set %s)", envUpstreamURL)
		}
		client, err := newUpstreamClient(cfg, logger)
		if err != nil {
			return err
		}
		subs, err = client.FetchSubmissions(ctx)
		if err != nil {
			return err
		}
		if !batchAll {
			subs = filterStatus(subs, models.StatusSubmitted)
		}
		source = models.SourceFetch
	} else {
		for _, path := range args {
			sub, err := readSubmission(path, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No submissions to render.")
		return nil
	}

	logo, err := loadLogo(cfg, logger)
	if err != nil {
		return err
	}

	var recorder generator.Recorder
	if cfg.Audit.Enabled {
		store, err := openAudit(cfg.Audit.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store.Generations()
	}

	gen, err := newGenerator(cfg, newConverter(cfg, logger), logo, recorder, logger)
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Converter.MaxConcurrent
	}
	outDir := batchOutput
	if outDir == "" {
		outDir = cfg.Document.OutputDir
	}

	runner := batch.NewRunner(gen, batch.Options{
		Workers:   workers,
		Format:    format,
		Source:    source,
		OutputDir: outDir,
	}, logger)
	report, err := runner.Run(ctx, subs)
	if err != nil {
		return err
	}

	if err := batch.NewExporter(reportFormat, cmd.OutOrStdout()).ExportReport(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if !report.OK() {
		return fmt.Errorf("%d of %d submissions failed", report.Summary.Total-report.Summary.Succeeded, report.Summary.Total)
	}
	return nil
}
