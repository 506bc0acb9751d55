package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/models"
)

var (
	renderOutput string
	renderFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render <submission.json>",
	Short: "Render a submission file to a proposal document",
	Long: `Render a submission stored as JSON to a proposal document.

Use "-" to read the submission from stdin. The output defaults to
proposal_<unique_id>.pdf in the current directory.

Examples:
  grantdoc render application.json
  grantdoc render application.json --format docx -o draft.docx
  curl -s https://example.org/app.json | grantdoc render -`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file path")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "pdf", "output format: pdf or docx")
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := generator.ParseFormat(renderFormat)
	if err != nil {
		return err
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

	sub, err := readSubmission(args[0], cmd.InOrStdin())
	if err != nil {
		return err
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, mustDuration(cfg.Server.GenerateTimeout))
	defer cancel()

	res, err := gen.Generate(ctx, sub, generator.Request{Source: models.SourceCLI, Format: format})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	out := renderOutput
	if out == "" {
		out = res.FileName
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, res.Data, 0o640); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(res.Data))
	return nil
}

// readSubmission decodes a submission from path, or from stdin when path
// is "-".
func readSubmission(path string, stdin io.Reader) (*models.Submission, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open submission: %w", err)
		}
		defer f.Close()
		r = f
	}

	var sub models.Submission
	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		return nil, fmt.Errorf("parse submission: %w", err)
	}
	return &sub, nil
}
