// Package main provides the grantdoc CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/assets"
	"github.com/good-yellow-bee/grantdoc/internal/convert"
	"github.com/good-yellow-bee/grantdoc/internal/docx"
	"github.com/good-yellow-bee/grantdoc/internal/generator"
	"github.com/good-yellow-bee/grantdoc/internal/logging"
	"github.com/good-yellow-bee/grantdoc/internal/proposal"
	"github.com/good-yellow-bee/grantdoc/pkg/config"
)

var (
	configFile string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "grantdoc",
	Short: "grantdoc - grant proposal document generator",
	Long: `grantdoc turns grant applications into two-page proposal documents.

It fetches submitted applications from the admin API or accepts them as JSON,
builds the cover page and project outline, and converts the result to PDF.`,
	SilenceUsage: true,
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(config.GetBuildInfo())
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.VersionString())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with upstream credentials (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print build info as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file (if any), the dotenv file (if present)
// and the environment.
func loadConfig() (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	var cfg *Config
	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}
	cfg.ApplyEnv()
	cfg.Verbose = verbose
	return cfg, nil
}

func newLogger(cfg *Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Verbose: cfg.Verbose,
		Format:  cfg.Logging.Format,
		Level:   cfg.Logging.Level,
	})
}

func newConverter(cfg *Config, logger *zap.Logger) *convert.Converter {
	return convert.New(convert.Config{
		Binary:        cfg.Converter.Binary,
		Timeout:       mustDuration(cfg.Converter.Timeout),
		MaxConcurrent: cfg.Converter.MaxConcurrent,
	}, logger)
}

// newGenerator wires the document pipeline. recorder may be nil.
func newGenerator(cfg *Config, converter generator.Converter, logo generator.LogoSource, recorder generator.Recorder, logger *zap.Logger) (*generator.Generator, error) {
	writer, err := docx.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("create document writer: %w", err)
	}
	return generator.New(generator.Config{
		TempDir:    cfg.Document.TempDir,
		OutputDir:  cfg.Document.OutputDir,
		KeepOutput: cfg.Document.KeepOutput,
		Font:       cfg.Document.Font,
		Proposal: proposal.Options{
			Banner:      cfg.Document.Banner,
			Institution: cfg.Document.Institution,
			Approvers:   cfg.Document.Approvers,
		},
	}, writer, converter, logo, recorder, logger), nil
}

func loadLogo(cfg *Config, logger *zap.Logger) (*assets.Store, error) {
	store, err := assets.Load(cfg.Document.LogoPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load logo: %w", err)
	}
	return store, nil
}
