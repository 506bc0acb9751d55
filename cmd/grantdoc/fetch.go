package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/good-yellow-bee/grantdoc/internal/models"
	"github.com/good-yellow-bee/grantdoc/internal/proposal"
)

var (
	fetchStatus string
	fetchJSON   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List submissions from the admin API",
	Long: `Log in to the admin API and list the submissions it returns.

The API location and credentials come from the config file or the
GRANTDOC_UPSTREAM_URL, GRANTDOC_UPSTREAM_EMAIL and GRANTDOC_UPSTREAM_PASSWORD
environment variables. When the password is missing and stdin is a terminal
it is prompted for.

Examples:
  grantdoc fetch
  grantdoc fetch --status submitted --json`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchStatus, "status", "", "only list submissions with this status")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print submissions as JSON")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Upstream.Enabled() {
		return fmt.Errorf("upstream URL is not configured (set %s)", envUpstreamURL)
	}
	if cfg.Upstream.Password == "" {
		password, err := promptPassword("Admin password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		cfg.Upstream.Password = password
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newUpstreamClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	subs, err := client.FetchSubmissions(ctx)
	if err != nil {
		return err
	}
	subs = filterStatus(subs, fetchStatus)

	if fetchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(models.NewSubmissionResponses(subs))
	}
	return printSubmissions(cmd.OutOrStdout(), subs)
}

func filterStatus(subs []*models.Submission, status string) []*models.Submission {
	if status == "" {
		return subs
	}
	out := make([]*models.Submission, 0, len(subs))
	for _, s := range subs {
		if strings.EqualFold(s.Status, status) {
			out = append(out, s)
		}
	}
	return out
}

func printSubmissions(w io.Writer, subs []*models.Submission) error {
	if len(subs) == 0 {
		fmt.Fprintln(w, "No submissions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UNIQUE ID\tSTATUS\tAPPLICANT\tTITLE")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.UniqueID, s.Status, s.User.String(), shorten(proposal.Text(s.Title), 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %d submission(s)\n", len(subs))
	return nil
}

func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// promptPassword prompts for a password without echoing to the terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(passwordBytes), nil
	}

	// Piped input
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(password), nil
}
