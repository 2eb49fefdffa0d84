package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/devdiag/pkg/analyzer"
	"github.com/helmcode/devdiag/pkg/config"
	"github.com/helmcode/devdiag/pkg/formatter"
	"github.com/helmcode/devdiag/pkg/logging"
)

var (
	classifyConfigPath   string
	classifyCatalog      string
	classifyIssueTypes   string
	classifyStrategy     string
	classifyOutputFormat string
)

func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify TEXT",
		Short: "Match a problem description against the issue catalog",
		Long: `Detect the device and component named in a free-text problem description
and return the catalog issues that match, with their description and solution.

Examples:
  # Exact keyword matching
  devdiag classify "my phone screen is cracked"

  # Tolerate typos, return the single closest issue
  devdiag classify "wifi keeps disconecting" --strategy fuzzy

  # Use a catalog stored in a ConfigMap and print JSON
  devdiag classify "laptop fan is noisy" --catalog configmap://support/devdiag/catalog.json -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().StringVar(&classifyConfigPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&classifyCatalog, "catalog", "", "Catalog location (path, http(s) URL or configmap://namespace/name/key)")
	cmd.Flags().StringVar(&classifyIssueTypes, "issue-types", "", "Issue type index location")
	cmd.Flags().StringVarP(&classifyStrategy, "strategy", "s", "", "Matching strategy (exact, fuzzy). Defaults to config")
	cmd.Flags().StringVarP(&classifyOutputFormat, "output", "o", "human", "Output format (human, json, yaml)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := analyzer.ValidateText(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("nothing to classify: %w", err)
	}

	cfg, err := loadConfig(classifyConfigPath, func(c *config.Config) {
		if classifyCatalog != "" {
			c.Catalog = classifyCatalog
		}
		if classifyIssueTypes != "" {
			c.IssueTypes = classifyIssueTypes
		}
		if classifyStrategy != "" {
			c.Strategy = classifyStrategy
		}
	})
	if err != nil {
		return err
	}
	strategy, _ := analyzer.ParseStrategy(cfg.Strategy)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	out := cmd.OutOrStdout()
	human := classifyOutputFormat != "json" && classifyOutputFormat != "yaml"
	if human {
		printHeader(out, text, strategy)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Writer = cmd.ErrOrStderr()
	s.Suffix = " Loading catalog from " + cfg.Catalog + "..."
	s.Start()

	c, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	s.Stop()
	if human {
		printSuccess(out, fmt.Sprintf("Loaded %d issues for %d devices", c.Len(), len(c.Devices())))
	}

	a, err := newAnalyzer(c, cfg, logger)
	if err != nil {
		return err
	}

	result := a.Classify(cmd.Context(), text, strategy)
	return formatter.DisplayResults(out, result, classifyOutputFormat)
}

func printHeader(w io.Writer, text string, strategy analyzer.Strategy) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🔍 Device Issue Diagnosis")
	fmt.Fprintf(w, "📝 Problem: %s\n", text)
	fmt.Fprintf(w, "🧭 Strategy: %s\n", strategy)
	fmt.Fprintln(w)
}
