package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/helmcode/devdiag/pkg/analyzer"
	"github.com/helmcode/devdiag/pkg/catalog"
	"github.com/helmcode/devdiag/pkg/config"
	"github.com/helmcode/devdiag/pkg/source"
)

// loadConfig reads the config file, applies DEVDIAG_* overrides and then the
// command line overrides, in that order.
func loadConfig(path string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sourceOptions(cfg *config.Config) source.Options {
	return source.Options{
		Kubeconfig:  cfg.Kube.Kubeconfig,
		KubeContext: cfg.Kube.Context,
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	src, err := source.Open(cfg.Catalog, sourceOptions(cfg))
	if err != nil {
		return nil, err
	}
	return catalog.Load(ctx, src)
}

// newAnalyzer wires the analyzer with the configured matching options and,
// when issue_types is set, the lazily fetched issue type index.
func newAnalyzer(c *catalog.Catalog, cfg *config.Config, logger *zap.Logger) (*analyzer.Analyzer, error) {
	opts := append(cfg.AnalyzerOptions(), analyzer.WithLogger(logger))
	if cfg.IssueTypes != "" {
		src, err := source.Open(cfg.IssueTypes, sourceOptions(cfg))
		if err != nil {
			return nil, fmt.Errorf("issue types: %w", err)
		}
		opts = append(opts, analyzer.WithIssueTypes(source.NewIssueTypes(src)))
	}
	return analyzer.New(c, opts...), nil
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(w, "! %s\n", msg)
}
