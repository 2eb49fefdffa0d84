package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helmcode/devdiag/pkg/analyzer"
	"github.com/helmcode/devdiag/pkg/config"
	"github.com/helmcode/devdiag/pkg/logging"
	"github.com/helmcode/devdiag/pkg/server"
)

var (
	serveConfigPath string
	serveCatalog    string
	serveAddr       string
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification API over HTTP",
		Long: `Load the catalog once and serve it over HTTP.

Endpoints:
  GET  /health
  POST /extract           {"text": "..."}  exact matching
  POST /extract/fuzzy     {"text": "..."}  closest match
  POST /classify?strategy=exact|fuzzy
  GET  /catalog
  GET  /metrics

Examples:
  devdiag serve --catalog issueDefinitions.json --addr :8080
  DEVDIAG_CATALOG=https://example.com/catalog.json devdiag serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&serveCatalog, "catalog", "", "Catalog location (path, http(s) URL or configmap://namespace/name/key)")
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to config, :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath, func(c *config.Config) {
		if serveCatalog != "" {
			c.Catalog = serveCatalog
		}
		if serveAddr != "" {
			c.Server.Addr = serveAddr
		}
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := loadCatalog(ctx, cfg)
	if err != nil {
		logger.Error("Catalog load failed", zap.String("catalog", cfg.Catalog), zap.Error(err))
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded",
		zap.String("catalog", cfg.Catalog),
		zap.Int("patterns", c.Len()),
		zap.Int("devices", len(c.Devices())),
		zap.Int("skipped", c.Skipped()))

	a, err := newAnalyzer(c, cfg, logger)
	if err != nil {
		return err
	}

	strategy, _ := analyzer.ParseStrategy(cfg.Strategy)
	srv := server.New(a, server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Strategy:        strategy,
		Logger:          logger,
	})
	return srv.Run(ctx)
}
