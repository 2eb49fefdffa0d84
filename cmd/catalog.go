package cmd

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/helmcode/devdiag/pkg/catalog"
	"github.com/helmcode/devdiag/pkg/config"
	"github.com/helmcode/devdiag/pkg/formatter"
	"github.com/helmcode/devdiag/pkg/similarity"
)

var (
	catalogConfigPath   string
	catalogLocation     string
	catalogOutputFormat string
	catalogStrict       bool
)

func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate issue catalogs",
		Long: `Inspect the devices, components and issues a catalog declares.

Examples:
  devdiag catalog list
  devdiag catalog show phone --catalog https://example.com/catalog.json
  devdiag catalog validate --strict`,
	}

	cmd.PersistentFlags().StringVar(&catalogConfigPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&catalogLocation, "catalog", "", "Catalog location (path, http(s) URL or configmap://namespace/name/key)")
	cmd.PersistentFlags().StringVarP(&catalogOutputFormat, "output", "o", "human", "Output format (human, json, yaml)")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and report skipped entries",
		Args:  cobra.NoArgs,
		RunE:  runCatalogValidate,
	}
	validate.Flags().BoolVar(&catalogStrict, "strict", false, "Fail when any issue entry is skipped")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List devices with their components and issues",
			Args:  cobra.NoArgs,
			RunE:  runCatalogList,
		},
		&cobra.Command{
			Use:   "show DEVICE",
			Short: "Show the components and issues of one device",
			Args:  cobra.ExactArgs(1),
			RunE:  runCatalogShow,
		},
		validate,
	)

	return cmd
}

func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := loadConfig(catalogConfigPath, func(c *config.Config) {
		if catalogLocation != "" {
			c.Catalog = catalogLocation
		}
	})
	if err != nil {
		return nil, err
	}
	return loadCatalog(cmd.Context(), cfg)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	c, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	return formatter.DisplayCatalog(cmd.OutOrStdout(), c.Summary(), catalogOutputFormat)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	c, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	device := strings.ToLower(strings.TrimSpace(args[0]))
	for _, d := range c.Summary() {
		if d.Device == device {
			return formatter.DisplayCatalog(cmd.OutOrStdout(), []catalog.DeviceSummary{d}, catalogOutputFormat)
		}
	}

	if hints := suggestDevices(device, c.Devices()); len(hints) > 0 {
		return fmt.Errorf("unknown device %q, did you mean: %s?", args[0], strings.Join(hints, ", "))
	}
	return fmt.Errorf("unknown device %q", args[0])
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	c, err := openCatalog(cmd)
	if err != nil {
		printError(out, err.Error())
		return err
	}

	printSuccess(out, fmt.Sprintf("%d issues across %d devices", c.Len(), len(c.Devices())))
	if c.Skipped() > 0 {
		msg := fmt.Sprintf("%d issue entries skipped (blank name, or missing description or solution)", c.Skipped())
		if catalogStrict {
			printError(out, msg)
			return fmt.Errorf("catalog has %d invalid entries", c.Skipped())
		}
		printWarning(out, msg)
	}
	return nil
}

// suggestDevices ranks known devices against an unknown name: subsequence
// matches first, then names within edit distance.
func suggestDevices(name string, devices []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range fuzzy.Find(name, devices) {
		out = append(out, m.Str)
		seen[m.Str] = true
	}
	for _, d := range devices {
		if seen[d] {
			continue
		}
		if _, ok := similarity.Within(name, d, similarity.DefaultThreshold); ok {
			out = append(out, d)
		}
	}
	return out
}
