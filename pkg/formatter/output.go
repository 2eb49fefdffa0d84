package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/devdiag/pkg/analyzer"
	"github.com/helmcode/devdiag/pkg/catalog"
	"github.com/helmcode/devdiag/pkg/model"
)

// DisplayResults formats and writes the classification result
func DisplayResults(w io.Writer, result analyzer.Result, format string) error {
	switch format {
	case "json":
		return displayJSON(w, result.Response())
	case "yaml":
		return displayYAML(w, result.Response())
	case "human":
		fallthrough
	default:
		displayHuman(w, result)
	}
	return nil
}

// DisplayCatalog writes the device listing of a catalog
func DisplayCatalog(w io.Writer, devices []catalog.DeviceSummary, format string) error {
	switch format {
	case "json":
		return displayJSON(w, devices)
	case "yaml":
		return displayYAML(w, devices)
	default:
		displayCatalogHuman(w, devices)
	}
	return nil
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, result analyzer.Result) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)

	if len(result.Matches) == 0 {
		yellow.Fprintln(w, "🤷 NO MATCHING ISSUE FOUND")
		fmt.Fprintln(w, wrapText("Try naming the device and describing the symptom, e.g. \"my phone screen is cracked\".", 80, "   "))
		fmt.Fprintln(w)
	} else {
		green.Fprintf(w, "💡 %s:\n", matchesHeading(result))
		for i, m := range result.Matches {
			fmt.Fprintf(w, "   %d. %s %s\n", i+1, deviceIcon(m, result.IsNetwork(m)), target(m))
			fmt.Fprintf(w, "      Issue: %s\n", color.YellowString(m.Issue))
			if m.IssueType != "" {
				fmt.Fprintf(w, "      Type: %s\n", m.IssueType)
			}
			fmt.Fprintln(w, wrapText(m.Description, 80, "      "))
			fmt.Fprintln(w)
			cyan.Fprintln(w, "      🚀 SOLUTION:")
			fmt.Fprintln(w, color.GreenString(wrapText(m.Solution, 80, "      ")))
			fmt.Fprintln(w)
		}
	}

	if result.EnrichmentErr != nil {
		yellow.Fprintln(w, "⚠️  Issue types unavailable:")
		fmt.Fprintf(w, "   %s\n\n", result.EnrichmentErr)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func displayCatalogHuman(w io.Writer, devices []catalog.DeviceSummary) {
	cyan := color.New(color.FgCyan, color.Bold)

	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices in catalog")
		return
	}
	for _, d := range devices {
		cyan.Fprintf(w, "📱 %s", d.Device)
		fmt.Fprintf(w, " (%d issues)\n", len(d.Issues))
		if len(d.Components) > 0 {
			fmt.Fprintf(w, "   components: %s\n", strings.Join(d.Components, ", "))
		}
		fmt.Fprintln(w, wrapText("issues: "+strings.Join(d.Issues, ", "), 80, "   "))
	}
}

func matchesHeading(result analyzer.Result) string {
	if result.Strategy == analyzer.StrategyFuzzy {
		return "CLOSEST MATCH"
	}
	if len(result.Matches) == 1 {
		return "1 ISSUE IDENTIFIED"
	}
	return fmt.Sprintf("%d ISSUES IDENTIFIED", len(result.Matches))
}

func target(m model.Match) string {
	if m.Component == nil {
		return m.Device
	}
	return m.Device + " / " + *m.Component
}

func deviceIcon(m model.Match, network bool) string {
	if network {
		return "📶"
	}
	switch m.Device {
	case "laptop", "computer", "desktop":
		return "💻"
	case "phone", "tablet":
		return "📱"
	default:
		return "🔧"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if currentLine == indent {
				currentLine += word
			} else if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
