package catalog

import (
	"regexp"
	"strings"

	"github.com/helmcode/devdiag/pkg/model"
)

// Pattern is one compiled (device, component, issue) rule. Component is empty
// for device-level issues.
type Pattern struct {
	Device      string
	Component   string
	Issue       string
	Description string
	Solution    string

	re *regexp.Regexp
}

// HasComponent reports whether the pattern belongs to a sub-component.
func (p Pattern) HasComponent() bool {
	return p.Component != ""
}

// Occurs reports whether the issue keyword appears in text as a whole word.
func (p Pattern) Occurs(text string) bool {
	return p.re != nil && p.re.MatchString(text)
}

type term struct {
	name string
	re   *regexp.Regexp
}

// Catalog is the compiled, read-only form of a device catalog. It is safe for
// concurrent use because nothing mutates it after Compile returns.
type Catalog struct {
	patterns   []Pattern
	devices    []term
	components map[string][]term
	skipped    int
}

// Compile flattens entries into patterns and builds the device to component
// index. Issues without both a description and a solution are skipped, as
// are blank device, component or issue names.
func Compile(entries []model.CatalogEntry) *Catalog {
	c := &Catalog{components: make(map[string][]term)}

	for _, entry := range entries {
		dev := normalize(entry.Device)
		if dev == "" {
			c.skipped += len(entry.Issues)
			for _, comp := range entry.Components {
				c.skipped += len(comp.Issues)
			}
			continue
		}
		if _, seen := c.components[dev]; !seen {
			c.components[dev] = []term{}
			c.devices = append(c.devices, newTerm(dev))
		}

		for _, issue := range entry.Issues {
			c.add(dev, "", issue)
		}

		for _, comp := range entry.Components {
			name := normalize(comp.Name)
			if name == "" {
				c.skipped += len(comp.Issues)
				continue
			}
			c.components[dev] = append(c.components[dev], newTerm(name))
			for _, issue := range comp.Issues {
				c.add(dev, name, issue)
			}
		}
	}
	return c
}

func (c *Catalog) add(device, component string, issue model.IssueEntry) {
	keyword := normalize(issue.Keyword)
	if keyword == "" || !issue.Valid() {
		c.skipped++
		return
	}
	c.patterns = append(c.patterns, Pattern{
		Device:      device,
		Component:   component,
		Issue:       keyword,
		Description: issue.Description,
		Solution:    issue.Solution,
		re:          wordMatcher(keyword),
	})
}

// Patterns returns every compiled pattern in catalog order. Callers must not
// modify the returned slice.
func (c *Catalog) Patterns() []Pattern {
	return c.patterns
}

// Len returns the number of compiled patterns.
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// Skipped returns how many issue entries were dropped during compilation.
func (c *Catalog) Skipped() int {
	return c.skipped
}

// Devices returns device names in declaration order.
func (c *Catalog) Devices() []string {
	names := make([]string, len(c.devices))
	for i, d := range c.devices {
		names[i] = d.name
	}
	return names
}

// Components returns the component names of device in declaration order.
func (c *Catalog) Components(device string) []string {
	terms := c.components[normalize(device)]
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.name
	}
	return names
}

// HasDevice reports whether device is declared in the catalog.
func (c *Catalog) HasDevice(device string) bool {
	_, ok := c.components[normalize(device)]
	return ok
}

// DetectDevice returns the first device, in declaration order, whose name
// occurs in text as a whole word.
func (c *Catalog) DetectDevice(text string) (string, bool) {
	for _, d := range c.devices {
		if d.re.MatchString(text) {
			return d.name, true
		}
	}
	return "", false
}

// DetectComponent returns the first component of device, in declaration
// order, whose name occurs in text as a whole word.
func (c *Catalog) DetectComponent(device, text string) (string, bool) {
	for _, comp := range c.components[device] {
		if comp.re.MatchString(text) {
			return comp.name, true
		}
	}
	return "", false
}

func newTerm(name string) term {
	return term{name: name, re: wordMatcher(name)}
}

// wordMatcher matches s case-insensitively on word boundaries, so "phone"
// does not match inside "smartphone".
func wordMatcher(s string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(s) + `\b`)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DeviceSummary describes one device for listings.
type DeviceSummary struct {
	Device     string   `json:"device" yaml:"device"`
	Components []string `json:"components" yaml:"components"`
	Issues     []string `json:"issues" yaml:"issues"`
}

// Summary lists devices in declaration order with their components and the
// keywords of every issue filed under them.
func (c *Catalog) Summary() []DeviceSummary {
	out := make([]DeviceSummary, 0, len(c.devices))
	index := make(map[string]int, len(c.devices))
	for _, name := range c.Devices() {
		index[name] = len(out)
		out = append(out, DeviceSummary{
			Device:     name,
			Components: c.Components(name),
			Issues:     []string{},
		})
	}
	for _, p := range c.patterns {
		s := &out[index[p.Device]]
		s.Issues = append(s.Issues, p.Issue)
	}
	return out
}
