package analyzer

import (
	"fmt"
	"strings"

	"github.com/helmcode/devdiag/pkg/catalog"
	"github.com/helmcode/devdiag/pkg/similarity"
)

// Detection is the device and component context found in the input.
// Empty fields mean nothing was detected.
type Detection struct {
	Device    string
	Component string
}

// Detect finds the first declared device mentioned in text and, only if one
// was found, the first declared component of that device.
func (a *Analyzer) Detect(text string) Detection {
	var d Detection
	device, ok := a.catalog.DetectDevice(text)
	if !ok {
		return d
	}
	d.Device = device
	d.Component, _ = a.catalog.DetectComponent(device, text)
	return d
}

// FilterPolicy decides which patterns of a detected device are candidates
// when no component was detected.
type FilterPolicy string

const (
	// FilterIncludeComponents keeps every pattern of the device.
	FilterIncludeComponents FilterPolicy = "include_components"
	// FilterDeviceLevelOnly keeps only the device's componentless patterns.
	FilterDeviceLevelOnly FilterPolicy = "device_only"
)

// ParseFilterPolicy converts a config value into a FilterPolicy. An empty
// value selects the default.
func ParseFilterPolicy(s string) (FilterPolicy, error) {
	switch FilterPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case FilterIncludeComponents, "":
		return FilterIncludeComponents, nil
	case FilterDeviceLevelOnly:
		return FilterDeviceLevelOnly, nil
	default:
		return "", fmt.Errorf("unsupported filter policy: %s (supported: include_components, device_only)", s)
	}
}

// Filter narrows patterns to those consistent with d. Without a detected
// device every pattern is a candidate.
func Filter(d Detection, patterns []catalog.Pattern, policy FilterPolicy) []catalog.Pattern {
	if d.Device == "" {
		return patterns
	}

	out := make([]catalog.Pattern, 0)
	for _, p := range patterns {
		if p.Device != d.Device {
			continue
		}
		switch {
		case d.Component != "":
			if p.Component != d.Component {
				continue
			}
		case policy == FilterDeviceLevelOnly:
			if p.HasComponent() {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// MatchExact returns every candidate whose issue keyword occurs in text as a
// whole word, in candidate order.
func MatchExact(text string, candidates []catalog.Pattern) []catalog.Pattern {
	var out []catalog.Pattern
	for _, p := range candidates {
		if p.Occurs(text) {
			out = append(out, p)
		}
	}
	return out
}

// MatchFuzzy returns the candidate with the lowest similarity score at or
// under threshold. On equal scores the earlier candidate wins.
func MatchFuzzy(text string, candidates []catalog.Pattern, threshold float64) (catalog.Pattern, bool) {
	var (
		best      catalog.Pattern
		bestScore float64
		found     bool
	)
	for _, p := range candidates {
		score, ok := similarity.Within(p.Issue, text, threshold)
		if !ok {
			continue
		}
		if !found || score < bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}
