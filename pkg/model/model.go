package model

import "encoding/json"

// CatalogEntry is one device of the raw catalog. Issues holds device-level
// issues (devices without sub-components, e.g. wifi); Components holds the
// per-component issues. Both keep declaration order.
type CatalogEntry struct {
	Device     string           `json:"device" yaml:"device"`
	Issues     []IssueEntry     `json:"issues,omitempty" yaml:"issues,omitempty"`
	Components []ComponentEntry `json:"components,omitempty" yaml:"components,omitempty"`
}

// ComponentEntry is one component of a device and its issues.
type ComponentEntry struct {
	Name   string       `json:"name" yaml:"name"`
	Issues []IssueEntry `json:"issues" yaml:"issues"`
}

// IssueEntry is one catalog issue, keyed by the keyword matched in user text.
type IssueEntry struct {
	Keyword     string `json:"keyword" yaml:"keyword"`
	Description string `json:"description" yaml:"description"`
	Solution    string `json:"solution" yaml:"solution"`
}

// Valid reports whether the issue carries both a description and a solution.
func (i IssueEntry) Valid() bool {
	return i.Description != "" && i.Solution != ""
}

// Match is one diagnosis returned to callers. Component is nil for
// device-level issues.
type Match struct {
	Device      string  `json:"device" yaml:"device"`
	Component   *string `json:"component" yaml:"component"`
	Issue       string  `json:"issue" yaml:"issue"`
	Description string  `json:"description" yaml:"description"`
	Solution    string  `json:"solution" yaml:"solution"`
	IssueType   string  `json:"issue_type,omitempty" yaml:"issue_type,omitempty"`
}

// ExactResult is the response of the exact strategy.
type ExactResult struct {
	Input   string  `json:"input" yaml:"input"`
	Matches []Match `json:"matches" yaml:"matches"`
}

// MarshalJSON keeps "matches" an array even when there are none.
func (r ExactResult) MarshalJSON() ([]byte, error) {
	matches := r.Matches
	if matches == nil {
		matches = []Match{}
	}
	return json.Marshal(struct {
		Input   string  `json:"input"`
		Matches []Match `json:"matches"`
	}{r.Input, matches})
}

func (r ExactResult) MarshalYAML() (interface{}, error) {
	matches := r.Matches
	if matches == nil {
		matches = []Match{}
	}
	return struct {
		Input   string  `yaml:"input"`
		Matches []Match `yaml:"matches"`
	}{r.Input, matches}, nil
}

// FuzzyResult is the response of the fuzzy strategy: a single best match
// or none at all.
type FuzzyResult struct {
	Input string `json:"input" yaml:"input"`
	Match *Match `json:"matches" yaml:"matches"`
}

// MarshalJSON renders "matches" as the matched object, or as an empty
// array when nothing matched.
func (r FuzzyResult) MarshalJSON() ([]byte, error) {
	var matches any = []Match{}
	if r.Match != nil {
		matches = r.Match
	}
	return json.Marshal(struct {
		Input   string `json:"input"`
		Matches any    `json:"matches"`
	}{r.Input, matches})
}

func (r FuzzyResult) MarshalYAML() (interface{}, error) {
	var matches interface{} = []Match{}
	if r.Match != nil {
		matches = r.Match
	}
	return struct {
		Input   string      `yaml:"input"`
		Matches interface{} `yaml:"matches"`
	}{r.Input, matches}, nil
}

// Matches returns the result as a slice, for callers that handle both
// strategies uniformly.
func (r FuzzyResult) Matches() []Match {
	if r.Match == nil {
		return nil
	}
	return []Match{*r.Match}
}
