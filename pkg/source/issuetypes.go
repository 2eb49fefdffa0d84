package source

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// IssueTypes maps issue keywords to an issue type label, e.g.
//
//	cracked: hardware
//	disconnecting: connectivity
//
// The document is fetched on first use and memoized for the process
// lifetime.
type IssueTypes struct {
	src  Source
	cell Lazy[map[string]string]
}

// NewIssueTypes returns an index that fetches src on first use.
func NewIssueTypes(src Source) *IssueTypes {
	return &IssueTypes{src: src}
}

// IssueTypes returns the keyword to type index, fetching it if needed.
func (t *IssueTypes) IssueTypes(ctx context.Context) (map[string]string, error) {
	return t.cell.Get(ctx, t.load)
}

func (t *IssueTypes) load(ctx context.Context) (map[string]string, error) {
	raw, err := t.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch issue types from %s: %w", t.src.Location(), err)
	}
	return ParseIssueTypes(raw)
}

// ParseIssueTypes decodes a JSON or YAML mapping of keyword to type. Keys are
// normalized the same way catalog keywords are.
func ParseIssueTypes(raw []byte) (map[string]string, error) {
	var doc map[string]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse issue types: %w", err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out, nil
}
