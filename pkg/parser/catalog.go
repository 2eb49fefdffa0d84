package parser

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/helmcode/devdiag/pkg/model"
)

// ParseCatalog decodes a JSON or YAML catalog document. The document is a
// sequence of devices:
//
//	[{"device": "phone",
//	  "components": {"screen": {"cracked": {"description": "...", "solution": "..."}}}},
//	 {"device": "wifi",
//	  "issues": {"disconnecting": {"description": "...", "solution": "..."}}}]
//
// Mapping order is preserved: it decides detection priority later on.
// Malformed issue details are kept with empty fields so the compiler can
// skip them; structural problems are returned as errors. Valid JSON goes
// through encoding/json, anything else through yaml.v3.
func ParseCatalog(raw []byte) ([]model.CatalogEntry, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: catalog must be a list of devices", root.Line)
	}

	entries := make([]model.CatalogEntry, 0, len(root.Content))
	for i, node := range root.Content {
		entry, err := parseDevice(node)
		if err != nil {
			return nil, fmt.Errorf("device #%d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decode(raw []byte) (*yaml.Node, error) {
	if json.Valid(raw) {
		return decodeJSON(raw)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func parseDevice(node *yaml.Node) (model.CatalogEntry, error) {
	var entry model.CatalogEntry
	if node.Kind != yaml.MappingNode {
		return entry, fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	var hasDevice bool
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "device":
			if value.Kind != yaml.ScalarNode {
				return entry, fmt.Errorf("line %d: device must be a string", value.Line)
			}
			entry.Device = value.Value
			hasDevice = true
		case "issues":
			issues, err := parseIssues(value)
			if err != nil {
				return entry, err
			}
			entry.Issues = issues
		case "components":
			components, err := parseComponents(value)
			if err != nil {
				return entry, err
			}
			entry.Components = components
		}
	}

	if !hasDevice {
		return entry, fmt.Errorf("line %d: missing \"device\"", node.Line)
	}
	return entry, nil
}

func parseComponents(node *yaml.Node) ([]model.ComponentEntry, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: components must be a mapping", node.Line)
	}

	components := make([]model.ComponentEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, value := node.Content[i], node.Content[i+1]
		issues, err := parseIssues(value)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", name.Value, err)
		}
		components = append(components, model.ComponentEntry{Name: name.Value, Issues: issues})
	}
	return components, nil
}

func parseIssues(node *yaml.Node) ([]model.IssueEntry, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: issues must be a mapping", node.Line)
	}

	issues := make([]model.IssueEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, detail := node.Content[i], node.Content[i+1]
		issue := model.IssueEntry{Keyword: key.Value}
		if detail.Kind == yaml.MappingNode {
			for j := 0; j+1 < len(detail.Content); j += 2 {
				field, value := detail.Content[j], detail.Content[j+1]
				if value.Kind != yaml.ScalarNode || isNull(value) {
					continue
				}
				switch field.Value {
				case "description":
					issue.Description = value.Value
				case "solution":
					issue.Solution = value.Value
				}
			}
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
