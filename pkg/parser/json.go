package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// decodeJSON builds the same node tree yaml.v3 would, from the encoding/json
// token stream. yaml.v3 rejects some legal JSON, such as the \/ escape.
func decodeJSON(raw []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	root, err := jsonNode(dec, raw)
	if err != nil {
		return nil, err
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Line: 1, Content: []*yaml.Node{root}}, nil
}

func jsonNode(dec *json.Decoder, raw []byte) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	line := lineAt(raw, dec.InputOffset())

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Line: line}
			for dec.More() {
				child, err := jsonNode(dec, raw)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, child)
			}
			_, err := dec.Token()
			return node, err
		case '{':
			node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: line}
			for dec.More() {
				key, err := jsonNode(dec, raw)
				if err != nil {
					return nil, err
				}
				value, err := jsonNode(dec, raw)
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, key, value)
			}
			_, err := dec.Token()
			return node, err
		}
		return nil, fmt.Errorf("line %d: unexpected %q", line, t)
	case string:
		return scalar("!!str", t, line), nil
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return scalar("!!int", t.String(), line), nil
		}
		return scalar("!!float", t.String(), line), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t), line), nil
	case nil:
		return scalar("!!null", "null", line), nil
	}
	return nil, fmt.Errorf("line %d: unexpected token %v", line, tok)
}

func scalar(tag, value string, line int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Line: line}
}

// lineAt returns the 1-based line of offset in raw.
func lineAt(raw []byte, offset int64) int {
	if offset > int64(len(raw)) {
		offset = int64(len(raw))
	}
	return bytes.Count(raw[:offset], []byte("\n")) + 1
}
