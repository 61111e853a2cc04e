package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/feitianbubu/aigen"
)

// Headers is an ordered header list. In YAML it is written as a mapping and read from either
// a mapping or a list of {name, value} entries; mapping order is kept.
type Headers []aigen.Header

func (h *Headers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Headers, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: header %q must be a scalar", value.Line, key.Value)
			}
			out = append(out, aigen.Header{Name: key.Value, Value: value.Value})
		}
		*h = out
		return nil
	case yaml.SequenceNode:
		var list []aigen.Header
		if err := node.Decode(&list); err != nil {
			return err
		}
		*h = list
		return nil
	}
	return fmt.Errorf("line %d: headers must be a mapping or a list", node.Line)
}

func (h Headers) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, header := range h {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: header.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: header.Value},
		)
	}
	return node, nil
}
