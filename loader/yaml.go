package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlContent is the top-level shape of a YAML content file. Presets are
// kept as nodes so entries stay in source order.
type yamlContent struct {
	Presets    yaml.Node                `yaml:"presets"`
	Conditions map[string]yamlCondition `yaml:"conditions"`
}

type yamlCondition struct {
	All []yamlSimple `yaml:"all"`
	Any []yamlSimple `yaml:"any"`
}

type yamlSimple struct {
	Tag   string `yaml:"tag"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
}

// decodeYAML adds the presets and conditions of one YAML document to coll.
//
//	presets:
//	  chapter2:
//	    Quest.Step: 4
//	conditions:
//	  door_ready:
//	    all:
//	      - {tag: Quest.Step, op: ">=", value: 3}
func decodeYAML(data []byte, coll *collector) error {
	var doc yamlContent
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	if doc.Presets.Kind != 0 {
		if doc.Presets.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: presets must be a mapping", doc.Presets.Line)
		}
		for i := 0; i+1 < len(doc.Presets.Content); i += 2 {
			nameNode, body := doc.Presets.Content[i], doc.Presets.Content[i+1]
			entries, err := presetEntriesFromYAML(body)
			if err != nil {
				return fmt.Errorf("preset %q: %w", nameNode.Value, err)
			}
			coll.presets = append(coll.presets, rawPreset{
				name:    nameNode.Value,
				source:  coll.source,
				entries: entries,
			})
		}
	}

	for _, name := range sortedKeys(doc.Conditions) {
		yc := doc.Conditions[name]
		coll.conditions = append(coll.conditions, rawCondition{
			name:   name,
			source: coll.source,
			all:    simplesFromYAML(yc.All),
			any:    simplesFromYAML(yc.Any),
		})
	}
	return nil
}

func presetEntriesFromYAML(body *yaml.Node) ([]rawEntry, error) {
	if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
		return nil, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of fact tags to values", body.Line)
	}
	var entries []rawEntry
	for i := 0; i+1 < len(body.Content); i += 2 {
		var v any
		if err := body.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", body.Content[i+1].Line, err)
		}
		entries = append(entries, rawEntry{tag: body.Content[i].Value, value: v})
	}
	return entries, nil
}

func simplesFromYAML(in []yamlSimple) []rawSimple {
	var out []rawSimple
	for _, ys := range in {
		out = append(out, rawSimple{
			tag:      ys.Tag,
			op:       ys.Op,
			value:    ys.Value,
			hasValue: ys.Value != nil,
		})
	}
	return out
}
