package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmrzaf/dbfaker/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML (or JSON) config file into a Tree.
func LoadFile(path string) (*Tree, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: unsupported config file extension %q", domain.ErrConfiguration, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}
	tree, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// ParseYAML decodes a document whose root is a mapping. Mapping keys keep
// their order from the source text.
func ParseYAML(data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", domain.ErrConfiguration, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return newEmptyTree(), nil
	}
	v, err := nodeValue(doc.Content[0])
	if err != nil {
		return nil, err
	}
	tree, ok := v.(*Tree)
	if !ok {
		return nil, fmt.Errorf("%w: config root must be a mapping", domain.ErrConfiguration)
	}
	return tree, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		t := newEmptyTree()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Tag == "!!merge" {
				merged, err := nodeValue(v)
				if err != nil {
					return nil, err
				}
				if mt, ok := merged.(*Tree); ok {
					for _, mk := range mt.keys {
						if _, exists := t.values[mk]; !exists {
							t.put(mk, mt.values[mk])
						}
					}
				}
				continue
			}
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: mapping keys must be scalars", domain.ErrConfiguration, k.Line)
			}
			val, err := nodeValue(v)
			if err != nil {
				return nil, err
			}
			t.put(k.Value, val)
		}
		return t, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrConfiguration, n.Line, err)
		}
		return v, nil
	default:
		return nil, nil
	}
}
