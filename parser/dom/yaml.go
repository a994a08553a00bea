package dom

import (
	"gopkg.in/yaml.v3"
)

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

// MarshalYAML renders the subtree rooted at n as nested mappings. Attribute
// order is preserved.
func (n Node) MarshalYAML() (interface{}, error) {
	return n.yamlNode(), nil
}

func (n Node) yamlNode() *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	addPair(m, "type", scalar(n.Type().String()))

	switch n.Type() {
	case ElementNode:
		addPair(m, "tag", scalar(n.Element().TagName()))
		if attrs := n.Attributes(); len(attrs) > 0 {
			am := &yaml.Node{Kind: yaml.MappingNode}
			for _, a := range attrs {
				addPair(am, a.Name, scalar(a.Value))
			}
			addPair(m, "attributes", am)
		}
	case TextNode:
		addPair(m, "data", scalar(n.Data()))
	}

	if n.HasChildNodes() {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for c := range n.Children() {
			seq.Content = append(seq.Content, c.yamlNode())
		}
		addPair(m, "children", seq)
	}
	return m
}

// MarshalYAML renders the whole document.
func (d *Document) MarshalYAML() (interface{}, error) {
	return d.Root().MarshalYAML()
}
