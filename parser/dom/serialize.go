package dom

import (
	"sort"
	"strings"
)

func indent(b *strings.Builder, depth int) {
	b.WriteString("| ")
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

// serialize writes the html5lib tree-test representation of n. Attributes are
// sorted by name, as in the html5lib expectations.
func (n Node) serialize(b *strings.Builder, depth int) {
	switch n.Type() {
	case DocumentNode:
		b.WriteString("#document\n")
		for c := range n.Children() {
			c.serialize(b, 0)
		}
		return
	case ElementNode:
		indent(b, depth)
		b.WriteString("<" + n.Element().TagName() + ">\n")

		attrs := append([]Attribute(nil), n.Attributes()...)
		sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
		for _, a := range attrs {
			indent(b, depth+1)
			b.WriteString(a.String() + "\n")
		}
	case TextNode:
		indent(b, depth)
		b.WriteString("\"" + n.Data() + "\"\n")
	default:
		return
	}

	for c := range n.Children() {
		c.serialize(b, depth+1)
	}
}

// https://html.spec.whatwg.org/#escapingString
func escapeString(s string, attrVal bool) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "\u00A0", "&nbsp;", -1)
	if attrVal {
		s = strings.Replace(s, "\"", "&quot;", -1)
	} else {
		s = strings.Replace(s, "<", "&lt;", -1)
		s = strings.Replace(s, ">", "&gt;", -1)
	}

	return s
}

// InnerHTML serializes the children of n.
// https://html.spec.whatwg.org/multipage/parsing.html#serialising-html-fragments
func (n Node) InnerHTML() string {
	var b strings.Builder
	for child := range n.Children() {
		child.writeHTML(&b)
	}
	return b.String()
}

// OuterHTML serializes n itself followed by its children.
func (n Node) OuterHTML() string {
	var b strings.Builder
	if n.Type() == DocumentNode {
		return n.InnerHTML()
	}
	n.writeHTML(&b)
	return b.String()
}

func (n Node) writeHTML(b *strings.Builder) {
	switch n.Type() {
	case ElementNode:
		name := n.Element().TagName()
		b.WriteString("<" + name)
		for _, a := range n.Attributes() {
			b.WriteString(" " + a.Name + "=\"" + escapeString(a.Value, true) + "\"")
		}
		b.WriteString(">")
		b.WriteString(n.InnerHTML())
		b.WriteString("</" + name + ">")
	case TextNode:
		if p := n.Parent(); p.IsElement(ElementStyle) || p.IsElement(ElementScript) {
			b.WriteString(n.Data())
			return
		}
		b.WriteString(escapeString(n.Data(), false))
	}
}

// OuterHTML serializes the whole document back to markup.
func (d *Document) OuterHTML() string {
	return d.Root().InnerHTML()
}
