package dom

import (
	"iter"
	"strings"
)

// NodeType discriminates the node variants a Document can hold.
type NodeType uint16

const (
	ElementNode NodeType = iota + 1
	TextNode
	DocumentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case DocumentNode:
		return "document"
	default:
		return "invalid"
	}
}

// NodeID is a stable handle to a node inside its Document.
type NodeID int32

// NoNode is the handle of an absent node.
const NoNode NodeID = -1

// nodeData is the arena slot for a node. firstChild and nextSibling form the
// owning forward chain; parent, previousSibling and lastChild are lookups only.
type nodeData struct {
	nodeType NodeType
	element  *Element
	text     []byte

	parent, firstChild, lastChild, previousSibling, nextSibling NodeID
}

// Node is a read-only view of a node in a Document. The zero Node is invalid
// and stands for "no node".
// https://dom.spec.whatwg.org/#node
type Node struct {
	doc *Document
	id  NodeID
}

func (n Node) data() *nodeData {
	if n.doc == nil || n.id < 0 || int(n.id) >= len(n.doc.nodes) {
		return nil
	}
	return &n.doc.nodes[n.id]
}

// Valid reports whether the handle resolves to a node.
func (n Node) Valid() bool {
	return n.data() != nil
}

// ID returns the node's handle, or NoNode for an invalid Node.
func (n Node) ID() NodeID {
	if !n.Valid() {
		return NoNode
	}
	return n.id
}

// Document returns the document that owns the node.
func (n Node) Document() *Document {
	return n.doc
}

// Type returns the node's variant, zero if the node is invalid.
func (n Node) Type() NodeType {
	d := n.data()
	if d == nil {
		return 0
	}
	return d.nodeType
}

// Element returns the element payload, nil for non-element nodes.
func (n Node) Element() *Element {
	d := n.data()
	if d == nil {
		return nil
	}
	return d.element
}

// ElementKind returns the element's kind if the node is an element.
func (n Node) ElementKind() (ElementKind, bool) {
	e := n.Element()
	if e == nil {
		return 0, false
	}
	return e.Kind, true
}

// IsElement reports whether n is an element of the given kind.
func (n Node) IsElement(kind ElementKind) bool {
	k, ok := n.ElementKind()
	return ok && k == kind
}

// Attributes returns the element's attributes in source order.
func (n Node) Attributes() []Attribute {
	e := n.Element()
	if e == nil {
		return nil
	}
	return e.Attributes
}

// Attribute returns the value of the named attribute of an element.
func (n Node) Attribute(name string) (string, bool) {
	e := n.Element()
	if e == nil {
		return "", false
	}
	return e.GetAttribute(name)
}

// Data returns the content of a text node.
// https://dom.spec.whatwg.org/#dom-characterdata-data
func (n Node) Data() string {
	d := n.data()
	if d == nil || d.nodeType != TextNode {
		return ""
	}
	return string(d.text)
}

func (n Node) link(id NodeID) Node {
	return n.doc.Node(id)
}

// https://dom.spec.whatwg.org/#dom-node-parentnode
func (n Node) Parent() Node {
	d := n.data()
	if d == nil {
		return Node{}
	}
	return n.link(d.parent)
}

// https://dom.spec.whatwg.org/#dom-node-firstchild
func (n Node) FirstChild() Node {
	d := n.data()
	if d == nil {
		return Node{}
	}
	return n.link(d.firstChild)
}

// https://dom.spec.whatwg.org/#dom-node-lastchild
func (n Node) LastChild() Node {
	d := n.data()
	if d == nil {
		return Node{}
	}
	return n.link(d.lastChild)
}

// https://dom.spec.whatwg.org/#dom-node-previoussibling
func (n Node) PreviousSibling() Node {
	d := n.data()
	if d == nil {
		return Node{}
	}
	return n.link(d.previousSibling)
}

// https://dom.spec.whatwg.org/#dom-node-nextsibling
func (n Node) NextSibling() Node {
	d := n.data()
	if d == nil {
		return Node{}
	}
	return n.link(d.nextSibling)
}

// HasChildNodes is https://dom.spec.whatwg.org/#dom-node-haschildnodes
func (n Node) HasChildNodes() bool {
	return n.FirstChild().Valid()
}

// Children yields the node's children by following the next-sibling chain.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for c := n.FirstChild(); c.Valid(); c = c.NextSibling() {
			if !yield(c) {
				return
			}
		}
	}
}

// Descendants yields n and every node below it in tree order.
func (n Node) Descendants() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		n.walk(yield)
	}
}

func (n Node) walk(yield func(Node) bool) bool {
	if !n.Valid() {
		return true
	}
	if !yield(n) {
		return false
	}
	for c := n.FirstChild(); c.Valid(); c = c.NextSibling() {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// TextContent concatenates the data of every text node below n.
// https://dom.spec.whatwg.org/#dom-node-textcontent
func (n Node) TextContent() string {
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type() == TextNode {
			b.WriteString(d.Data())
		}
	}
	return b.String()
}

// String dumps the subtree rooted at n in the html5lib tree-test format.
func (n Node) String() string {
	var b strings.Builder
	n.serialize(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}
