package dom

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Window owns exactly one Document for its lifetime.
// https://html.spec.whatwg.org/multipage/nav-history-apis.html#window
type Window struct {
	id       uuid.UUID
	document *Document
}

// NewWindow creates a window holding an empty document.
func NewWindow() *Window {
	w := &Window{id: uuid.New()}
	w.document = newDocument(w)
	return w
}

// ID identifies the window, mostly for correlating log lines.
func (w *Window) ID() uuid.UUID {
	return w.id
}

// Document is https://html.spec.whatwg.org/multipage/nav-history-apis.html#dom-document-2
func (w *Window) Document() *Document {
	return w.document
}

// Document is an arena of nodes. Slot 0 is always the document node itself.
// https://dom.spec.whatwg.org/#interface-document
type Document struct {
	window *Window
	nodes  []nodeData
}

func newDocument(w *Window) *Document {
	d := &Document{window: w}
	d.alloc(nodeData{nodeType: DocumentNode})
	return d
}

// Window returns the window the document belongs to.
func (d *Document) Window() *Window {
	return d.window
}

// Root returns the document node.
func (d *Document) Root() Node {
	return Node{doc: d, id: 0}
}

// Node resolves a handle. Unknown handles resolve to an invalid Node.
func (d *Document) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return Node{}
	}
	return Node{doc: d, id: id}
}

// Len is the number of nodes in the document, including the document node.
func (d *Document) Len() int {
	return len(d.nodes)
}

// All yields every node reachable from the root in tree order.
func (d *Document) All() iter.Seq[Node] {
	return d.Root().Descendants()
}

func (d *Document) String() string {
	return d.Root().String()
}

func (d *Document) alloc(n nodeData) NodeID {
	n.parent, n.firstChild, n.lastChild = NoNode, NoNode, NoNode
	n.previousSibling, n.nextSibling = NoNode, NoNode
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

func (d *Document) slot(id NodeID) *nodeData {
	if id < 0 || int(id) >= len(d.nodes) {
		panic(fmt.Sprintf("dom: node %d does not exist", id))
	}
	return &d.nodes[id]
}

// CreateElement allocates a detached element node.
// https://dom.spec.whatwg.org/#concept-create-element
func (d *Document) CreateElement(kind ElementKind, attrs []Attribute) NodeID {
	return d.alloc(nodeData{
		nodeType: ElementNode,
		element:  &Element{Kind: kind, Attributes: attrs},
	})
}

// CreateElementByName allocates a detached element for a tag name. Names
// outside the supported vocabulary fail with ErrUnsupportedElement.
func (d *Document) CreateElementByName(name string, attrs []Attribute) (NodeID, error) {
	kind, err := ParseElementKind(name)
	if err != nil {
		return NoNode, err
	}
	return d.CreateElement(kind, attrs), nil
}

// CreateText allocates a detached text node.
// https://dom.spec.whatwg.org/#dom-document-createtextnode
func (d *Document) CreateText(data string) NodeID {
	return d.alloc(nodeData{nodeType: TextNode, text: []byte(data)})
}

// AppendChild links child as the new last child of parent. The tail is found
// by walking the forward sibling chain from the first child.
// https://dom.spec.whatwg.org/#concept-node-append
func (d *Document) AppendChild(parent, child NodeID) {
	if parent == child {
		panic(fmt.Sprintf("dom: node %d cannot be its own child", child))
	}
	p, c := d.slot(parent), d.slot(child)
	if c.parent != NoNode {
		panic(fmt.Sprintf("dom: node %d already has parent %d", child, c.parent))
	}
	if c.nodeType == DocumentNode {
		panic("dom: the document node cannot be a child")
	}
	if p.nodeType == TextNode {
		panic(fmt.Sprintf("dom: text node %d cannot have children", parent))
	}

	if p.firstChild == NoNode {
		p.firstChild = child
	} else {
		tail := p.firstChild
		for d.nodes[tail].nextSibling != NoNode {
			tail = d.nodes[tail].nextSibling
		}
		d.nodes[tail].nextSibling = child
		c.previousSibling = tail
	}
	p.lastChild = child
	c.parent = parent
}

// AppendData appends a character to a text node in place.
// https://dom.spec.whatwg.org/#dom-characterdata-appenddata
func (d *Document) AppendData(id NodeID, r rune) {
	n := d.slot(id)
	if n.nodeType != TextNode {
		panic(fmt.Sprintf("dom: node %d is a %s node, not text", id, n.nodeType))
	}
	n.text = utf8.AppendRune(n.text, r)
}
