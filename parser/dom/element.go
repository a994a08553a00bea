package dom

import (
	"github.com/pkg/errors"
)

// ErrUnsupportedElement is returned when an element is requested for a tag
// name outside of the supported vocabulary.
var ErrUnsupportedElement = errors.New("unsupported element")

// ElementKind is the closed set of elements the tree can hold.
type ElementKind uint8

const (
	// https://html.spec.whatwg.org/multipage/semantics.html#the-html-element
	ElementHTML ElementKind = iota
	// https://html.spec.whatwg.org/multipage/semantics.html#the-head-element
	ElementHead
	// https://html.spec.whatwg.org/multipage/semantics.html#the-style-element
	ElementStyle
	// https://html.spec.whatwg.org/multipage/scripting.html#the-script-element
	ElementScript
	// https://html.spec.whatwg.org/multipage/sections.html#the-body-element
	ElementBody
	// https://html.spec.whatwg.org/multipage/grouping-content.html#the-p-element
	ElementP
	// https://html.spec.whatwg.org/multipage/sections.html#the-h1,-h2,-h3,-h4,-h5,-and-h6-elements
	ElementH1
	ElementH2
)

var elementNames = [...]string{
	ElementHTML:   "html",
	ElementHead:   "head",
	ElementStyle:  "style",
	ElementScript: "script",
	ElementBody:   "body",
	ElementP:      "p",
	ElementH1:     "h1",
	ElementH2:     "h2",
}

// String returns the lowercase tag name of the kind.
func (k ElementKind) String() string {
	if int(k) < len(elementNames) {
		return elementNames[k]
	}
	return "unknown"
}

// ParseElementKind maps a lowercase tag name onto its ElementKind.
func ParseElementKind(name string) (ElementKind, error) {
	for k, n := range elementNames {
		if n == name {
			return ElementKind(k), nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedElement, "tag name %q", name)
}

// IsSupportedElement reports whether name is part of the supported vocabulary.
func IsSupportedElement(name string) bool {
	_, err := ParseElementKind(name)
	return err == nil
}

// Element is the payload of an element node.
// https://dom.spec.whatwg.org/#interface-element
type Element struct {
	Kind       ElementKind
	Attributes []Attribute
}

// TagName is the lowercase name of the element.
func (e *Element) TagName() string {
	return e.Kind.String()
}

// GetAttribute returns the value of the first attribute called name.
// https://dom.spec.whatwg.org/#dom-element-getattribute
func (e *Element) GetAttribute(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute is https://dom.spec.whatwg.org/#dom-element-hasattribute
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}
