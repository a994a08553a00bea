package parser

import (
	"fmt"
	"strings"

	"github.com/heathj/minibrowser/parser/dom"
)

// TokenType discriminates the kinds of tokens the tokenizer emits.
type TokenType uint

const (
	CharacterToken TokenType = iota
	StartTagToken
	EndTagToken
	EndOfFileToken
)

func (t TokenType) String() string {
	switch t {
	case CharacterToken:
		return "Character"
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case EndOfFileToken:
		return "EndOfFile"
	default:
		return fmt.Sprintf("TokenType(%d)", uint(t))
	}
}

type tagType uint

const (
	startTag tagType = iota
	endTag
)

// Token is a concrete token that is ready to be emitted. Which fields are
// meaningful depends on Type: tags use TagName, SelfClosing and Attributes,
// character tokens use Char.
type Token struct {
	Type        TokenType
	TagName     string
	SelfClosing bool
	Attributes  []dom.Attribute
	Char        rune
}

// Equal compares two tokens field by field.
func (t *Token) Equal(o *Token) bool {
	if t.Type != o.Type {
		return false
	}
	switch t.Type {
	case CharacterToken:
		return t.Char == o.Char
	case StartTagToken:
		if t.TagName != o.TagName || t.SelfClosing != o.SelfClosing || len(t.Attributes) != len(o.Attributes) {
			return false
		}
		for i := range t.Attributes {
			if t.Attributes[i] != o.Attributes[i] {
				return false
			}
		}
		return true
	case EndTagToken:
		return t.TagName == o.TagName
	}
	return true
}

func (t *Token) String() string {
	switch t.Type {
	case CharacterToken:
		return fmt.Sprintf("Character(%q)", t.Char)
	case StartTagToken:
		var b strings.Builder
		b.WriteString("StartTag(<" + t.TagName)
		for _, a := range t.Attributes {
			b.WriteString(" " + a.String())
		}
		if t.SelfClosing {
			b.WriteString(" /")
		}
		b.WriteString(">)")
		return b.String()
	case EndTagToken:
		return "EndTag(</" + t.TagName + ">)"
	case EndOfFileToken:
		return "EndOfFile"
	}
	return t.Type.String()
}

func (t *Token) isWhitespace() bool {
	return t.Type == CharacterToken && isASCIIWhitespace(t.Char)
}

func (t *Token) isStartTag(names ...string) bool {
	return t.Type == StartTagToken && matchesTag(t.TagName, names)
}

func (t *Token) isEndTag(names ...string) bool {
	return t.Type == EndTagToken && matchesTag(t.TagName, names)
}

func matchesTag(name string, names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// TokenBuilder builds tag tokens up during the tokenization phase. Calling any
// of the write methods while no tag is under construction is a bug in the
// state machine and panics.
type TokenBuilder struct {
	building    bool
	curTagType  tagType
	name        strings.Builder
	selfClosing bool
	attributes  []dom.Attribute
}

func newTokenBuilder() *TokenBuilder {
	return &TokenBuilder{}
}

func (t *TokenBuilder) mustBuild(op string) {
	if !t.building {
		panic("tokenizer: " + op + " called with no tag under construction")
	}
}

// NewTag clears the builder and starts a start or end tag.
func (t *TokenBuilder) NewTag(tt tagType) {
	t.building = true
	t.curTagType = tt
	t.name.Reset()
	t.selfClosing = false
	t.attributes = nil
}

// Building reports whether a tag is under construction.
func (t *TokenBuilder) Building() bool {
	return t.building
}

// WriteName appends a character to the tag name. ASCII upper alphas are
// lowercased.
func (t *TokenBuilder) WriteName(r rune) {
	t.mustBuild("WriteName")
	if r >= 'A' && r <= 'Z' {
		r += 0x20
	}
	t.name.WriteRune(r)
}

// Name is the tag name collected so far.
func (t *TokenBuilder) Name() string {
	return t.name.String()
}

// StartAttribute begins a new attribute with an empty name and value.
func (t *TokenBuilder) StartAttribute() {
	t.mustBuild("StartAttribute")
	t.attributes = append(t.attributes, dom.Attribute{})
}

func (t *TokenBuilder) currentAttribute(op string) *dom.Attribute {
	t.mustBuild(op)
	if len(t.attributes) == 0 {
		panic("tokenizer: " + op + " called with no attribute under construction")
	}
	return &t.attributes[len(t.attributes)-1]
}

// WriteAttributeName appends a character to the current attribute's name.
func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.currentAttribute("WriteAttributeName").AppendName(r)
}

// WriteAttributeValue appends a character to the current attribute's value.
func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.currentAttribute("WriteAttributeValue").AppendValue(r)
}

// EnableSelfClosing changes the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.mustBuild("EnableSelfClosing")
	t.selfClosing = true
}

// Discard drops the tag under construction, if any.
func (t *TokenBuilder) Discard() {
	t.building = false
	t.attributes = nil
}

// Take finishes the tag under construction and returns it. End tags never
// carry attributes or the self-closing flag, and duplicate attribute names
// on a start tag keep their first value.
func (t *TokenBuilder) Take() Token {
	t.mustBuild("Take")
	t.building = false

	if t.curTagType == endTag {
		return Token{Type: EndTagToken, TagName: t.name.String()}
	}
	attrs := dom.DedupeAttributes(t.attributes)
	t.attributes = nil
	return Token{
		Type:        StartTagToken,
		TagName:     t.name.String(),
		SelfClosing: t.selfClosing,
		Attributes:  attrs,
	}
}

// NewCharacterToken creates a character token.
func NewCharacterToken(r rune) Token {
	return Token{Type: CharacterToken, Char: r}
}

// NewStartTagToken creates a start tag token.
func NewStartTagToken(name string, selfClosing bool, attrs ...dom.Attribute) Token {
	return Token{Type: StartTagToken, TagName: name, SelfClosing: selfClosing, Attributes: attrs}
}

// NewEndTagToken creates an end tag token.
func NewEndTagToken(name string) Token {
	return Token{Type: EndTagToken, TagName: name}
}

// NewEndOfFileToken creates an end of file token.
func NewEndOfFileToken() Token {
	return Token{Type: EndOfFileToken}
}
