package parser

import (
	"fmt"

	"github.com/heathj/minibrowser/parser/dom"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TokenSource is anything that hands out tokens one at a time. ok is false
// once the source is exhausted. *Tokenizer is the usual source.
type TokenSource interface {
	Next() (Token, bool)
}

// TreeConstructor holds the state for various state of the tree construction phase.
type TreeConstructor struct {
	config                Config
	log                   *logrus.Entry
	window                *dom.Window
	document              *dom.Document
	mode                  insertionMode
	originalInsertionMode insertionMode
	stackOfOpenElements   []dom.NodeID
	parseErrors           []ParseError
	stopped               bool
	mappings              map[insertionMode]treeConstructionModeHandler
}

// NewTreeConstructor creates a TreeConstructor.
func NewTreeConstructor(cfg Config) *TreeConstructor {
	c := &TreeConstructor{config: cfg}
	c.createMappings()
	return c
}

func (c *TreeConstructor) createMappings() {
	c.mappings = map[insertionMode]treeConstructionModeHandler{
		initial:        c.initialModeHandler,
		beforeHTML:     c.beforeHTMLModeHandler,
		beforeHead:     c.beforeHeadModeHandler,
		inHead:         c.inHeadModeHandler,
		afterHead:      c.afterHeadModeHandler,
		inBody:         c.inBodyModeHandler,
		text:           c.textModeHandler,
		afterBody:      c.afterBodyModeHandler,
		afterAfterBody: c.afterAfterBodyModeHandler,
	}
}

// Errors returns the recoverable parse errors seen by the last ConstructTree.
func (c *TreeConstructor) Errors() []ParseError {
	return append([]ParseError(nil), c.parseErrors...)
}

// ConstructTree drains src and returns the window holding the built document.
// The only errors returned are from strict parses; malformed markup is
// otherwise repaired and recorded in Errors.
func (c *TreeConstructor) ConstructTree(src TokenSource) (*dom.Window, error) {
	c.window = dom.NewWindow()
	c.document = c.window.Document()
	c.mode = initial
	c.originalInsertionMode = initial
	c.stackOfOpenElements = c.stackOfOpenElements[:0]
	c.parseErrors = nil
	c.stopped = false
	c.log = c.config.logger().WithField("window", c.window.ID().String())

	c.log.Debug("constructing tree")
	for !c.stopped {
		t, ok := src.Next()
		if !ok {
			break
		}
		if err := c.processToken(&t); err != nil {
			return nil, err
		}
	}
	c.log.WithFields(logrus.Fields{
		"nodes":  c.document.Len(),
		"errors": len(c.parseErrors),
	}).Debug("tree constructed")
	return c.window, nil
}

func (c *TreeConstructor) processToken(t *Token) error {
	var (
		reprocess = true
		nextMode  insertionMode
		parseErr  parseError
	)
	for reprocess && !c.stopped {
		mode := c.mode
		reprocess, nextMode, parseErr = c.mappings[mode](t)
		if parseErr != noError {
			if err := c.reportError(parseErr, mode, t); err != nil {
				return err
			}
		}
		if nextMode != mode {
			c.log.WithFields(logrus.Fields{"from": mode, "to": nextMode}).Debug("switching insertion mode")
		}
		c.mode = nextMode
	}
	return nil
}

func (c *TreeConstructor) reportError(code parseError, mode insertionMode, t *Token) error {
	if code == unsupportedElementError && c.config.Strict {
		_, err := dom.ParseElementKind(t.TagName)
		return errors.Wrapf(err, "%s insertion mode", mode)
	}

	pe := ParseError{Code: code.String(), Mode: mode.String(), Token: *t}
	c.parseErrors = append(c.parseErrors, pe)
	c.log.WithFields(logrus.Fields{
		"code":  pe.Code,
		"mode":  pe.Mode,
		"token": t.String(),
	}).Debug("parse error")
	return nil
}

func (c *TreeConstructor) stop() {
	c.stopped = true
}

func elementKindFor(name string) dom.ElementKind {
	kind, err := dom.ParseElementKind(name)
	if err != nil {
		panic(err)
	}
	return kind
}

// https://html.spec.whatwg.org/multipage/parsing.html#current-node
func (c *TreeConstructor) currentNode() dom.Node {
	if len(c.stackOfOpenElements) == 0 {
		return c.document.Root()
	}
	return c.document.Node(c.stackOfOpenElements[len(c.stackOfOpenElements)-1])
}

// insertElement creates an element, appends it to the current node and
// pushes it onto the stack of open elements.
// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-foreign-element
func (c *TreeConstructor) insertElement(kind dom.ElementKind, attrs []dom.Attribute) dom.NodeID {
	id := c.document.CreateElement(kind, attrs)
	c.document.AppendChild(c.currentNode().ID(), id)
	c.stackOfOpenElements = append(c.stackOfOpenElements, id)
	return id
}

func (c *TreeConstructor) insertHTMLElementForToken(t *Token) dom.NodeID {
	return c.insertElement(elementKindFor(t.TagName), t.Attributes)
}

// insertCharacter appends to the trailing text node of the current node, or
// starts a new one. Whitespace never starts a text node on its own.
// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-character
func (c *TreeConstructor) insertCharacter(r rune) {
	parent := c.currentNode()
	if parent.Type() == dom.DocumentNode {
		return
	}

	if last := parent.LastChild(); last.Type() == dom.TextNode {
		c.document.AppendData(last.ID(), r)
		return
	}
	if isASCIIWhitespace(r) {
		return
	}
	c.document.AppendChild(parent.ID(), c.document.CreateText(string(r)))
}

func (c *TreeConstructor) popCurrentNode() dom.Node {
	if len(c.stackOfOpenElements) == 0 {
		panic("tree constructor: pop from an empty stack of open elements")
	}
	n := c.currentNode()
	c.stackOfOpenElements = c.stackOfOpenElements[:len(c.stackOfOpenElements)-1]
	return n
}

// popCurrentNodeIf pops the current node only if it is of the given kind.
func (c *TreeConstructor) popCurrentNodeIf(kind dom.ElementKind) bool {
	if len(c.stackOfOpenElements) == 0 || !c.currentNode().IsElement(kind) {
		return false
	}
	c.popCurrentNode()
	return true
}

// popUntil pops elements up to and including the topmost one of the given
// kind. The kind must be on the stack.
func (c *TreeConstructor) popUntil(kind dom.ElementKind) {
	if !c.containsKind(kind) {
		panic(fmt.Sprintf("tree constructor: no %s element on the stack of open elements", kind))
	}
	for !c.popCurrentNode().IsElement(kind) {
	}
}

func (c *TreeConstructor) containsKind(kind dom.ElementKind) bool {
	for _, id := range c.stackOfOpenElements {
		if c.document.Node(id).IsElement(kind) {
			return true
		}
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#close-a-p-element
func (c *TreeConstructor) closePElement() {
	if c.containsKind(dom.ElementP) {
		c.popUntil(dom.ElementP)
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
func (c *TreeConstructor) initialModeHandler(t *Token) (bool, insertionMode, parseError) {
	if t.Type == CharacterToken {
		return false, initial, noError
	}
	return true, beforeHTML, noError
}

func (c *TreeConstructor) defaultBeforeHTMLModeHandler(t *Token) (bool, insertionMode, parseError) {
	c.insertElement(dom.ElementHTML, nil)
	return true, beforeHead, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-html-insertion-mode
func (c *TreeConstructor) beforeHTMLModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch {
	case t.isWhitespace():
		return false, beforeHTML, noError
	case t.isStartTag("html"):
		c.insertHTMLElementForToken(t)
		return false, beforeHead, noError
	}
	return c.defaultBeforeHTMLModeHandler(t)
}

func (c *TreeConstructor) defaultBeforeHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	c.insertElement(dom.ElementHead, nil)
	return true, inHead, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-head-insertion-mode
func (c *TreeConstructor) beforeHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch {
	case t.isWhitespace():
		return false, beforeHead, noError
	case t.isStartTag("head"):
		c.insertHTMLElementForToken(t)
		return false, inHead, noError
	case t.isStartTag("html"):
		return false, beforeHead, unexpectedStartTagError
	}
	return c.defaultBeforeHeadModeHandler(t)
}

// defaultInHeadModeHandler acts as if a </head> had been seen.
func (c *TreeConstructor) defaultInHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	c.popUntil(dom.ElementHead)
	return true, afterHead, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inhead
func (c *TreeConstructor) inHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.Type {
	case CharacterToken:
		// title text and the like has nowhere to go.
		return false, inHead, noError
	case StartTagToken:
		switch t.TagName {
		case "style", "script":
			c.insertHTMLElementForToken(t)
			c.originalInsertionMode = inHead
			return false, text, noError
		case "body", "p", "h1", "h2":
			// body is reprocessed rather than skipped so its attributes survive.
		case "html", "head":
			return false, inHead, unexpectedStartTagError
		default:
			// meta, title and friends have no element kind.
			return false, inHead, noError
		}
	case EndTagToken:
		switch t.TagName {
		case "head":
			c.popUntil(dom.ElementHead)
			return false, afterHead, noError
		case "body", "html":
		default:
			if !dom.IsSupportedElement(t.TagName) {
				return false, inHead, noError
			}
			return false, inHead, unexpectedEndTagError
		}
	}
	return c.defaultInHeadModeHandler(t)
}

func (c *TreeConstructor) defaultAfterHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	c.insertElement(dom.ElementBody, nil)
	return true, inBody, noError
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-head-insertion-mode
func (c *TreeConstructor) afterHeadModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch {
	case t.isWhitespace():
		return false, afterHead, noError
	case t.isStartTag("body"):
		c.insertHTMLElementForToken(t)
		return false, inBody, noError
	case t.isStartTag("html", "head"):
		return false, afterHead, unexpectedStartTagError
	}
	return c.defaultAfterHeadModeHandler(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *TreeConstructor) inBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.Type {
	case CharacterToken:
		c.insertCharacter(t.Char)
	case EndOfFileToken:
		c.stop()
	case StartTagToken:
		return c.inBodyStartTag(t)
	case EndTagToken:
		return c.inBodyEndTag(t)
	}
	return false, inBody, noError
}

func (c *TreeConstructor) inBodyStartTag(t *Token) (bool, insertionMode, parseError) {
	err := noError
	switch t.TagName {
	case "html", "head", "body":
		return false, inBody, unexpectedStartTagError
	case "style", "script":
		c.insertHTMLElementForToken(t)
		c.originalInsertionMode = inBody
		return false, text, noError
	case "p":
		c.closePElement()
	case "h1", "h2":
		c.closePElement()
		if cur := c.currentNode(); cur.IsElement(dom.ElementH1) || cur.IsElement(dom.ElementH2) {
			err = unexpectedStartTagError
			c.popCurrentNode()
		}
	default:
		return false, inBody, unsupportedElementError
	}

	c.insertHTMLElementForToken(t)
	return false, inBody, err
}

func (c *TreeConstructor) inBodyEndTag(t *Token) (bool, insertionMode, parseError) {
	switch t.TagName {
	case "body":
		if !c.containsKind(dom.ElementBody) {
			return false, inBody, unexpectedEndTagError
		}
		c.popUntil(dom.ElementBody)
		return false, afterBody, noError
	case "html":
		if !c.containsKind(dom.ElementBody) {
			return false, inBody, unexpectedEndTagError
		}
		c.popUntil(dom.ElementBody)
		if !c.popCurrentNodeIf(dom.ElementHTML) {
			panic("tree constructor: body was not a child of html on the stack of open elements")
		}
		return true, afterBody, noError
	case "p", "h1", "h2":
		kind := elementKindFor(t.TagName)
		if !c.containsKind(kind) {
			return false, inBody, unexpectedEndTagError
		}
		c.popUntil(kind)
		return false, inBody, noError
	}
	return false, inBody, unexpectedEndTagError
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incdata
func (c *TreeConstructor) textModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.Type {
	case CharacterToken:
		c.insertCharacter(t.Char)
		return false, text, noError
	case EndOfFileToken:
		c.stop()
		return false, text, unexpectedEOFError
	case EndTagToken:
		for _, kind := range []dom.ElementKind{dom.ElementStyle, dom.ElementScript} {
			if t.TagName == kind.String() && c.currentNode().IsElement(kind) {
				c.popCurrentNode()
				return false, c.originalInsertionMode, noError
			}
		}
	}

	// anything else closes the raw text element and is handled by the mode
	// it was opened in.
	err := unexpectedStartTagError
	if t.Type == EndTagToken {
		err = unexpectedEndTagError
	}
	c.popCurrentNode()
	return true, c.originalInsertionMode, err
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterbody
func (c *TreeConstructor) afterBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch {
	case t.Type == CharacterToken:
		return false, afterBody, noError
	case t.isEndTag("html"):
		return false, afterAfterBody, noError
	case t.Type == EndOfFileToken:
		c.stop()
		return false, afterBody, noError
	}
	return false, afterAfterBody, generalParseError
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-body-insertion-mode
func (c *TreeConstructor) afterAfterBodyModeHandler(t *Token) (bool, insertionMode, parseError) {
	switch t.Type {
	case CharacterToken:
		return false, afterAfterBody, noError
	case EndOfFileToken:
		c.stop()
		return false, afterAfterBody, noError
	}
	return false, afterAfterBody, generalParseError
}

type insertionMode uint

const (
	initial insertionMode = iota
	beforeHTML
	beforeHead
	inHead
	afterHead
	inBody
	text
	afterBody
	afterAfterBody
)

var insertionModeNames = [...]string{
	initial:        "Initial",
	beforeHTML:     "BeforeHtml",
	beforeHead:     "BeforeHead",
	inHead:         "InHead",
	afterHead:      "AfterHead",
	inBody:         "InBody",
	text:           "Text",
	afterBody:      "AfterBody",
	afterAfterBody: "AfterAfterBody",
}

func (m insertionMode) String() string {
	if int(m) < len(insertionModeNames) {
		return insertionModeNames[m]
	}
	return fmt.Sprintf("insertionMode(%d)", uint(m))
}

// a treeConstructionModeHandler processes one token and returns whether to
// reprocess it, the insertion mode to continue in and any parse error seen.
type treeConstructionModeHandler func(t *Token) (bool, insertionMode, parseError)
