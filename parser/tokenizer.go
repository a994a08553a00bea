package parser

import (
	"iter"
	"slices"

	"github.com/sirupsen/logrus"
)

// Tokenizer holds state for the various states of the tokenizer. It makes a
// single forward pass over its input; there is no way to rewind it.
type Tokenizer struct {
	done                    bool
	reconsume               bool
	currentState            tokenizerState
	input                   []rune
	pos                     int
	emittedTokens           []Token
	tokenBuilder            *TokenBuilder
	tempBuffer              []rune
	lastEmittedStartTagName string
	log                     *logrus.Entry
}

// NewTokenizer creates a tokenizer over an already decoded document.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{
		input:        []rune(input),
		tokenBuilder: newTokenBuilder(),
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
}

// SetLogger routes the tokenizer's trace output to l.
func (p *Tokenizer) SetLogger(l *logrus.Entry) {
	p.log = l
}

// Tokenize returns every token of input, ending with the EndOfFile token.
func Tokenize(input string) []Token {
	return slices.Collect(NewTokenizer(input).All())
}

// Next returns the next token. ok is false once the stream is exhausted,
// which only happens after the EndOfFile token has been returned.
func (p *Tokenizer) Next() (Token, bool) {
	// some states emit more than 1 token at a time and sometimes no tokens.
	// loop until at least 1 token is emitted and then take it.
	for {
		if len(p.emittedTokens) > 0 {
			t := p.emittedTokens[0]
			p.emittedTokens = p.emittedTokens[1:]
			return t, true
		}
		if p.done {
			return Token{}, false
		}

		if p.pos >= len(p.input) {
			p.processRune(0, true)
			continue
		}
		r := p.input[p.pos]
		p.pos++
		p.processRune(r, false)
	}
}

// All yields the remaining tokens in order.
func (p *Tokenizer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			t, ok := p.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

func (p *Tokenizer) processRune(r rune, eof bool) {
	p.reconsume = true
	for p.reconsume {
		from := p.currentState
		p.reconsume, p.currentState = p.stateToParser(p.currentState)(r, eof)
		if p.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
			p.log.WithFields(logrus.Fields{
				"rune":      string(r),
				"eof":       eof,
				"from":      from,
				"to":        p.currentState,
				"reconsume": p.reconsume,
			}).Trace("[TOKEN]")
		}
	}
}

func (p *Tokenizer) emit(tokens ...Token) {
	for _, token := range tokens {
		if p.done {
			return
		}
		switch token.Type {
		case StartTagToken:
			p.lastEmittedStartTagName = token.TagName
		case EndOfFileToken:
			p.done = true
		}
		p.emittedTokens = append(p.emittedTokens, token)
	}
}

func (p *Tokenizer) emitChars(rs ...rune) {
	for _, r := range rs {
		p.emit(NewCharacterToken(r))
	}
}

// emitCurrentTag emits the tag under construction and returns the state to
// continue in. Script contents are lexed as script data.
func (p *Tokenizer) emitCurrentTag() tokenizerState {
	t := p.tokenBuilder.Take()
	p.emit(t)
	if t.Type == StartTagToken && t.TagName == "script" {
		return scriptDataState
	}
	return dataState
}

// emitEOF drops any half-built tag and ends the stream.
func (p *Tokenizer) emitEOF() (bool, tokenizerState) {
	p.tokenBuilder.Discard()
	p.emit(NewEndOfFileToken())
	return false, dataState
}

func (p *Tokenizer) isApprEndTagToken() bool {
	return p.lastEmittedStartTagName == p.tokenBuilder.Name()
}

func isASCIIWhitespace(r rune) bool {
	switch r {
	case '\u0009', '\u000A', '\u000C', '\u000D', ' ':
		return true
	default:
		return false
	}
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// https://html.spec.whatwg.org/multipage/parsing.html#data-state
func (p *Tokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, tagOpenState
	default:
		p.emitChars(r)
		return false, dataState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#tag-open-state
func (p *Tokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitChars('<')
		return p.emitEOF()
	}
	switch {
	case r == '/':
		return false, endTagOpenState
	case isASCIIAlpha(r):
		p.tokenBuilder.NewTag(startTag)
		return true, tagNameState
	default:
		p.emitChars('<')
		return true, dataState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#end-tag-open-state
func (p *Tokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitChars('<', '/')
		return p.emitEOF()
	}
	switch {
	case isASCIIAlpha(r):
		p.tokenBuilder.NewTag(endTag)
		return true, tagNameState
	case r == '>':
		return false, dataState
	default:
		p.emitChars('<', '/')
		return true, dataState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#tag-name-state
func (p *Tokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch {
	case isASCIIWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		p.tokenBuilder.WriteName(r)
		return false, tagNameState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#before-attribute-name-state
func (p *Tokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/', r == '>':
		return true, afterAttributeNameState
	case r == '=':
		// set that attribute's name to the current input character, and its value to the empty string.
		p.tokenBuilder.StartAttribute()
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.tokenBuilder.StartAttribute()
		return true, attributeNameState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#attribute-name-state
func (p *Tokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch {
	case isASCIIWhitespace(r), r == '/', r == '>':
		return true, afterAttributeNameState
	case r == '=':
		return false, beforeAttributeValueState
	default:
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#after-attribute-name-state
func (p *Tokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch {
	case isASCIIWhitespace(r):
		return false, afterAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '=':
		return false, beforeAttributeValueState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		p.tokenBuilder.StartAttribute()
		return true, attributeNameState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#before-attribute-value-state
func (p *Tokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, attributeValueUnquotedState
	}
	switch {
	case isASCIIWhitespace(r):
		return false, beforeAttributeValueState
	case r == '"':
		return false, attributeValueDoubleQuotedState
	case r == '\'':
		return false, attributeValueSingleQuotedState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#attribute-value-(double-quoted)-state
func (p *Tokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '"':
		return false, afterAttributeValueQuotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueDoubleQuotedState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#attribute-value-(single-quoted)-state
func (p *Tokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '\'':
		return false, afterAttributeValueQuotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueSingleQuotedState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#attribute-value-(unquoted)-state
func (p *Tokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch {
	case isASCIIWhitespace(r):
		return false, beforeAttributeNameState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#after-attribute-value-(quoted)-state
func (p *Tokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch {
	case isASCIIWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		return true, beforeAttributeNameState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#self-closing-start-tag-state
func (p *Tokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '>':
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	default:
		return true, beforeAttributeNameState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#script-data-state
func (p *Tokenizer) scriptDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, scriptDataLessThanSignState
	default:
		p.emitChars(r)
		return false, scriptDataState
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#script-data-less-than-sign-state
func (p *Tokenizer) scriptDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tempBuffer = p.tempBuffer[:0]
		return false, scriptDataEndTagOpenState
	}
	p.emitChars('<')
	return true, scriptDataState
}

// https://html.spec.whatwg.org/multipage/parsing.html#script-data-end-tag-open-state
func (p *Tokenizer) scriptDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.tokenBuilder.NewTag(endTag)
		return true, scriptDataEndTagNameState
	}
	p.emitChars('<', '/')
	return true, scriptDataState
}

// defaultScriptDataEndTagNameStateCase gives up on the end tag: everything
// consumed since the "<" is replayed as character data.
func (p *Tokenizer) defaultScriptDataEndTagNameStateCase() (bool, tokenizerState) {
	p.tokenBuilder.Discard()
	p.tempBuffer = append([]rune{'<', '/'}, p.tempBuffer...)
	return true, temporaryBufferState
}

// https://html.spec.whatwg.org/multipage/parsing.html#script-data-end-tag-name-state
func (p *Tokenizer) scriptDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.defaultScriptDataEndTagNameStateCase()
	}
	switch {
	case isASCIIWhitespace(r):
		if p.isApprEndTagToken() {
			return false, beforeAttributeNameState
		}
		return p.defaultScriptDataEndTagNameStateCase()
	case r == '/':
		if p.isApprEndTagToken() {
			return false, selfClosingStartTagState
		}
		return p.defaultScriptDataEndTagNameStateCase()
	case r == '>':
		if p.isApprEndTagToken() {
			return false, p.emitCurrentTag()
		}
		return p.defaultScriptDataEndTagNameStateCase()
	case isASCIIAlpha(r):
		p.tempBuffer = append(p.tempBuffer, r)
		p.tokenBuilder.WriteName(r)
		return false, scriptDataEndTagNameState
	default:
		return p.defaultScriptDataEndTagNameStateCase()
	}
}

// temporaryBufferStateParser drains the temporary buffer one character per
// step and then hands the current character back to script data.
// https://html.spec.whatwg.org/multipage/parsing.html#temporary-buffer
func (p *Tokenizer) temporaryBufferStateParser(r rune, eof bool) (bool, tokenizerState) {
	if len(p.tempBuffer) == 0 {
		return true, scriptDataState
	}
	p.emitChars(p.tempBuffer[0])
	p.tempBuffer = p.tempBuffer[1:]
	return true, temporaryBufferState
}

// a parserStateHandler is a func that takes in a rune and a bool representing the end of file
// and returns whether to reconsume the rune and the next state to transition to.
type parserStateHandler func(in rune, eof bool) (bool, tokenizerState)

func (p *Tokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case scriptDataState:
		return p.scriptDataStateParser
	case scriptDataLessThanSignState:
		return p.scriptDataLessThanSignStateParser
	case scriptDataEndTagOpenState:
		return p.scriptDataEndTagOpenStateParser
	case scriptDataEndTagNameState:
		return p.scriptDataEndTagNameStateParser
	case temporaryBufferState:
		return p.temporaryBufferStateParser
	}

	panic("tokenizer: no handler for " + state.String())
}

type tokenizerState uint

const (
	dataState tokenizerState = iota
	tagOpenState
	endTagOpenState
	tagNameState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	scriptDataState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	temporaryBufferState
)

var tokenizerStateNames = [...]string{
	dataState:                       "Data",
	tagOpenState:                    "TagOpen",
	endTagOpenState:                 "EndTagOpen",
	tagNameState:                    "TagName",
	beforeAttributeNameState:        "BeforeAttributeName",
	attributeNameState:              "AttributeName",
	afterAttributeNameState:         "AfterAttributeName",
	beforeAttributeValueState:       "BeforeAttributeValue",
	attributeValueDoubleQuotedState: "AttributeValueDoubleQuoted",
	attributeValueSingleQuotedState: "AttributeValueSingleQuoted",
	attributeValueUnquotedState:     "AttributeValueUnquoted",
	afterAttributeValueQuotedState:  "AfterAttributeValueQuoted",
	selfClosingStartTagState:        "SelfClosingStartTag",
	scriptDataState:                 "ScriptData",
	scriptDataLessThanSignState:     "ScriptDataLessThanSign",
	scriptDataEndTagOpenState:       "ScriptDataEndTagOpen",
	scriptDataEndTagNameState:       "ScriptDataEndTagName",
	temporaryBufferState:            "TemporaryBuffer",
}

func (s tokenizerState) String() string {
	if int(s) < len(tokenizerStateNames) {
		return tokenizerStateNames[s]
	}
	return "tokenizerState(?)"
}
