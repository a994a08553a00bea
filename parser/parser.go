package parser

import (
	"io"

	"github.com/heathj/minibrowser/parser/dom"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config tunes a parse.
type Config struct {
	// Strict aborts the parse on the first start tag outside the supported
	// element vocabulary instead of skipping it.
	Strict bool
	Logger *logrus.Entry
}

func (c Config) logger() *logrus.Entry {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Parser wires a Tokenizer to a TreeConstructor.
type Parser struct {
	Tokenizer       *Tokenizer
	TreeConstructor *TreeConstructor
}

// NewParser creates a parser over an already decoded document.
func NewParser(input string, cfg Config) *Parser {
	tokenizer := NewTokenizer(input)
	tokenizer.SetLogger(cfg.logger())
	return &Parser{
		Tokenizer:       tokenizer,
		TreeConstructor: NewTreeConstructor(cfg),
	}
}

// Parse runs both phases to completion. A Parser can only be used once.
func (p *Parser) Parse() (*dom.Window, error) {
	return p.TreeConstructor.ConstructTree(p.Tokenizer)
}

// Errors returns the recoverable parse errors seen so far.
func (p *Parser) Errors() []ParseError {
	return p.TreeConstructor.Errors()
}

// Parse parses input with the default configuration.
func Parse(input string) (*dom.Window, error) {
	return NewParser(input, Config{}).Parse()
}

// ParseReader reads the whole of r before parsing it.
func ParseReader(r io.Reader, cfg Config) (*dom.Window, []ParseError, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading document")
	}
	p := NewParser(string(b), cfg)
	w, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}
	return w, p.Errors(), nil
}
