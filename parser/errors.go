package parser

import (
	"fmt"
)

type parseError uint

const (
	noError parseError = iota
	generalParseError
	unexpectedStartTagError
	unexpectedEndTagError
	unsupportedElementError
	unexpectedEOFError
)

var parseErrorNames = [...]string{
	noError:                 "no-error",
	generalParseError:       "parse-error",
	unexpectedStartTagError: "unexpected-start-tag",
	unexpectedEndTagError:   "unexpected-end-tag",
	unsupportedElementError: "unsupported-element",
	unexpectedEOFError:      "unexpected-eof",
}

func (e parseError) String() string {
	if int(e) < len(parseErrorNames) {
		return parseErrorNames[e]
	}
	return fmt.Sprintf("parseError(%d)", uint(e))
}

// ParseError records a recoverable problem found while building the tree.
type ParseError struct {
	Code  string
	Mode  string
	Token Token
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s in %s mode at %s", e.Code, e.Mode, e.Token.String())
}
