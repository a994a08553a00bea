package parser

import (
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/heathj/minibrowser/parser/dom"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type treeTest struct {
	in       string
	errors   []string
	expected string
}

func getExpectedAndErrors(splits []string) (string, []string) {
	var (
		expected string
		errs     []string
	)
	for i := range splits {
		switch splits[i] {
		case "#errors":
			for j := i + 1; j < len(splits) && !strings.HasPrefix(splits[j], "#"); j++ {
				if len(splits[j]) > 0 {
					errs = append(errs, splits[j])
				}
			}
		case "#document":
			expected = "#document\n"
			for j := i + 1; j < len(splits); j++ {
				if len(splits[j]) == 0 {
					continue
				}

				expected += splits[j] + "\n"
			}
			return expected, errs
		}
	}
	return expected, errs
}

func parseTests(t *testing.T) []treeTest {
	data, err := os.ReadFile("./testdata/tree_construction/basic.dat")
	require.NoError(t, err)

	tests := strings.Split(string(data), "#data\n")
	var treeTests []treeTest
	for i, test := range tests {
		if i == 0 {
			continue
		}
		tt := treeTest{}
		splits := strings.Split(test, "\n")
		for _, s := range splits {
			if s == "#document" || s == "#errors" {
				break
			}
			tt.in += s + "\n"
		}

		if len(tt.in) > 0 {
			tt.in = tt.in[:len(tt.in)-1]
		}
		tt.expected, tt.errors = getExpectedAndErrors(splits)
		treeTests = append(treeTests, tt)
	}

	return treeTests
}

func TestTreeConstructor(t *testing.T) {
	tests := parseTests(t)
	require.NotEmpty(t, tests)
	for _, test := range tests {
		runTreeConstructorTest(test, t)
	}
}

func runTreeConstructorTest(test treeTest, t *testing.T) {
	t.Run(test.in, func(t *testing.T) {
		t.Parallel()
		p := NewParser(test.in, Config{})
		w, err := p.Parse()
		require.NoError(t, err)

		assert.Equal(t, strings.TrimRight(test.expected, "\n"), w.Document().String())

		var codes []string
		for _, pe := range p.Errors() {
			codes = append(codes, pe.Code)
		}
		assert.Equal(t, test.errors, codes)
		assertWellFormed(t, w.Document())
	})
}

// assertWellFormed walks the forward chains from the root and checks that
// every node is reached exactly once and that the backward links agree.
func assertWellFormed(t *testing.T, d *dom.Document) {
	t.Helper()
	seen := make(map[dom.NodeID]bool, d.Len())
	for n := range d.All() {
		require.False(t, seen[n.ID()], "node %d visited twice", n.ID())
		seen[n.ID()] = true

		var prev dom.Node
		for c := range n.Children() {
			assert.Equal(t, n.ID(), c.Parent().ID())
			assert.Equal(t, prev.ID(), c.PreviousSibling().ID())
			prev = c
		}
		assert.Equal(t, prev.ID(), n.LastChild().ID())
	}
	assert.Len(t, seen, d.Len(), "unreachable nodes")
	assert.False(t, d.Root().Parent().Valid())
}

func TestParseSkeleton(t *testing.T) {
	w, err := Parse("<html><head></head><body><p>hi</p></body></html>")
	require.NoError(t, err)

	doc := w.Document()
	assert.Same(t, w, doc.Window())

	html := doc.Root().FirstChild()
	require.True(t, html.IsElement(dom.ElementHTML))
	assert.False(t, html.NextSibling().Valid())

	head := html.FirstChild()
	body := head.NextSibling()
	assert.True(t, head.IsElement(dom.ElementHead))
	assert.True(t, body.IsElement(dom.ElementBody))
	assert.Equal(t, body.ID(), html.LastChild().ID())
	assert.Equal(t, head.ID(), body.PreviousSibling().ID())

	p := body.FirstChild()
	require.True(t, p.IsElement(dom.ElementP))
	hi := p.FirstChild()
	assert.Equal(t, dom.TextNode, hi.Type())
	assert.Equal(t, "hi", hi.Data())
	assert.Equal(t, "hi", body.TextContent())
}

func TestParseTextOnlyProducesSkeleton(t *testing.T) {
	for _, in := range []string{"", "plain text", "   \n ", "a\nb\nc", "</head></body></html>"} {
		w, err := Parse(in)
		require.NoError(t, err)

		html := w.Document().Root().FirstChild()
		require.True(t, html.IsElement(dom.ElementHTML), "input %q", in)
		assert.True(t, html.FirstChild().IsElement(dom.ElementHead), "input %q", in)
		assert.True(t, html.LastChild().IsElement(dom.ElementBody), "input %q", in)
	}
}

func TestParseStrict(t *testing.T) {
	in := "<p>a<div>b</div></p>"

	w, err := NewParser(in, Config{Strict: true}).Parse()
	assert.Nil(t, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, dom.ErrUnsupportedElement)
	assert.Contains(t, err.Error(), "InBody")

	p := NewParser(in, Config{})
	w, err = p.Parse()
	require.NoError(t, err)
	assert.NotNil(t, w)
	errs := p.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "unsupported-element", errs[0].Code)
	assert.Equal(t, "InBody", errs[0].Mode)
	assert.Equal(t, "div", errs[0].Token.TagName)
	assert.Equal(t, "unexpected-end-tag", errs[1].Code)
	assert.Contains(t, errs[0].Error(), "unsupported-element in InBody mode")
}

func TestParseStrictIgnoresUnknownTagsInHead(t *testing.T) {
	_, err := NewParser("<head><meta><title>x</title></head><p>y", Config{Strict: true}).Parse()
	assert.NoError(t, err)
}

func TestParseKeepsHeadContentOutOfBody(t *testing.T) {
	p := NewParser(`<html><head><title>Hi</title><meta charset="utf-8"></head><body class="main"><p>x</p></body></html>`, Config{})
	w, err := p.Parse()
	require.NoError(t, err)
	assert.Empty(t, p.Errors())

	html := w.Document().Root().FirstChild()
	head := html.FirstChild()
	body := html.LastChild()
	require.True(t, head.IsElement(dom.ElementHead))
	require.True(t, body.IsElement(dom.ElementBody))
	assert.False(t, head.HasChildNodes())

	class, ok := body.Attribute("class")
	assert.True(t, ok)
	assert.Equal(t, "main", class)
	assert.Equal(t, "x", body.TextContent())
	assert.True(t, body.FirstChild().IsElement(dom.ElementP))
}

func TestTokenizerTracesThroughLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	tokenizer := NewTokenizer("<p>")
	tokenizer.SetLogger(logrus.NewEntry(logger))
	for range tokenizer.All() {
	}

	require.NotEmpty(t, hook.AllEntries())
	for _, e := range hook.AllEntries() {
		assert.Equal(t, "[TOKEN]", e.Message)
		assert.Equal(t, logrus.TraceLevel, e.Level)
	}
	assert.Equal(t, tagOpenState, hook.AllEntries()[0].Data["to"])
}

func TestParseLogsWindow(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	w, err := NewParser("<p>a<b>", Config{Logger: logrus.NewEntry(logger)}).Parse()
	require.NoError(t, err)

	require.NotEmpty(t, hook.AllEntries())
	var sawParseError bool
	for _, e := range hook.AllEntries() {
		assert.Equal(t, w.ID().String(), e.Data["window"])
		if e.Message == "parse error" {
			sawParseError = true
			assert.Equal(t, "unsupported-element", e.Data["code"])
		}
	}
	assert.True(t, sawParseError)
}

type sliceSource struct {
	tokens []Token
}

func (s *sliceSource) Next() (Token, bool) {
	if len(s.tokens) == 0 {
		return Token{}, false
	}
	t := s.tokens[0]
	s.tokens = s.tokens[1:]
	return t, true
}

func TestConstructTreeFromTokens(t *testing.T) {
	src := &sliceSource{tokens: concat(
		one(NewStartTagToken("body", false, dom.Attribute{Name: "id", Value: "b"})),
		one(NewStartTagToken("h1", false)),
		chars("x"),
		one(NewEndTagToken("h1")),
	)}

	// no EndOfFile token: exhaustion alone finishes the tree.
	w, err := NewTreeConstructor(Config{}).ConstructTree(src)
	require.NoError(t, err)
	assert.Equal(t, `#document
| <html>
|   <head>
|   <body>
|     id="b"
|     <h1>
|       "x"`, w.Document().String())
}

func TestConstructTreeIsReusable(t *testing.T) {
	c := NewTreeConstructor(Config{})
	w1, err := c.ConstructTree(NewTokenizer("<p>a<div>"))
	require.NoError(t, err)
	require.Len(t, c.Errors(), 1)

	w2, err := c.ConstructTree(NewTokenizer("<p>b"))
	require.NoError(t, err)
	assert.Empty(t, c.Errors())
	assert.NotEqual(t, w1.ID(), w2.ID())
	assert.Equal(t, "a", w1.Document().Root().FirstChild().LastChild().TextContent())
	assert.Equal(t, "b", w2.Document().Root().FirstChild().LastChild().TextContent())
}

func TestStackPrimitives(t *testing.T) {
	c := NewTreeConstructor(Config{})
	_, err := c.ConstructTree(&sliceSource{})
	require.NoError(t, err)

	c.insertElement(dom.ElementHTML, nil)
	c.insertElement(dom.ElementBody, nil)
	c.insertElement(dom.ElementP, nil)

	assert.True(t, c.containsKind(dom.ElementBody))
	assert.False(t, c.containsKind(dom.ElementHead))
	assert.False(t, c.popCurrentNodeIf(dom.ElementBody))
	assert.True(t, c.popCurrentNodeIf(dom.ElementP))
	assert.Panics(t, func() { c.popUntil(dom.ElementHead) })

	c.popUntil(dom.ElementHTML)
	assert.Empty(t, c.stackOfOpenElements)
	assert.Equal(t, dom.DocumentNode, c.currentNode().Type())
	assert.Panics(t, func() { c.popCurrentNode() })
}

func TestInsertCharacterAppendsAtTail(t *testing.T) {
	w, err := Parse("<p>a<script>s</script>b<script>t</script>c</p>")
	require.NoError(t, err)

	p := w.Document().Root().FirstChild().LastChild().FirstChild()
	require.True(t, p.IsElement(dom.ElementP))

	var kinds []string
	for c := range p.Children() {
		if c.Type() == dom.TextNode {
			kinds = append(kinds, c.Data())
		} else {
			kinds = append(kinds, c.Element().TagName())
		}
	}
	assert.Equal(t, []string{"a", "script", "b", "script", "c"}, kinds)
	assertWellFormed(t, w.Document())
}

// TestParseNeverLoops throws random soup at the parser. Every parse has to
// finish and produce a well formed tree.
func TestParseNeverLoops(t *testing.T) {
	pieces := []string{
		"<html>", "</html>", "<head>", "</head>", "<body>", "</body>",
		"<p>", "</p>", "<h1>", "</h1>", "<h2>", "</h2>",
		"<style>", "</style>", "<script>", "</script>", "<div>", "</div>",
		"<p class=x>", "x", "y ", " ", "\n", "<", "</", "'", "=", ">",
	}
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		var b strings.Builder
		for j := r.Intn(30); j > 0; j-- {
			b.WriteString(pieces[r.Intn(len(pieces))])
		}
		in := b.String()

		w, err := Parse(in)
		require.NoError(t, err, "input %q", in)
		assertWellFormed(t, w.Document())
		require.True(t, w.Document().Root().FirstChild().IsElement(dom.ElementHTML), "input %q", in)
	}
}
