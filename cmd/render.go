package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/heathj/minibrowser/parser"
	"github.com/heathj/minibrowser/parser/dom"
)

// Colors
var (
	colorTag    = lipgloss.Color("#7C3AED")
	colorAttr   = lipgloss.Color("#F59E0B")
	colorText   = lipgloss.Color("#10B981")
	colorMuted  = lipgloss.Color("#6B7280")
	colorMarker = lipgloss.Color("#EF4444")
)

// Styles
var (
	tagStyle    = lipgloss.NewStyle().Foreground(colorTag).Bold(true)
	attrStyle   = lipgloss.NewStyle().Foreground(colorAttr)
	textStyle   = lipgloss.NewStyle().Foreground(colorText)
	guideStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	markerStyle = lipgloss.NewStyle().Foreground(colorMarker).Italic(true)
)

type renderer struct {
	color bool
}

func newRenderer(color bool) renderer {
	return renderer{color: color}
}

func (r renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// tree styles the tree dump line by line. Each line is a guide ("| " plus
// indentation) followed by a tag, an attribute or a quoted text node.
func (r renderer) tree(d *dom.Document) string {
	dump := d.String()
	if !r.color {
		return dump
	}

	lines := strings.Split(dump, "\n")
	for i, line := range lines {
		body := strings.TrimLeft(strings.TrimPrefix(line, "| "), " ")
		if body == line {
			lines[i] = r.style(markerStyle, line)
			continue
		}
		guide := line[:len(line)-len(body)]

		var st lipgloss.Style
		switch {
		case strings.HasPrefix(body, "<"):
			st = tagStyle
		case strings.HasPrefix(body, "\""):
			st = textStyle
		default:
			st = attrStyle
		}
		lines[i] = r.style(guideStyle, guide) + r.style(st, body)
	}
	return strings.Join(lines, "\n")
}

func (r renderer) token(t *parser.Token) string {
	switch t.Type {
	case parser.StartTagToken, parser.EndTagToken:
		return r.style(tagStyle, t.String())
	case parser.CharacterToken:
		return r.style(textStyle, t.String())
	default:
		return r.style(markerStyle, t.String())
	}
}
