package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWidth keeps glamour from wrapping help text into a single column.
const minMarkdownWidth = 32

// markdownRenderer renders help markdown and reuses the last output while width and source are unchanged.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	source   string
	output   string
}

// newMarkdownRenderer constructs a renderer for one glamour standard style.
func newMarkdownRenderer(style string) *markdownRenderer {
	style = strings.TrimSpace(style)
	if style == "" {
		style = "dark"
	}
	return &markdownRenderer{style: style}
}

// render returns ANSI-styled text, falling back to the raw source when glamour fails.
func (r *markdownRenderer) render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	width = max(width, minMarkdownWidth)
	if r.renderer != nil && r.width == width && r.source == source {
		return r.output
	}
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return source
		}
		r.renderer = renderer
		r.width = width
	}

	out, err := r.renderer.Render(source)
	if err != nil {
		return source
	}
	r.source = source
	r.output = strings.TrimRight(out, "\n")
	return r.output
}
