package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders markdown for terminal output and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	style    string
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := width
	if wrapWidth < 24 {
		wrapWidth = 24
	}
	style := r.style
	if style == "" {
		style = "dark"
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderMarkdown renders markdown with a named glamour style ("dark", "light", "notty", ...).
func RenderMarkdown(markdown, style string, width int) string {
	r := markdownRenderer{style: style}
	return r.render(markdown, width)
}

// KeysMarkdown documents the effective key bindings as a markdown table.
func KeysMarkdown(cfg KeyConfig) string {
	keys := newKeyMap()
	keys.applyKeyConfig(cfg)

	var b strings.Builder
	b.WriteString("# Keys\n\n")
	b.WriteString("| key | action |\n")
	b.WriteString("| --- | --- |\n")
	for _, binding := range keys.bindingRows() {
		help := binding.Help()
		fmt.Fprintf(&b, "| `%s` | %s |\n", help.Key, help.Desc)
	}
	b.WriteString("\n## Mouse\n\n")
	b.WriteString("- press a row, move over another row, release: move the task there\n")
	b.WriteString("- click `[ ]`: toggle done\n")
	b.WriteString("- click `✕`: delete task\n")
	b.WriteString("- wheel: move the cursor\n")
	return b.String()
}
