// ABOUTME: TerminalStrategy renders rich-text documents as styled terminal text with lipgloss.
// ABOUTME: Block layout mirrors the plain-text renderer; inline formats map to terminal attributes.
package tui

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/2389-research/pulse/richtext"
)

// ruleWidth is the width of a horizontal rule.
const ruleWidth = 40

// itemEnd terminates each list item so List can split its joined children.
const itemEnd = "\x00"

var blankRuns = regexp.MustCompile(`\n{3,}`)

// TerminalStrategy renders documents for a terminal.
type TerminalStrategy struct{}

var _ richtext.Strategy[string] = TerminalStrategy{}

// RenderTerminal renders doc for display in a terminal.
func RenderTerminal(doc *richtext.Document) string {
	out := richtext.Render[string](doc, TerminalStrategy{})
	out = strings.ReplaceAll(out, itemEnd, "\n")
	return strings.TrimSpace(blankRuns.ReplaceAllString(out, "\n\n"))
}

func (TerminalStrategy) Empty() string              { return "" }
func (TerminalStrategy) Join(parts []string) string { return strings.Join(parts, "") }

// Text drops NUL characters so input cannot forge the itemEnd marker.
func (TerminalStrategy) Text(text string, format richtext.Format) string {
	text = strings.ReplaceAll(text, itemEnd, "")
	return richtext.ApplyStyles(format, text, func(s richtext.Style, inner string) string {
		switch s {
		case richtext.StyleSubscript:
			return "_" + inner
		case richtext.StyleSuperscript:
			return "^" + inner
		}
		if style, ok := StyleForFormat(s); ok {
			return style.Render(inner)
		}
		return inner
	})
}

func (TerminalStrategy) Linebreak() string { return "\n" }

func (TerminalStrategy) Paragraph(children string) string {
	return children + "\n\n"
}

func (TerminalStrategy) Heading(tag richtext.HeadingTag, children string) string {
	return StyleForHeading(tag).Render(children) + "\n\n"
}

func (TerminalStrategy) List(ordered bool, children string) string {
	if children == "" {
		return ""
	}
	items := strings.Split(strings.TrimSuffix(children, itemEnd), itemEnd)
	var b strings.Builder
	for i, item := range items {
		if ordered {
			b.WriteString(strconv.Itoa(i+1) + ". ")
		} else {
			b.WriteString("• ")
		}
		b.WriteString(strings.TrimSpace(item))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (TerminalStrategy) ListItem(children string) string {
	return children + itemEnd
}

func (TerminalStrategy) Quote(children string) string {
	bar := QuoteBarStyle.Render("│ ")
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(children), "\n") {
		b.WriteString(bar + line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (TerminalStrategy) Link(target richtext.LinkTarget, children string) string {
	if target.Href == "#" {
		return LinkStyle.Render(children)
	}
	return LinkStyle.Render(children) + " " + URLStyle.Render("("+target.Href+")")
}

func (TerminalStrategy) HorizontalRule() string {
	return RuleStyle.Render(strings.Repeat("─", ruleWidth)) + "\n\n"
}

func (TerminalStrategy) Image(img richtext.Image) string {
	return "[image: " + img.Alt + "](" + img.URL + ")"
}
