// ABOUTME: Plain-text strategy for email alternative bodies and page meta descriptions.
// ABOUTME: Blocks end with a newline, list items get bullets or numbers, styles are dropped.
package richtext

import (
	"regexp"
	"strconv"
	"strings"
)

// PlainText renders a document as unformatted text.
type PlainText struct{}

var _ Strategy[string] = PlainText{}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// RenderPlainText renders doc as plain text with surrounding whitespace trimmed.
func RenderPlainText(doc *Document) string {
	out := Render[string](doc, PlainText{})
	out = strings.ReplaceAll(out, itemEnd, "\n")
	return strings.TrimSpace(blankRuns.ReplaceAllString(out, "\n\n"))
}

// Excerpt returns at most limit runes of the document's plain text on a single
// line, cut at a word boundary and suffixed with an ellipsis when shortened.
func Excerpt(doc *Document, limit int) string {
	text := strings.Join(strings.Fields(RenderPlainText(doc)), " ")
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	cut := string(r[:limit])
	if r[limit] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func (PlainText) Empty() string              { return "" }
func (PlainText) Join(parts []string) string { return strings.Join(parts, "") }
// Text drops NUL characters, which would otherwise collide with itemEnd.
func (PlainText) Text(text string, _ Format) string {
	return strings.ReplaceAll(text, itemEnd, "")
}
func (PlainText) Linebreak() string { return "\n" }

func (PlainText) Paragraph(children string) string {
	return children + "\n\n"
}

func (PlainText) Heading(_ HeadingTag, children string) string {
	return children + "\n\n"
}

// List numbers the items of ordered lists. Items arrive joined, so each item is
// terminated with a marker that List splits on.
func (PlainText) List(ordered bool, children string) string {
	if children == "" {
		return ""
	}
	items := strings.Split(strings.TrimSuffix(children, itemEnd), itemEnd)
	var b strings.Builder
	for i, item := range items {
		if ordered {
			b.WriteString(strconv.Itoa(i+1) + ". ")
		} else {
			b.WriteString("- ")
		}
		b.WriteString(strings.TrimSpace(item))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

const itemEnd = "\x00"

func (PlainText) ListItem(children string) string {
	return children + itemEnd
}

func (PlainText) Quote(children string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(children), "\n") {
		b.WriteString("> " + line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (PlainText) Link(target LinkTarget, children string) string {
	if target.Href == "#" || target.Href == children {
		return children
	}
	return children + " (" + target.Href + ")"
}

func (PlainText) HorizontalRule() string { return "---\n\n" }

func (PlainText) Image(img Image) string {
	if img.Alt != "" {
		return img.Alt
	}
	return ""
}
