// ABOUTME: HTML-string mode used for stored form confirmations and injected detail panels.
// ABOUTME: Supports a reduced node subset and writes text unescaped so stored snapshots stay stable.
package richtext

import "strings"

// Snapshot is the HTML-string strategy. It understands bold and italic text,
// paragraphs, headings and lists. Line breaks, links, quotes, rules and uploads
// render to nothing, and other format bits are ignored.
//
// Text is written verbatim. Callers that inject the result into a page are
// responsible for sanitizing it.
type Snapshot struct {
	// FixedHeading, when set, replaces every heading's tag.
	FixedHeading HeadingTag
}

var _ Strategy[string] = Snapshot{}

// SnapshotOption configures a Snapshot.
type SnapshotOption func(*Snapshot)

// WithFixedHeading renders every heading with tag regardless of the document.
// An unrecognized tag falls back to DefaultHeadingTag.
func WithFixedHeading(tag HeadingTag) SnapshotOption {
	return func(s *Snapshot) {
		s.FixedHeading = ParseHeadingTag(string(tag))
	}
}

// RenderSnapshot renders doc in HTML-string mode.
func RenderSnapshot(doc *Document, opts ...SnapshotOption) string {
	var s Snapshot
	for _, opt := range opts {
		opt(&s)
	}
	return Render[string](doc, s)
}

func (Snapshot) Empty() string { return "" }

func (Snapshot) Join(parts []string) string { return strings.Join(parts, "") }

func (Snapshot) Text(text string, format Format) string {
	if format.Has(FormatBold) {
		text = "<strong>" + text + "</strong>"
	}
	if format.Has(FormatItalic) {
		text = "<em>" + text + "</em>"
	}
	return text
}

func (Snapshot) Paragraph(children string) string {
	return "<p>" + children + "</p>"
}

func (s Snapshot) Heading(tag HeadingTag, children string) string {
	if s.FixedHeading != "" {
		tag = s.FixedHeading
	}
	return "<" + string(tag) + ">" + children + "</" + string(tag) + ">"
}

func (Snapshot) List(ordered bool, children string) string {
	if ordered {
		return "<ol>" + children + "</ol>"
	}
	return "<ul>" + children + "</ul>"
}

func (Snapshot) ListItem(children string) string {
	return "<li>" + children + "</li>"
}

func (Snapshot) Linebreak() string              { return "" }
func (Snapshot) Quote(string) string            { return "" }
func (Snapshot) Link(LinkTarget, string) string { return "" }
func (Snapshot) HorizontalRule() string         { return "" }
func (Snapshot) Image(Image) string             { return "" }
