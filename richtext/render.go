// ABOUTME: The single tree walk shared by every output mode, parameterized by a Strategy.
// ABOUTME: Normalizes missing fields (heading tag, link href, upload URL) before the strategy sees them.
package richtext

// HeadingTag is one of h1..h6.
type HeadingTag string

const (
	TagH1 HeadingTag = "h1"
	TagH2 HeadingTag = "h2"
	TagH3 HeadingTag = "h3"
	TagH4 HeadingTag = "h4"
	TagH5 HeadingTag = "h5"
	TagH6 HeadingTag = "h6"
)

// DefaultHeadingTag is used when a heading has no recognizable tag.
const DefaultHeadingTag = TagH2

// ParseHeadingTag returns the tag for s, or DefaultHeadingTag when s is not h1..h6.
func ParseHeadingTag(s string) HeadingTag {
	switch t := HeadingTag(s); t {
	case TagH1, TagH2, TagH3, TagH4, TagH5, TagH6:
		return t
	default:
		return DefaultHeadingTag
	}
}

// LinkTarget is a resolved link.
type LinkTarget struct {
	Href   string
	NewTab bool
}

// Image is a resolved upload with a non-empty, safe URL.
type Image struct {
	URL string
	Alt string
}

// Strategy builds output of type T for each node variant. Container methods
// receive their children already rendered and joined. The walk never calls a
// strategy for an upload without a safe URL, and link hrefs are already
// checked with SafeURL.
type Strategy[T any] interface {
	Empty() T
	Join(parts []T) T
	Text(text string, format Format) T
	Linebreak() T
	Paragraph(children T) T
	Heading(tag HeadingTag, children T) T
	List(ordered bool, children T) T
	ListItem(children T) T
	Quote(children T) T
	Link(target LinkTarget, children T) T
	HorizontalRule() T
	Image(img Image) T
}

// Render walks doc in document order and builds the output with s.
func Render[T any](doc *Document, s Strategy[T]) T {
	if doc.Empty() {
		return s.Empty()
	}
	return renderNodes(doc.Children, s)
}

// RenderNode renders a single node and its subtree.
func RenderNode[T any](n Node, s Strategy[T]) T {
	if n == nil {
		return s.Empty()
	}
	return renderNode(n, s)
}

func renderNodes[T any](nodes []Node, s Strategy[T]) T {
	if len(nodes) == 0 {
		return s.Empty()
	}
	parts := make([]T, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		parts = append(parts, renderNode(n, s))
	}
	return s.Join(parts)
}

func renderNode[T any](n Node, s Strategy[T]) T {
	switch n := n.(type) {
	case *Text:
		return s.Text(n.Text, n.Format)
	case *Linebreak:
		return s.Linebreak()
	case *Paragraph:
		return s.Paragraph(renderNodes(n.Children, s))
	case *Heading:
		return s.Heading(ParseHeadingTag(n.Tag), renderNodes(n.Children, s))
	case *List:
		return s.List(n.ListType == "number", renderNodes(n.Children, s))
	case *ListItem:
		return s.ListItem(renderNodes(n.Children, s))
	case *Quote:
		return s.Quote(renderNodes(n.Children, s))
	case *Link:
		return s.Link(LinkTarget{Href: n.Href(), NewTab: n.NewTab}, renderNodes(n.Children, s))
	case *HorizontalRule:
		return s.HorizontalRule()
	case *Upload:
		src, ok := SafeURL(n.URL)
		if !ok {
			return s.Empty()
		}
		return s.Image(Image{URL: src, Alt: n.Alt})
	case *Unknown:
		return renderNodes(n.Children, s)
	default:
		return s.Empty()
	}
}
