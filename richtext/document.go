// ABOUTME: Rich-text document model: a closed set of node variants discriminated by "type".
// ABOUTME: Decodes editor JSON with gjson so schema drift degrades to absent fields instead of errors.
package richtext

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Node types emitted by the rich-text editor.
const (
	TypeText           = "text"
	TypeLinebreak      = "linebreak"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeList           = "list"
	TypeListItem       = "listitem"
	TypeQuote          = "quote"
	TypeLink           = "link"
	TypeAutolink       = "autolink"
	TypeHorizontalRule = "horizontalrule"
	TypeUpload         = "upload"
)

// Document is the root rich-text value. A nil Document, or one whose root has no
// children, renders to empty output.
type Document struct {
	Children []Node
}

// Empty reports whether the document has nothing to render.
func (d *Document) Empty() bool {
	return d == nil || len(d.Children) == 0
}

// UnmarshalJSON decodes a document leniently. It never fails: input that does
// not look like a document yields an empty one.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = *ParseDocument(data)
	return nil
}

// Node is one entry in the document tree. The set of implementations is closed;
// anything the editor emits that is not recognized becomes an *Unknown.
type Node interface {
	Type() string
	node()
}

// Text is a leaf carrying a run of characters and its style bitmask.
type Text struct {
	Text   string
	Format Format
}

// Linebreak is a hard line break inside a block.
type Linebreak struct{}

// Paragraph is a block of inline content.
type Paragraph struct {
	Children []Node
}

// Heading is a titled block. Tag holds the raw editor value; see HeadingTag.
type Heading struct {
	Tag      string
	Children []Node
}

// List holds list items. ListType "number" means ordered.
type List struct {
	ListType string
	Children []Node
}

// ListItem is one entry of a List.
type ListItem struct {
	Children []Node
}

// Quote is a block quotation.
type Quote struct {
	Children []Node
}

// Link is an inline hyperlink. Kind is either TypeLink or TypeAutolink.
// FieldsURL comes from the editor's link drawer and wins over URL.
type Link struct {
	Kind      string
	FieldsURL string
	URL       string
	NewTab    bool
	Children  []Node
}

// HorizontalRule is a thematic divider.
type HorizontalRule struct{}

// Upload references an uploaded media item.
type Upload struct {
	URL string
	Alt string
}

// Unknown is any node type the renderer does not recognize. Its children are
// still rendered.
type Unknown struct {
	Kind     string
	Children []Node
}

func (*Text) node()           {}
func (*Linebreak) node()      {}
func (*Paragraph) node()      {}
func (*Heading) node()        {}
func (*List) node()           {}
func (*ListItem) node()       {}
func (*Quote) node()          {}
func (*Link) node()           {}
func (*HorizontalRule) node() {}
func (*Upload) node()         {}
func (*Unknown) node()        {}

func (*Text) Type() string           { return TypeText }
func (*Linebreak) Type() string      { return TypeLinebreak }
func (*Paragraph) Type() string      { return TypeParagraph }
func (*Heading) Type() string        { return TypeHeading }
func (*List) Type() string           { return TypeList }
func (*ListItem) Type() string       { return TypeListItem }
func (*Quote) Type() string          { return TypeQuote }
func (l *Link) Type() string         { return l.Kind }
func (*HorizontalRule) Type() string { return TypeHorizontalRule }
func (*Upload) Type() string         { return TypeUpload }
func (u *Unknown) Type() string      { return u.Kind }

// Href resolves the link target: fields.url, then url, then "#". A target
// that SafeURL rejects also becomes "#".
func (l *Link) Href() string {
	for _, u := range []string{l.FieldsURL, l.URL} {
		if u == "" {
			continue
		}
		if safe, ok := SafeURL(u); ok {
			return safe
		}
		return "#"
	}
	return "#"
}

// safeSchemes are the schemes links and images may use. Relative URLs have no
// scheme and are always allowed.
var safeSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// SafeURL returns u without surrounding whitespace when it is relative or uses
// an allowed scheme. Empty and unparseable URLs are rejected.
func SafeURL(u string) (string, bool) {
	u = strings.TrimSpace(u)
	if u == "" {
		return "", false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "" && !safeSchemes[strings.ToLower(parsed.Scheme)] {
		return "", false
	}
	return u, true
}

// ParseDocument decodes editor JSON into a Document. Invalid JSON or a missing
// root.children array produces an empty document.
func ParseDocument(data []byte) *Document {
	if !gjson.ValidBytes(data) {
		return &Document{}
	}
	return documentFromResult(gjson.ParseBytes(data))
}

// ParseDocumentString is ParseDocument for string input.
func ParseDocumentString(s string) *Document {
	if !gjson.Valid(s) {
		return &Document{}
	}
	return documentFromResult(gjson.Parse(s))
}

func documentFromResult(r gjson.Result) *Document {
	return &Document{Children: parseChildren(r.Get("root.children"))}
}

func parseChildren(r gjson.Result) []Node {
	if !r.IsArray() {
		return nil
	}
	var nodes []Node
	r.ForEach(func(_, child gjson.Result) bool {
		if child.IsObject() {
			nodes = append(nodes, parseNode(child))
		}
		return true
	})
	return nodes
}

func parseNode(r gjson.Result) Node {
	kind := stringField(r, "type")
	children := parseChildren(r.Get("children"))

	switch kind {
	case TypeText:
		return &Text{Text: stringField(r, "text"), Format: Format(intField(r, "format"))}
	case TypeLinebreak:
		return &Linebreak{}
	case TypeParagraph:
		return &Paragraph{Children: children}
	case TypeHeading:
		return &Heading{Tag: stringField(r, "tag"), Children: children}
	case TypeList:
		return &List{ListType: stringField(r, "listType"), Children: children}
	case TypeListItem:
		return &ListItem{Children: children}
	case TypeQuote:
		return &Quote{Children: children}
	case TypeLink, TypeAutolink:
		return &Link{
			Kind:      kind,
			FieldsURL: stringField(r, "fields.url"),
			URL:       stringField(r, "url"),
			NewTab:    r.Get("fields.newTab").Type == gjson.True,
			Children:  children,
		}
	case TypeHorizontalRule:
		return &HorizontalRule{}
	case TypeUpload:
		return &Upload{URL: stringField(r, "value.url"), Alt: stringField(r, "value.alt")}
	default:
		return &Unknown{Kind: kind, Children: children}
	}
}

// stringField returns the value at path only when it is a JSON string.
func stringField(r gjson.Result, path string) string {
	v := r.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// intField returns the value at path only when it is a JSON number.
func intField(r gjson.Result, path string) int64 {
	v := r.Get(path)
	if v.Type != gjson.Number {
		return 0
	}
	return v.Int()
}
