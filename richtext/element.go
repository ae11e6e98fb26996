// ABOUTME: Element mode: renders a document into golang.org/x/net/html element trees.
// ABOUTME: Every node variant is supported; serialization goes through html.Render so text is escaped.
package richtext

import (
	"bytes"
	"html/template"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// styleAtoms maps each text style to the element that carries it.
var styleAtoms = map[Style]atom.Atom{
	StyleBold:          atom.Strong,
	StyleItalic:        atom.Em,
	StyleStrikethrough: atom.S,
	StyleUnderline:     atom.U,
	StyleCode:          atom.Code,
	StyleSubscript:     atom.Sub,
	StyleSuperscript:   atom.Sup,
}

var headingAtoms = map[HeadingTag]atom.Atom{
	TagH1: atom.H1,
	TagH2: atom.H2,
	TagH3: atom.H3,
	TagH4: atom.H4,
	TagH5: atom.H5,
	TagH6: atom.H6,
}

// Fragment is a sequence of sibling element-tree nodes with no parent.
type Fragment []*html.Node

// Elements is the element-mode strategy. The zero value is ready to use.
type Elements struct{}

var _ Strategy[Fragment] = Elements{}

// RenderElements renders doc in element mode.
func RenderElements(doc *Document) Fragment {
	return Render[Fragment](doc, Elements{})
}

// RenderHTML renders doc in element mode and serializes the result.
func RenderHTML(doc *Document) template.HTML {
	return RenderElements(doc).HTML()
}

// HTML serializes the fragment. Text content is escaped by the serializer.
func (f Fragment) HTML() template.HTML {
	var buf bytes.Buffer
	for _, n := range f {
		// Rendering to a bytes.Buffer only fails for malformed trees, which
		// Elements never builds.
		_ = html.Render(&buf, n)
	}
	return template.HTML(buf.String())
}

func (Elements) Empty() Fragment { return nil }

func (Elements) Join(parts []Fragment) Fragment {
	var out Fragment
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (Elements) Text(text string, format Format) Fragment {
	inner := &html.Node{Type: html.TextNode, Data: text}
	return Fragment{ApplyStyles(format, inner, func(s Style, n *html.Node) *html.Node {
		return element(styleAtoms[s], nil, Fragment{n})
	})}
}

func (Elements) Linebreak() Fragment {
	return Fragment{element(atom.Br, nil, nil)}
}

func (Elements) Paragraph(children Fragment) Fragment {
	return Fragment{element(atom.P, nil, children)}
}

func (Elements) Heading(tag HeadingTag, children Fragment) Fragment {
	a, ok := headingAtoms[tag]
	if !ok {
		a = headingAtoms[DefaultHeadingTag]
	}
	return Fragment{element(a, nil, children)}
}

func (Elements) List(ordered bool, children Fragment) Fragment {
	if ordered {
		return Fragment{element(atom.Ol, nil, children)}
	}
	return Fragment{element(atom.Ul, nil, children)}
}

func (Elements) ListItem(children Fragment) Fragment {
	return Fragment{element(atom.Li, nil, children)}
}

func (Elements) Quote(children Fragment) Fragment {
	return Fragment{element(atom.Blockquote, nil, children)}
}

func (Elements) Link(target LinkTarget, children Fragment) Fragment {
	attrs := []html.Attribute{{Key: "href", Val: target.Href}}
	if target.NewTab {
		attrs = append(attrs,
			html.Attribute{Key: "target", Val: "_blank"},
			html.Attribute{Key: "rel", Val: "noopener noreferrer"},
		)
	}
	return Fragment{element(atom.A, attrs, children)}
}

func (Elements) HorizontalRule() Fragment {
	return Fragment{element(atom.Hr, nil, nil)}
}

func (Elements) Image(img Image) Fragment {
	return Fragment{element(atom.Img, []html.Attribute{
		{Key: "src", Val: img.URL},
		{Key: "alt", Val: img.Alt},
	}, nil)}
}

// element builds a detached element node and adopts children, which must
// themselves be detached.
func element(a atom.Atom, attrs []html.Attribute, children Fragment) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}
