// ABOUTME: Tests for lenient document decoding covering schema drift and malformed input.
// ABOUTME: Verifies variant selection, field fallbacks, and that decoding never fails.
package richtext

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDocumentVariants(t *testing.T) {
	raw := `{"root":{"children":[
		{"type":"heading","tag":"h3","children":[{"type":"text","text":"Classes","format":1}]},
		{"type":"paragraph","children":[
			{"type":"text","text":"Book "},
			{"type":"link","url":"/old","fields":{"url":"/book","newTab":true},"children":[{"type":"text","text":"here"}]},
			{"type":"linebreak"},
			{"type":"autolink","url":"https://pulse.example","children":[]}
		]},
		{"type":"list","listType":"bullet","children":[{"type":"listitem","children":[]}]},
		{"type":"quote","children":[]},
		{"type":"horizontalrule"},
		{"type":"upload","value":{"url":"/media/a.jpg","alt":"Studio"}},
		{"type":"carousel","children":[{"type":"text","text":"X"}]}
	]}}`

	doc := ParseDocumentString(raw)

	want := &Document{Children: []Node{
		&Heading{Tag: "h3", Children: []Node{&Text{Text: "Classes", Format: FormatBold}}},
		&Paragraph{Children: []Node{
			&Text{Text: "Book "},
			&Link{Kind: TypeLink, FieldsURL: "/book", URL: "/old", NewTab: true, Children: []Node{&Text{Text: "here"}}},
			&Linebreak{},
			&Link{Kind: TypeAutolink, URL: "https://pulse.example"},
		}},
		&List{ListType: "bullet", Children: []Node{&ListItem{}}},
		&Quote{},
		&HorizontalRule{},
		&Upload{URL: "/media/a.jpg", Alt: "Studio"},
		&Unknown{Kind: "carousel", Children: []Node{&Text{Text: "X"}}},
	}}

	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("parsed document mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentEmptyInputs(t *testing.T) {
	cases := map[string]string{
		"empty string":     "",
		"invalid json":     `{"root":`,
		"null":             "null",
		"no root":          `{"version":1}`,
		"root not object":  `{"root":"x"}`,
		"children missing": `{"root":{}}`,
		"children object":  `{"root":{"children":{"type":"text"}}}`,
		"children empty":   `{"root":{"children":[]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			doc := ParseDocumentString(raw)
			if !doc.Empty() {
				t.Errorf("expected empty document, got %d children", len(doc.Children))
			}
		})
	}
}

func TestParseDocumentToleratesWrongFieldTypes(t *testing.T) {
	raw := `{"root":{"children":[
		{"type":"text","text":42,"format":"bold"},
		{"type":"heading","tag":2},
		{"type":"link","fields":{"url":false,"newTab":"yes"}},
		{"type":"upload","value":"nope"},
		"stray string",
		{"children":[{"type":"text","text":"orphan"}]}
	]}}`

	doc := ParseDocumentString(raw)

	want := &Document{Children: []Node{
		&Text{},
		&Heading{},
		&Link{Kind: TypeLink},
		&Upload{},
		&Unknown{Children: []Node{&Text{Text: "orphan"}}},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("parsed document mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentUnmarshalJSON(t *testing.T) {
	var wrapper struct {
		Content Document `json:"content"`
	}
	raw := `{"content":{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Hi"}]}]}}}`
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wrapper.Content.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(wrapper.Content.Children))
	}
	if got := wrapper.Content.Children[0].Type(); got != TypeParagraph {
		t.Errorf("expected paragraph, got %q", got)
	}
}

func TestDocumentUnmarshalJSONNeverFails(t *testing.T) {
	var wrapper struct {
		Content Document `json:"content"`
	}
	if err := json.Unmarshal([]byte(`{"content":[1,2,3]}`), &wrapper); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wrapper.Content.Empty() {
		t.Error("expected empty document for non-object content")
	}
}

func TestNilDocumentIsEmpty(t *testing.T) {
	var doc *Document
	if !doc.Empty() {
		t.Error("expected nil document to be empty")
	}
}

func TestLinkHrefFallbacks(t *testing.T) {
	tests := []struct {
		name string
		link Link
		want string
	}{
		{"fields url wins", Link{FieldsURL: "/a", URL: "/b"}, "/a"},
		{"plain url", Link{URL: "/b"}, "/b"},
		{"placeholder", Link{}, "#"},
		{"external", Link{FieldsURL: "https://example.com/a?b=1"}, "https://example.com/a?b=1"},
		{"mail", Link{URL: "mailto:hello@example.com"}, "mailto:hello@example.com"},
		{"phone", Link{URL: "tel:+15550100"}, "tel:+15550100"},
		{"fragment", Link{URL: "#schedule"}, "#schedule"},
		{"trimmed", Link{URL: "  /classes "}, "/classes"},
		{"script scheme", Link{FieldsURL: "javascript:alert(1)"}, "#"},
		{"mixed case script", Link{URL: "JaVaScRiPt:alert(1)"}, "#"},
		{"padded script", Link{URL: " javascript:alert(1)"}, "#"},
		{"data scheme", Link{URL: "data:text/html,<b>x</b>"}, "#"},
		{"unsafe fields url does not fall back", Link{FieldsURL: "vbscript:x", URL: "/b"}, "#"},
		{"control characters", Link{URL: "java\tscript:alert(1)"}, "#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.Href(); got != tt.want {
				t.Errorf("Href() = %q, want %q", got, tt.want)
			}
		})
	}
}
