// ABOUTME: Tests for the plain-text strategy and excerpt helper.
package richtext

import "testing"

func TestRenderPlainText(t *testing.T) {
	raw := `{"root":{"children":[
		{"type":"heading","tag":"h1","children":[{"type":"text","text":"Welcome","format":1}]},
		{"type":"paragraph","children":[
			{"type":"text","text":"Join us"},
			{"type":"linebreak"},
			{"type":"link","url":"/book","children":[{"type":"text","text":"today"}]}
		]},
		{"type":"list","listType":"number","children":[
			{"type":"listitem","children":[{"type":"text","text":"Stretch"}]},
			{"type":"listitem","children":[{"type":"text","text":"Sweat"}]}
		]},
		{"type":"quote","children":[{"type":"text","text":"Breathe"}]},
		{"type":"upload","value":{"url":"/a.jpg","alt":"Studio floor"}}
	]}}`

	want := "Welcome\n\nJoin us\ntoday (/book)\n\n1. Stretch\n2. Sweat\n\n> Breathe\n\nStudio floor"
	if got := RenderPlainText(ParseDocumentString(raw)); got != want {
		t.Errorf("plain text mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderPlainTextBulletList(t *testing.T) {
	raw := `{"root":{"children":[{"type":"list","children":[
		{"type":"listitem","children":[{"type":"text","text":"a"}]},
		{"type":"listitem","children":[{"type":"text","text":"b"}]}
	]}]}}`
	if got, want := RenderPlainText(ParseDocumentString(raw)), "- a\n- b"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderPlainTextStrayListItem(t *testing.T) {
	raw := `{"root":{"children":[{"type":"listitem","children":[{"type":"text","text":"a"}]},{"type":"text","text":"b"}]}}`
	if got, want := RenderPlainText(ParseDocumentString(raw)), "a\nb"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderPlainTextIgnoresNUL(t *testing.T) {
	raw := `{"root":{"children":[
		{"type":"list","children":[{"type":"listitem","children":[{"type":"text","text":"a\u0000b"}]}]},
		{"type":"paragraph","children":[{"type":"text","text":"c\u0000d"}]}
	]}}`
	if got, want := RenderPlainText(ParseDocumentString(raw)), "- ab\n\ncd"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExcerpt(t *testing.T) {
	raw := `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Strength classes for every body, seven days a week."}]}]}}`
	doc := ParseDocumentString(raw)

	if got := Excerpt(doc, 0); got != "Strength classes for every body, seven days a week." {
		t.Errorf("unexpected full excerpt %q", got)
	}
	if got, want := Excerpt(doc, 20), "Strength classes for…"; got != want {
		t.Errorf("Excerpt(20) = %q, want %q", got, want)
	}
	if got, want := Excerpt(doc, 35), "Strength classes for every body…"; got != want {
		t.Errorf("Excerpt(35) = %q, want %q", got, want)
	}
	if got := Excerpt(nil, 10); got != "" {
		t.Errorf("expected empty excerpt for nil document, got %q", got)
	}
}
