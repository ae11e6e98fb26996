// ABOUTME: Tests for the bubbletea preview model: sizing, quitting, and scrolling.
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/pulse/richtext"
)

func longDoc(lines int) *richtext.Document {
	d := &richtext.Document{}
	for i := 0; i < lines; i++ {
		d.Children = append(d.Children, &richtext.Paragraph{Children: []richtext.Node{&richtext.Text{Text: "line"}}})
	}
	return d
}

func TestPreviewModelInitializing(t *testing.T) {
	m := NewPreviewModel("doc.json", longDoc(1))
	if got := m.View(); got != "Initializing..." {
		t.Errorf("expected initializing view, got %q", got)
	}
	if m.Init() != nil {
		t.Error("expected no initial command")
	}
}

func TestPreviewModelWindowSize(t *testing.T) {
	m := NewPreviewModel("doc.json", longDoc(3))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
	pm := updated.(PreviewModel)

	if !pm.ready {
		t.Fatal("expected model to be ready after resize")
	}
	if pm.viewport.Width != 60 || pm.viewport.Height != 10 {
		t.Errorf("viewport = %dx%d, want 60x10", pm.viewport.Width, pm.viewport.Height)
	}
	view := pm.View()
	if !strings.Contains(view, "doc.json") || !strings.Contains(view, "line") {
		t.Errorf("expected title and content in view, got %q", view)
	}
}

func TestPreviewModelQuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}
	for _, k := range keys {
		m := NewPreviewModel("doc", longDoc(1))
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg for %q", k.String())
		}
	}
}

func TestPreviewModelScrolls(t *testing.T) {
	m := NewPreviewModel("doc", longDoc(40))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 7})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyDown})
	pm := updated.(PreviewModel)
	if pm.viewport.YOffset != 1 {
		t.Errorf("expected to scroll one line, YOffset = %d", pm.viewport.YOffset)
	}
}

func TestPreviewModelContent(t *testing.T) {
	m := NewPreviewModel("doc", longDoc(2))
	if got := m.Content(); got != "line\n\nline" {
		t.Errorf("unexpected content %q", got)
	}
}
