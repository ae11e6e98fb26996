// ABOUTME: PreviewModel is a bubbletea program that shows a rendered document in a scrollable viewport.
// ABOUTME: Handles window resizing, scrolling keys, and q/ctrl+c/esc to quit.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/pulse/richtext"
)

// PreviewModel displays rendered terminal text in a viewport.
type PreviewModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

// NewPreviewModel renders doc with TerminalStrategy and wraps it in a viewport.
func NewPreviewModel(title string, doc *richtext.Document) PreviewModel {
	return PreviewModel{
		title:    title,
		content:  RenderTerminal(doc),
		viewport: viewport.New(80, 20),
	}
}

// Content returns the rendered document text.
func (m PreviewModel) Content() string {
	return m.content
}

// Init implements tea.Model.
func (m PreviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m PreviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	header := TitleStyle.Render(m.title)
	footer := StatusBarStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll · q quit", m.viewport.ScrollPercent()*100))
	return header + "\n" + m.viewport.View() + "\n" + footer
}

// setSize fits the viewport between the one-line header and footer and
// re-wraps the content to the new width.
func (m *PreviewModel) setSize(w, h int) {
	m.width = w
	m.height = h
	vpHeight := h - 2
	if vpHeight < 1 {
		vpHeight = 1
	}
	if w < 1 {
		w = 1
	}
	m.viewport.Width = w
	m.viewport.Height = vpHeight
	m.viewport.SetContent(lipgloss.NewStyle().Width(w).Render(m.content))
	m.ready = true
}
