// ABOUTME: Defines lipgloss styles for terminal rich-text rendering and the preview chrome.
// ABOUTME: Provides StyleForFormat and StyleForHeading to map document styles to display styles.
package tui

import (
	"github.com/2389-research/pulse/richtext"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Preview chrome
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	// Text formats
	BoldStyle          = lipgloss.NewStyle().Bold(true)
	ItalicStyle        = lipgloss.NewStyle().Italic(true)
	StrikethroughStyle = lipgloss.NewStyle().Strikethrough(true)
	UnderlineStyle     = lipgloss.NewStyle().Underline(true)
	CodeStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Blocks
	H1Style           = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("170"))
	H2Style           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	H3Style           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	MinorHeadingStyle = lipgloss.NewStyle().Bold(true)
	QuoteBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	LinkStyle         = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("75"))
	URLStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	RuleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StyleForFormat returns the style for a single text format. Subscript and
// superscript have no terminal style and are marked with a prefix instead.
func StyleForFormat(s richtext.Style) (lipgloss.Style, bool) {
	switch s {
	case richtext.StyleBold:
		return BoldStyle, true
	case richtext.StyleItalic:
		return ItalicStyle, true
	case richtext.StyleStrikethrough:
		return StrikethroughStyle, true
	case richtext.StyleUnderline:
		return UnderlineStyle, true
	case richtext.StyleCode:
		return CodeStyle, true
	default:
		return lipgloss.Style{}, false
	}
}

// StyleForHeading returns the display style for a heading level.
func StyleForHeading(tag richtext.HeadingTag) lipgloss.Style {
	switch tag {
	case richtext.TagH1:
		return H1Style
	case richtext.TagH2:
		return H2Style
	case richtext.TagH3:
		return H3Style
	default:
		return MinorHeadingStyle
	}
}
