// ABOUTME: Text format bitmask and the fixed order in which styles wrap a text run.
// ABOUTME: Styles are applied innermost-first in StyleOrder so nesting depends only on the bitmask.
package richtext

// Format is the editor's text style bitmask.
type Format int64

// Style bits as written by the editor.
const (
	FormatBold          Format = 1 << 0
	FormatItalic        Format = 1 << 1
	FormatStrikethrough Format = 1 << 2
	FormatUnderline     Format = 1 << 3
	FormatCode          Format = 1 << 4
	FormatSubscript     Format = 1 << 5
	FormatSuperscript   Format = 1 << 6
)

// FormatMask covers every bit the renderer understands.
const FormatMask = FormatBold | FormatItalic | FormatStrikethrough | FormatUnderline |
	FormatCode | FormatSubscript | FormatSuperscript

// Style names one text style.
type Style string

const (
	StyleBold          Style = "bold"
	StyleItalic        Style = "italic"
	StyleStrikethrough Style = "strikethrough"
	StyleUnderline     Style = "underline"
	StyleCode          Style = "code"
	StyleSubscript     Style = "subscript"
	StyleSuperscript   Style = "superscript"
)

// StyleBit pairs a bitmask flag with its style.
type StyleBit struct {
	Bit   Format
	Style Style
}

// StyleOrder is the wrapping order. The first entry wraps the raw text, each
// later entry wraps the result of the previous one.
var StyleOrder = []StyleBit{
	{FormatBold, StyleBold},
	{FormatItalic, StyleItalic},
	{FormatStrikethrough, StyleStrikethrough},
	{FormatUnderline, StyleUnderline},
	{FormatCode, StyleCode},
	{FormatSubscript, StyleSubscript},
	{FormatSuperscript, StyleSuperscript},
}

// Has reports whether every bit of flag is set.
func (f Format) Has(flag Format) bool {
	return f&flag == flag
}

// Styles returns the styles set in f, innermost first.
func (f Format) Styles() []Style {
	var styles []Style
	for _, sb := range StyleOrder {
		if f.Has(sb.Bit) {
			styles = append(styles, sb.Style)
		}
	}
	return styles
}

// ApplyStyles wraps inner with wrap once per style set in f, in StyleOrder.
func ApplyStyles[T any](f Format, inner T, wrap func(Style, T) T) T {
	out := inner
	for _, sb := range StyleOrder {
		if f.Has(sb.Bit) {
			out = wrap(sb.Style, out)
		}
	}
	return out
}
