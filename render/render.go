// ABOUTME: Renders stored rich-text document JSON into html, snapshot, or plain-text output.
// ABOUTME: Provides Render for one-off mode dispatch and ParseMode for validating user-supplied modes.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389-research/pulse/richtext"
)

// Mode selects the output strategy.
type Mode string

const (
	// ModeHTML is element mode serialized to escaped HTML.
	ModeHTML Mode = "html"
	// ModeSnapshot is the reduced HTML-string mode stored with form submissions.
	ModeSnapshot Mode = "snapshot"
	// ModeText is plain text.
	ModeText Mode = "text"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeHTML, ModeSnapshot, ModeText}

// Options tunes rendering for a call site.
type Options struct {
	// FixedHeading forces every heading to one level in snapshot mode.
	FixedHeading richtext.HeadingTag
}

// ParseMode validates a mode name. The empty string selects ModeHTML.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeHTML, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported mode %q: supported modes are html, snapshot, text", s)
}

// Render produces output for a raw document in the requested mode. Malformed
// documents render to empty output; only an unsupported mode or a cancelled
// context returns an error.
func Render(ctx context.Context, raw []byte, mode Mode, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := richtext.ParseDocument(raw)

	switch mode {
	case ModeHTML:
		return []byte(richtext.RenderHTML(doc)), nil
	case ModeSnapshot:
		var snapOpts []richtext.SnapshotOption
		if opts.FixedHeading != "" {
			snapOpts = append(snapOpts, richtext.WithFixedHeading(opts.FixedHeading))
		}
		return []byte(richtext.RenderSnapshot(doc, snapOpts...)), nil
	case ModeText:
		return []byte(richtext.RenderPlainText(doc)), nil
	default:
		return nil, fmt.Errorf("unsupported mode %q: supported modes are html, snapshot, text", mode)
	}
}
