package markdown

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var md = goldmark.New( //nolint: gochecknoglobals
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Render converts a markdown body to HTML. Raw HTML in the body is omitted.
func Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("could not render markdown: %w", err)
	}

	return buf.String(), nil
}

// Preview renders a markdown body for a terminal of the given width.
func Preview(body string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("could not create terminal renderer: %w", err)
	}

	out, err := r.Render(body)
	if err != nil {
		return "", fmt.Errorf("could not render preview: %w", err)
	}

	return out, nil
}
