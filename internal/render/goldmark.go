package render

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// Goldmark renders CommonMark plus GFM tables and strikethrough. Raw HTML is
// passed through untouched; the Sanitizer is expected to run afterwards.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds the engine once; goldmark.Markdown is safe for reuse.
func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
		),
	}
}

// Render implements Renderer.
func (g *Goldmark) Render(markdown string) string {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(stripFrontMatter(markdown)), &buf); err != nil {
		return "<pre>" + html.EscapeString(markdown) + "</pre>"
	}
	return buf.String()
}
