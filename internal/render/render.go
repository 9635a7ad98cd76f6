// Package render converts the constrained Markdown dialect used by the
// training content into HTML and filters HTML through an allow-list.
package render

import (
	"fmt"
	"strings"

	"github.com/starford/hangar/internal/apperr"
)

// Engine names accepted by New.
const (
	EngineBasic    = "basic"
	EngineGoldmark = "goldmark"
)

// Renderer turns Markdown into an HTML fragment.
type Renderer interface {
	Render(markdown string) string
}

// New returns the renderer registered under engine.
func New(engine string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineBasic:
		return NewBasic(), nil
	case EngineGoldmark:
		return NewGoldmark(), nil
	default:
		return nil, fmt.Errorf("render: unknown engine %q: %w", engine, apperr.ErrInvalidInput)
	}
}

// Pipeline renders Markdown and sanitizes the result. Every path that puts
// Markdown-derived HTML in front of a client goes through a Pipeline.
type Pipeline struct {
	renderer  Renderer
	sanitizer *Sanitizer
}

// NewPipeline wires a renderer to a sanitizer.
func NewPipeline(r Renderer, s *Sanitizer) *Pipeline {
	return &Pipeline{renderer: r, sanitizer: s}
}

// Render implements Renderer.
func (p *Pipeline) Render(markdown string) string {
	return p.sanitizer.Sanitize(p.renderer.Render(markdown))
}

// stripFrontMatter drops a leading "---" fenced block. An unterminated
// fence leaves the input untouched.
func stripFrontMatter(src string) string {
	s := strings.TrimLeft(src, "\r\n")
	if !strings.HasPrefix(s, "---") {
		return src
	}
	rest := s[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return src
	}
	rest = rest[end+len("\n---"):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		return rest[nl+1:]
	}
	return ""
}
