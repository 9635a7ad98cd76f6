package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	headerRe      = regexp.MustCompile(`^(#{1,3})\s+(.*?)\s*#*\s*$`)
	listItemRe    = regexp.MustCompile(`^\s*[*-]\s+(.*)$`)
	quoteRe       = regexp.MustCompile(`^\s*>\s?(.*)$`)
	fenceRe       = regexp.MustCompile("^\\s*```")
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*\s][^*]*?)\*`)
	placeholderRe = regexp.MustCompile("\x00(\\d+)\x00")
)

// Basic is the line-oriented regex converter for the content dialect:
// headers up to level 3, bold, italic, fenced and inline code, flat
// unordered lists, blockquotes and paragraphs. Nested or mixed constructs
// (a list inside a blockquote, for instance) are not supported.
type Basic struct{}

// NewBasic returns the regex renderer.
func NewBasic() *Basic { return &Basic{} }

type blockKind int

const (
	blockNone blockKind = iota
	blockParagraph
	blockList
	blockQuote
)

// Render implements Renderer.
func (b *Basic) Render(markdown string) string {
	src := strings.ReplaceAll(stripFrontMatter(markdown), "\r\n", "\n")
	lines := strings.Split(src, "\n")

	var (
		out     []string
		pending []string
		kind    blockKind
		inFence bool
		code    []string
	)

	flush := func() {
		switch kind {
		case blockParagraph:
			out = append(out, "<p>"+inline(strings.Join(pending, "\n"))+"</p>")
		case blockList:
			items := make([]string, len(pending))
			for i, p := range pending {
				items[i] = "<li>" + inline(p) + "</li>"
			}
			out = append(out, "<ul>"+strings.Join(items, "")+"</ul>")
		case blockQuote:
			out = append(out, "<blockquote>"+inline(strings.Join(pending, "\n"))+"</blockquote>")
		}
		pending = pending[:0]
		kind = blockNone
	}
	push := func(k blockKind, text string) {
		if kind != k {
			flush()
			kind = k
		}
		pending = append(pending, text)
	}

	for _, line := range lines {
		if fenceRe.MatchString(line) {
			if inFence {
				out = append(out, "<pre><code>"+html.EscapeString(strings.Join(code, "\n"))+"</code></pre>")
				code = code[:0]
				inFence = false
			} else {
				flush()
				inFence = true
			}
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			level := len(m[1])
			out = append(out, fmt.Sprintf("<h%d>%s</h%d>", level, inline(m[2]), level))
			continue
		}
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			push(blockList, m[1])
			continue
		}
		if m := quoteRe.FindStringSubmatch(line); m != nil {
			push(blockQuote, m[1])
			continue
		}
		push(blockParagraph, strings.TrimSpace(line))
	}

	// An unterminated fence still renders its content as code.
	if inFence {
		out = append(out, "<pre><code>"+html.EscapeString(strings.Join(code, "\n"))+"</code></pre>")
	}
	flush()

	return strings.Join(out, "\n")
}

// inline applies code spans first so their content is not touched by the
// emphasis rules.
func inline(s string) string {
	var spans []string
	s = inlineCodeRe.ReplaceAllStringFunc(s, func(m string) string {
		spans = append(spans, "<code>"+html.EscapeString(m[1:len(m)-1])+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(spans) {
			return ""
		}
		return spans[i]
	})
}
