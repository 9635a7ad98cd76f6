// Package parser splits Markdown sources into front-matter and body and
// extracts the metadata fields Hangar understands.
package parser

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/adrg/frontmatter"

	"github.com/starford/hangar/internal/models"
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	FrontMatter     map[string]any
	Body            string
	Title           string
	Chapter         string
	Section         string
	Difficulty      models.Difficulty
	DurationMinutes int
}

var bom = []byte("\xef\xbb\xbf")

// Parse extracts front-matter (YAML "---" or TOML "+++") and the body from raw
// Markdown bytes. A file without front-matter is all body. A front-matter
// block that does not decode is reported as an error.
func Parse(data []byte) (*Result, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, bom), "\n\r")

	raw := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(trimmed), &raw)
	if err != nil {
		return nil, fmt.Errorf("parser: front-matter: %w", err)
	}

	fm, err := normalizeMap(raw)
	if err != nil {
		return nil, fmt.Errorf("parser: front-matter: %w", err)
	}
	res := &Result{
		FrontMatter: fm,
		Body:        strings.TrimLeft(string(body), "\n\r"),
		Title:       stringField(fm, "title"),
		Chapter:     stringField(fm, "chapter"),
		Section:     stringField(fm, "section"),
	}
	if d, ok := models.ParseDifficulty(stringField(fm, "difficulty")); ok {
		res.Difficulty = d
	}
	res.DurationMinutes = durationField(fm["duration"])
	return res, nil
}

// TitleFromSlug turns a file stem such as "tank-vent_system" into "tank vent system".
func TitleFromSlug(slug string) string {
	return strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
}

func stringField(fm map[string]any, key string) string {
	switch v := fm[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int, int64, float64:
		// Chapter codes are often written unquoted, e.g. "chapter: 21".
		return fmt.Sprint(v)
	}
	return ""
}

// durationField accepts 35, 35.0, "35" and "35 min"; anything else, or a
// non-positive value, is treated as absent.
func durationField(v any) int {
	switch n := v.(type) {
	case int:
		if n > 0 {
			return n
		}
	case int64:
		if n > 0 && n <= math.MaxInt32 {
			return int(n)
		}
	case float64:
		if n > 0 && n == math.Trunc(n) && n <= math.MaxInt32 {
			return int(n)
		}
	case string:
		s := strings.TrimSpace(n)
		end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if end == 0 {
			return 0
		}
		if end > 0 {
			s = s[:end]
		}
		if i, err := strconv.Atoi(s); err == nil && i > 0 {
			return i
		}
	}
	return 0
}

// normalizeMap converts decoder output into JSON-safe values: nested YAML
// maps arrive keyed by interface{} and must become map[string]any. Values
// JSON cannot hold, such as .inf and .nan, are rejected.
func normalizeMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		n, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n, err := normalizeValue(val)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", k, err)
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			n, err := normalizeValue(val)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("unsupported number %v", t)
		}
	case float32:
		if math.IsInf(float64(t), 0) || math.IsNaN(float64(t)) {
			return nil, fmt.Errorf("unsupported number %v", t)
		}
	}
	return v, nil
}
