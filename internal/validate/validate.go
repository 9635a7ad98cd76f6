// Package validate sanitizes and length-checks user-supplied text before it
// is persisted or used in a query.
package validate

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/microcosm-cc/bluemonday"
)

// Default limits, in runes.
const (
	DefaultMaxNote  = 5000
	DefaultMaxTitle = 200
	DefaultMaxQuery = 100
)

// Limits caps the length of each kind of input.
type Limits struct {
	Note  int `yaml:"note_max"`
	Title int `yaml:"title_max"`
	Query int `yaml:"query_max"`
}

// DefaultLimits returns the built-in caps.
func DefaultLimits() Limits {
	return Limits{Note: DefaultMaxNote, Title: DefaultMaxTitle, Query: DefaultMaxQuery}
}

// Validate checks that every limit is positive.
func (l *Limits) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Note, validation.Required, validation.Min(1)),
		validation.Field(&l.Title, validation.Required, validation.Min(1)),
		validation.Field(&l.Query, validation.Required, validation.Min(1)),
	)
}

// Result is the outcome of validating one input. Value is always usable: it
// holds the sanitized, truncated text even when Valid is false.
type Result struct {
	Value   string   `json:"value"`
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// Validator applies the sanitization and length policy.
type Validator struct {
	strict *bluemonday.Policy
	limits Limits
}

// New returns a Validator using limits.
func New(limits Limits) *Validator {
	return &Validator{strict: bluemonday.StrictPolicy(), limits: limits}
}

// Note validates free-text note content. Line breaks are kept. Value is
// HTML-escaped and safe to insert into a page as text.
func (v *Validator) Note(s string) Result {
	r := v.check("note", v.clean(s, false), v.limits.Note, false)
	r.Value = html.EscapeString(r.Value)
	return r
}

// Title validates a single-line title. Value is HTML-escaped.
func (v *Validator) Title(s string) Result {
	r := v.check("title", v.clean(s, true), v.limits.Title, true)
	r.Value = html.EscapeString(r.Value)
	return r
}

// Query validates a search query. Value is plain text for matching.
func (v *Validator) Query(s string) Result {
	return v.check("query", v.clean(s, true), v.limits.Query, true)
}

// clean drops control characters and markup. The strict policy escapes what
// it keeps, so the result is unescaped back to plain text.
func (v *Validator) clean(s string, singleLine bool) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			if singleLine {
				return ' '
			}
			return r
		case unicode.IsControl(r), r == utf8.RuneError:
			return -1
		}
		return r
	}, s)
	s = html.UnescapeString(v.strict.Sanitize(s))
	if singleLine {
		s = strings.Join(strings.Fields(s), " ")
	}
	return strings.TrimSpace(s)
}

func (v *Validator) check(field, s string, max int, required bool) Result {
	var rules []validation.Rule
	if required {
		rules = append(rules, validation.Required.Error(field+" is required"))
	}
	rules = append(rules, validation.RuneLength(0, max).
		Error(fmt.Sprintf("%s exceeds maximum length of %d characters", field, max)))

	res := Result{Value: s, Valid: true}
	if err := validation.Validate(s, rules...); err != nil {
		res.Valid = false
		res.Reasons = append(res.Reasons, err.Error())
	}
	if utf8.RuneCountInString(s) > max {
		res.Value = string([]rune(s)[:max])
	}
	return res
}
